package gcca

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNumericalRank(t *testing.T) {
	eye := mat.NewDense(5, 5, nil)
	for i := 0; i < 5; i++ {
		eye.Set(i, i, 1)
	}
	rank, err := numericalRank(eye)
	require.NoError(t, err)
	assert.Equal(t, 5, rank)

	ones := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			ones.Set(i, j, 1)
		}
	}
	rank, err = numericalRank(ones)
	require.NoError(t, err)
	assert.Equal(t, 1, rank)

	rank, err = numericalRank(mat.NewDense(3, 3, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, rank)
}

func TestSolveEigenProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	xs := centeredSets(rng, 40, 6, 9)
	cov := newBlockCovariance(xs)
	cov.Regularize(0.01)
	a := cov.CrossMatrix()
	b := cov.BlockDiagonal()

	vals, vecs, err := solveEigen(a, b)
	require.NoError(t, err)

	total, eigDim := vecs.Dims()
	assert.Equal(t, cov.TotalDim(), total)
	assert.Equal(t, len(vals), eigDim)
	assert.LessOrEqual(t, eigDim, cov.TotalDim())

	for i := 1; i < len(vals); i++ {
		assert.GreaterOrEqual(t, vals[i-1], vals[i]-1e-9, "eigenvalues must be non-increasing")
	}

	// Every retained column v must satisfy v' * b * v = 1.
	var bv, vbv mat.Dense
	bv.Mul(b, vecs)
	vbv.Mul(vecs.T(), &bv)
	for j := 0; j < eigDim; j++ {
		assert.InDelta(t, 1, vbv.At(j, j), 1e-6, "column %d", j)
	}
}

func TestSolveEigenZeroCross(t *testing.T) {
	// A single data set has no off-diagonal blocks, so the cross matrix is
	// all zeros and the eigenproblem has no usable dimensions.
	rng := rand.New(rand.NewSource(8))
	xs := centeredSets(rng, 30, 5)
	cov := newBlockCovariance(xs)
	cov.Regularize(0.01)

	_, _, err := solveEigen(cov.CrossMatrix(), cov.BlockDiagonal())
	assert.ErrorIs(t, err, ErrNumericalDegeneracy)
}

func TestNormalizeAgainstDegenerate(t *testing.T) {
	vecs := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 0, 0})
	zero := mat.NewDense(3, 3, nil)

	err := normalizeAgainst(vecs, zero)
	assert.ErrorIs(t, err, ErrNumericalDegeneracy)
}

package gcca

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// machEps is the double-precision machine epsilon.
const machEps = 2.220446049250313e-16

// numericalRank counts the singular values of a above the conventional
// threshold max(rows, cols) * eps * largest singular value.
func numericalRank(a mat.Matrix) (int, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return 0, fmt.Errorf("%w: SVD failed during rank computation", ErrNumericalDegeneracy)
	}
	sv := svd.Values(nil)
	if len(sv) == 0 || sv[0] == 0 {
		return 0, nil
	}
	r, c := a.Dims()
	tol := float64(max(r, c)) * machEps * sv[0]
	rank := 0
	for _, s := range sv {
		if s > tol {
			rank++
		}
	}
	return rank, nil
}

// solveEigen solves the generalized eigenvalue problem a*v = lambda*b*v,
// keeping the top min(rank(a), rank(b)) eigenpairs sorted by descending real
// part and normalizing every retained eigenvector v so that v'*b*v = 1.
//
// gonum has no generalized eigensolver, so the problem is reduced to the
// standard eigendecomposition of inv(b)*a. b is the regularized
// block-diagonal covariance matrix and is invertible for any positive
// regularization; a singular b is reported as a degeneracy.
func solveEigen(a, b *mat.Dense) ([]float64, *mat.Dense, error) {
	rankA, err := numericalRank(a)
	if err != nil {
		return nil, nil, fmt.Errorf("cross matrix: %w", err)
	}
	rankB, err := numericalRank(b)
	if err != nil {
		return nil, nil, fmt.Errorf("block-diagonal matrix: %w", err)
	}
	eigDim := min(rankA, rankB)
	if eigDim == 0 {
		return nil, nil, fmt.Errorf("%w: zero-rank eigenproblem", ErrNumericalDegeneracy)
	}

	var bInv mat.Dense
	if err := bInv.Inverse(b); err != nil {
		return nil, nil, fmt.Errorf("%w: inverting block-diagonal matrix: %v", ErrNumericalDegeneracy, err)
	}
	var ba mat.Dense
	ba.Mul(&bInv, a)

	var eig mat.Eigen
	if !eig.Factorize(&ba, mat.EigenRight) {
		return nil, nil, fmt.Errorf("%w: eigendecomposition failed", ErrNumericalDegeneracy)
	}
	values := eig.Values(nil)
	var vectors mat.CDense
	eig.VectorsTo(&vectors)

	// Rank eigenpairs by the real part; the meaningful eigenvalues of this
	// symmetric-definite setup are expected real.
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(p, q int) bool {
		return real(values[order[p]]) > real(values[order[q]])
	})

	total, _ := ba.Dims()
	eigVals := make([]float64, eigDim)
	eigVecs := mat.NewDense(total, eigDim, nil)
	for j := 0; j < eigDim; j++ {
		idx := order[j]
		eigVals[j] = real(values[idx])
		for i := 0; i < total; i++ {
			eigVecs.Set(i, j, real(vectors.At(i, idx)))
		}
	}

	if err := normalizeAgainst(eigVecs, b); err != nil {
		return nil, nil, err
	}
	return eigVals, eigVecs, nil
}

// normalizeAgainst rescales each column v of vecs so that v'*b*v = 1, using
// the diagonal of vecs'*b*vecs. A non-positive diagonal entry means the
// induced norm is undefined for that column and is reported rather than
// clamped.
func normalizeAgainst(vecs, b *mat.Dense) error {
	var bv, vbv mat.Dense
	bv.Mul(b, vecs)
	vbv.Mul(vecs.T(), &bv)

	rows, cols := vecs.Dims()
	for j := 0; j < cols; j++ {
		d := vbv.At(j, j)
		if d <= 0 || math.IsNaN(d) {
			return fmt.Errorf("%w: non-positive normalization variance %g for eigenvector %d", ErrNumericalDegeneracy, d, j)
		}
		s := 1 / math.Sqrt(d)
		for i := 0; i < rows; i++ {
			vecs.Set(i, j, vecs.At(i, j)*s)
		}
	}
	return nil
}

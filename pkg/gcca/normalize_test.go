package gcca

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func randomMatrix(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(rows, cols, data)
}

func TestCenterZeroMean(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := randomMatrix(rng, 30, 5)
	orig := mat.DenseCopyOf(x)

	c := Center(x)

	rows, cols := c.Dims()
	for j := 0; j < cols; j++ {
		assert.InDelta(t, 0, mat.Sum(c.ColView(j))/float64(rows), 1e-12, "column %d mean", j)
	}
	assert.True(t, mat.Equal(orig, x), "input must not be mutated")
}

func TestCenterIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	x := randomMatrix(rng, 40, 7)

	once := Center(x)
	twice := Center(once)

	assert.True(t, mat.EqualApprox(once, twice, 1e-12))
}

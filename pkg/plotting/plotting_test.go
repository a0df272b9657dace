package plotting

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGridDims(t *testing.T) {
	tests := []struct {
		dataNum    int
		rows, cols int
	}{
		{dataNum: 1, rows: 1, cols: 2},
		{dataNum: 2, rows: 2, cols: 2},
		{dataNum: 3, rows: 2, cols: 2},
		{dataNum: 4, rows: 2, cols: 3},
		{dataNum: 5, rows: 2, cols: 3},
		{dataNum: 8, rows: 3, cols: 3},
	}

	for _, test := range tests {
		rows, cols := GridDims(test.dataNum)
		assert.Equal(t, test.rows, rows, "rows for %d data sets", test.dataNum)
		assert.Equal(t, test.cols, cols, "cols for %d data sets", test.dataNum)
		assert.GreaterOrEqual(t, rows*cols, test.dataNum+1, "grid must fit every panel")
	}
}

func TestRenderWritesPNG(t *testing.T) {
	rng := rand.New(rand.NewSource(40))
	zs := make([]*mat.Dense, 2)
	for k := range zs {
		data := make([]float64, 30*2)
		for i := range data {
			data[i] = rng.NormFloat64()
		}
		zs[k] = mat.NewDense(30, 2, data)
	}

	path := filepath.Join(t.TempDir(), "gcca.png")
	require.NoError(t, Render(zs, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderRejectsNarrowProjections(t *testing.T) {
	narrow := mat.NewDense(10, 1, nil)
	err := Render([]*mat.Dense{narrow}, filepath.Join(t.TempDir(), "gcca.png"))
	assert.Error(t, err)

	err = Render(nil, filepath.Join(t.TempDir(), "gcca.png"))
	assert.Error(t, err)
}

package gcca

import (
	"gonum.org/v1/gonum/mat"
)

// Center returns a copy of x with each column shifted so its mean is zero.
// The input matrix is left untouched.
func Center(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		m := mat.Sum(x.ColView(j)) / float64(rows)
		for i := 0; i < rows; i++ {
			out.Set(i, j, x.At(i, j)-m)
		}
	}
	return out
}

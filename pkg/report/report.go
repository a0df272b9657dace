// Package report computes correlation summaries over projected data sets.
package report

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PairCorrelation is the Pearson correlation between the first projected
// dimensions of data sets I and J.
type PairCorrelation struct {
	I, J int
	R    float64
}

// FirstDimCorrelations returns the Pearson correlation of the first projected
// dimension for every unordered pair (i, j) with i < j, in index order.
func FirstDimCorrelations(zs []*mat.Dense) ([]PairCorrelation, error) {
	for k, z := range zs {
		if _, c := z.Dims(); c < 1 {
			return nil, fmt.Errorf("report: projected data set %d has no dimensions", k)
		}
	}
	var pairs []PairCorrelation
	for i := 0; i < len(zs); i++ {
		for j := i + 1; j < len(zs); j++ {
			r := stat.Correlation(firstColumn(zs[i]), firstColumn(zs[j]), nil)
			pairs = append(pairs, PairCorrelation{I: i, J: j, R: r})
		}
	}
	return pairs, nil
}

func firstColumn(z *mat.Dense) []float64 {
	rows, _ := z.Dims()
	col := make([]float64, rows)
	mat.Col(col, 0, z)
	return col
}

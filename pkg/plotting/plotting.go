// Package plotting renders projected data sets as a grid of scatter plots:
// one panel per data set showing its first two projected dimensions, plus a
// final panel overlaying all of them.
package plotting

import (
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const panelSize = 4 * vg.Inch

// GridDims returns the subplot grid for dataNum data sets plus the overlay
// panel: ceil(sqrt(dataNum+1)) columns and enough rows to fit every panel.
func GridDims(dataNum int) (rows, cols int) {
	panels := dataNum + 1
	cols = int(math.Ceil(math.Sqrt(float64(panels))))
	rows = (panels + cols - 1) / cols
	return rows, cols
}

// Render writes a PNG of the projected data sets to path. Every projected
// data set must have at least two columns.
func Render(zs []*mat.Dense, path string) error {
	if len(zs) == 0 {
		return fmt.Errorf("plotting: no projected data sets")
	}
	for k, z := range zs {
		if _, c := z.Dims(); c < 2 {
			return fmt.Errorf("plotting: projected data set %d has %d dimensions, need at least 2", k, c)
		}
	}

	rows, cols := GridDims(len(zs))
	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
	}

	for k, z := range zs {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("Z_%d", k+1)
		s, err := newScatter(z, k)
		if err != nil {
			return err
		}
		p.Add(s)
		plots[k/cols][k%cols] = p
	}

	overlay := plot.New()
	overlay.Title.Text = "Z_ALL"
	for k, z := range zs {
		s, err := newScatter(z, k)
		if err != nil {
			return err
		}
		overlay.Add(s)
	}
	plots[len(zs)/cols][len(zs)%cols] = overlay

	img := vgimg.New(vg.Length(cols)*panelSize, vg.Length(rows)*panelSize)
	canvases := plot.Align(plots, draw.Tiles{Rows: rows, Cols: cols}, draw.New(img))
	for r := range plots {
		for c := range plots[r] {
			if plots[r][c] != nil {
				plots[r][c].Draw(canvases[r][c])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plotting: creating %s: %w", path, err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("plotting: writing %s: %w", path, err)
	}
	return nil
}

// newScatter plots the first two columns of z, colored by data set index.
func newScatter(z *mat.Dense, k int) (*plotter.Scatter, error) {
	rows, _ := z.Dims()
	xys := make(plotter.XYs, rows)
	for i := 0; i < rows; i++ {
		xys[i].X = z.At(i, 0)
		xys[i].Y = z.At(i, 1)
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("plotting: scatter for data set %d: %w", k, err)
	}
	s.GlyphStyle.Color = plotutil.Color(k)
	s.GlyphStyle.Radius = vg.Points(2)
	return s, nil
}

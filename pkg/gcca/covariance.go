package gcca

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// BlockMatrix is a covariance matrix over N data sets, partitioned into an
// N x N grid of blocks. Block (i, j) holds the cross-covariance between the
// features of data set i and data set j, so Block(i, j) equals the transpose
// of Block(j, i) and every diagonal block is square.
type BlockMatrix struct {
	blocks [][]*mat.Dense
	dims   []int
}

// newBlockCovariance computes the joint sample covariance of the centered
// data sets and partitions it by cumulative feature offsets. All blocks come
// from one covariance estimate over the stacked feature space, so the
// off-diagonal blocks carry the true cross-covariance structure.
func newBlockCovariance(xs []*mat.Dense) *BlockMatrix {
	n := len(xs)
	dims := make([]int, n)
	samples, _ := xs[0].Dims()
	total := 0
	for k, x := range xs {
		_, d := x.Dims()
		dims[k] = d
		total += d
	}

	stacked := mat.NewDense(samples, total, nil)
	off := 0
	for k, x := range xs {
		stacked.Slice(0, samples, off, off+dims[k]).(*mat.Dense).Copy(x)
		off += dims[k]
	}

	cov := mat.NewSymDense(total, nil)
	stat.CovarianceMatrix(cov, stacked, nil)
	dense := mat.DenseCopyOf(cov)

	offs := featureOffsets(dims)
	blocks := make([][]*mat.Dense, n)
	for i := 0; i < n; i++ {
		blocks[i] = make([]*mat.Dense, n)
		for j := 0; j < n; j++ {
			b := mat.NewDense(dims[i], dims[j], nil)
			b.Copy(dense.Slice(offs[i], offs[i+1], offs[j], offs[j+1]))
			blocks[i][j] = b
		}
	}
	return &BlockMatrix{blocks: blocks, dims: dims}
}

// newBlockMatrix wraps an existing grid of blocks, as reconstructed from a
// persisted model. Diagonal blocks fix the per-set feature dimensions.
func newBlockMatrix(blocks [][]*mat.Dense) (*BlockMatrix, error) {
	n := len(blocks)
	dims := make([]int, n)
	for i := 0; i < n; i++ {
		if len(blocks[i]) != n {
			return nil, fmt.Errorf("block row %d has %d columns, want %d", i, len(blocks[i]), n)
		}
		r, c := blocks[i][i].Dims()
		if r != c {
			return nil, fmt.Errorf("diagonal block %d is %dx%d, want square", i, r, c)
		}
		dims[i] = r
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			r, c := blocks[i][j].Dims()
			if r != dims[i] || c != dims[j] {
				return nil, fmt.Errorf("block (%d,%d) is %dx%d, want %dx%d", i, j, r, c, dims[i], dims[j])
			}
		}
	}
	return &BlockMatrix{blocks: blocks, dims: dims}, nil
}

// Len returns the number of data sets the grid covers.
func (c *BlockMatrix) Len() int { return len(c.dims) }

// Dim returns the feature dimension of data set i.
func (c *BlockMatrix) Dim(i int) int { return c.dims[i] }

// TotalDim returns the summed feature dimension across all data sets.
func (c *BlockMatrix) TotalDim() int {
	total := 0
	for _, d := range c.dims {
		total += d
	}
	return total
}

// Block returns the covariance block between data sets i and j.
func (c *BlockMatrix) Block(i, j int) *mat.Dense {
	if i < 0 || i >= c.Len() || j < 0 || j >= c.Len() {
		panic(fmt.Sprintf("gcca: block index (%d,%d) out of range for %d data sets", i, j, c.Len()))
	}
	return c.blocks[i][j]
}

// Regularize adds regParam * mean(diag(Block(i,i))) to the diagonal of every
// diagonal block, in place. Off-diagonal blocks are untouched. This keeps the
// block-diagonal matrix invertible when diagonal blocks are near singular.
func (c *BlockMatrix) Regularize(regParam float64) {
	for i := 0; i < c.Len(); i++ {
		b := c.blocks[i][i]
		d := c.dims[i]
		var trace float64
		for k := 0; k < d; k++ {
			trace += b.At(k, k)
		}
		shift := regParam * trace / float64(d)
		for k := 0; k < d; k++ {
			b.Set(k, k, b.At(k, k)+shift)
		}
	}
}

// CrossMatrix assembles the left-hand matrix of the generalized eigenproblem:
// the off-diagonal blocks in place, zero blocks on the diagonal, all scaled
// by 0.5.
func (c *BlockMatrix) CrossMatrix() *mat.Dense {
	total := c.TotalDim()
	offs := featureOffsets(c.dims)
	a := mat.NewDense(total, total, nil)
	for i := 0; i < c.Len(); i++ {
		for j := 0; j < c.Len(); j++ {
			if i == j {
				continue
			}
			a.Slice(offs[i], offs[i+1], offs[j], offs[j+1]).(*mat.Dense).Copy(c.blocks[i][j])
		}
	}
	a.Scale(0.5, a)
	return a
}

// BlockDiagonal assembles the right-hand matrix of the generalized
// eigenproblem: the diagonal blocks in place, zeros elsewhere.
func (c *BlockMatrix) BlockDiagonal() *mat.Dense {
	total := c.TotalDim()
	offs := featureOffsets(c.dims)
	b := mat.NewDense(total, total, nil)
	for i := 0; i < c.Len(); i++ {
		b.Slice(offs[i], offs[i+1], offs[i], offs[i+1]).(*mat.Dense).Copy(c.blocks[i][i])
	}
	return b
}

// featureOffsets returns the cumulative feature offsets [0, d_0, d_0+d_1, ...].
func featureOffsets(dims []int) []int {
	offs := make([]int, len(dims)+1)
	for k, d := range dims {
		offs[k+1] = offs[k] + d
	}
	return offs
}

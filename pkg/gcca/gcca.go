// Package gcca implements Generalized Canonical Correlation Analysis for two
// or more data sets sharing a sample count. Fit learns one projection matrix
// per data set such that the projected data sets are maximally correlated;
// Transform applies the learned projections to new data.
package gcca

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Model holds GCCA configuration and fitted state. A Model is not safe for
// concurrent use; Fit and Transform mutate it in place.
type Model struct {
	// NComponents is advisory metadata carried through persistence. It does
	// not truncate the eigen dimension of the fitted projections.
	NComponents int

	// RegParam scales the identity perturbation added to each diagonal
	// covariance block before the eigenproblem is solved.
	RegParam float64

	dataNum int
	covMat  *BlockMatrix
	hList   []*mat.Dense
	eigVals []float64
	zList   []*mat.Dense

	logger *zap.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger attaches a logger to the model. Without it the model is silent.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// New creates an unfitted Model.
func New(nComponents int, regParam float64, opts ...Option) *Model {
	m := &Model{
		NComponents: nComponents,
		RegParam:    regParam,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DataNum returns the number of data sets the model was fitted with, or zero
// before the first Fit.
func (m *Model) DataNum() int { return m.dataNum }

// EigVals returns a copy of the retained eigenvalues in descending order.
func (m *Model) EigVals() []float64 {
	out := make([]float64, len(m.eigVals))
	copy(out, m.eigVals)
	return out
}

// CovMat returns the regularized block covariance matrix from the last Fit.
// The grid is shared with the model and must be treated as read-only.
func (m *Model) CovMat() *BlockMatrix { return m.covMat }

// Projections returns copies of the per-data-set projection matrices, each of
// shape features_k x eigDim. Mutating them does not affect the fitted state.
func (m *Model) Projections() []*mat.Dense { return copyMatrices(m.hList) }

// Projected returns copies of the projected data sets from the last
// Transform, or nil if Transform has not been called.
func (m *Model) Projected() []*mat.Dense { return copyMatrices(m.zList) }

func copyMatrices(ms []*mat.Dense) []*mat.Dense {
	if ms == nil {
		return nil
	}
	out := make([]*mat.Dense, len(ms))
	for k, x := range ms {
		out[k] = mat.DenseCopyOf(x)
	}
	return out
}

// Fit learns the GCCA projections from xs. Every data set must have the same
// number of rows (samples); feature widths may differ. The fitted state is
// replaced wholesale on success and left untouched on error.
func (m *Model) Fit(xs []*mat.Dense) error {
	if m.RegParam < 0 {
		return fmt.Errorf("gcca: reg_param must be non-negative, got %g", m.RegParam)
	}
	if err := m.validate(xs); err != nil {
		return err
	}
	m.logger.Info("fitting gcca", zap.Int("data_num", len(xs)), zap.Float64("reg_param", m.RegParam))
	for k, x := range xs {
		r, c := x.Dims()
		m.logger.Debug("data set shape", zap.Int("index", k), zap.Int("samples", r), zap.Int("features", c))
	}

	centered := make([]*mat.Dense, len(xs))
	for k, x := range xs {
		centered[k] = Center(x)
	}

	cov := newBlockCovariance(centered)
	cov.Regularize(m.RegParam)

	a := cov.CrossMatrix()
	b := cov.BlockDiagonal()
	m.logger.Info("solving generalized eigenproblem", zap.Int("total_features", cov.TotalDim()))
	eigVals, eigVecs, err := solveEigen(a, b)
	if err != nil {
		return err
	}
	_, eigDim := eigVecs.Dims()
	m.logger.Info("eigenproblem solved", zap.Int("eig_dim", eigDim))

	offs := featureOffsets(cov.dims)
	hList := make([]*mat.Dense, len(xs))
	for k := range xs {
		h := mat.NewDense(cov.Dim(k), eigDim, nil)
		h.Copy(eigVecs.Slice(offs[k], offs[k+1], 0, eigDim))
		hList[k] = h
	}

	m.dataNum = len(xs)
	m.covMat = cov
	m.hList = hList
	m.eigVals = eigVals
	m.zList = nil
	return nil
}

// Transform centers each data set and projects it with the corresponding
// fitted projection matrix. The projected data sets are returned and also
// retained on the model for reporting. Stored state is untouched on error.
func (m *Model) Transform(xs []*mat.Dense) ([]*mat.Dense, error) {
	if len(xs) != m.dataNum {
		return nil, fmt.Errorf("%w: fitted with %d data sets, got %d", ErrDataCountMismatch, m.dataNum, len(xs))
	}
	if err := m.validate(xs); err != nil {
		return nil, err
	}
	for k, x := range xs {
		_, c := x.Dims()
		if rows, _ := m.hList[k].Dims(); c != rows {
			return nil, fmt.Errorf("%w: data set %d has %d features, fitted projection expects %d", ErrShapeMismatch, k, c, rows)
		}
	}

	m.logger.Info("transforming", zap.Int("data_num", len(xs)))
	zList := make([]*mat.Dense, len(xs))
	for k, x := range xs {
		var z mat.Dense
		z.Mul(Center(x), m.hList[k])
		zList[k] = &z
	}
	m.zList = zList
	return zList, nil
}

// FitTransform fits the model on xs and immediately transforms the same data
// sets.
func (m *Model) FitTransform(xs []*mat.Dense) ([]*mat.Dense, error) {
	if err := m.Fit(xs); err != nil {
		return nil, err
	}
	return m.Transform(xs)
}

// validate checks the preconditions shared by Fit and Transform before any
// linear algebra runs.
func (m *Model) validate(xs []*mat.Dense) error {
	if len(xs) == 0 {
		return fmt.Errorf("%w: no data sets", ErrShapeMismatch)
	}
	samples, _ := xs[0].Dims()
	if samples < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrShapeMismatch, samples)
	}
	for k, x := range xs {
		r, c := x.Dims()
		if c == 0 {
			return fmt.Errorf("%w: data set %d has no features", ErrShapeMismatch, k)
		}
		if r != samples {
			return fmt.Errorf("%w: data set %d has %d samples, data set 0 has %d", ErrShapeMismatch, k, r, samples)
		}
	}
	return nil
}

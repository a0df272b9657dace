package gcca

import "errors"

var (
	// ErrShapeMismatch reports data sets whose shapes cannot be fitted or
	// transformed together (unequal sample counts, empty feature axes, or
	// feature widths that disagree with the fitted projections).
	ErrShapeMismatch = errors.New("gcca: data set shape mismatch")

	// ErrDataCountMismatch reports a Transform call with a different number
	// of data sets than the model was fitted with.
	ErrDataCountMismatch = errors.New("gcca: data set count differs from fit")

	// ErrNumericalDegeneracy reports rank-deficient or singular matrices
	// encountered during the eigenproblem solve or eigenvector normalization.
	ErrNumericalDegeneracy = errors.New("gcca: numerically degenerate matrix")

	// ErrStorage reports a failure reading or writing persisted parameters.
	ErrStorage = errors.New("gcca: storage error")
)

// Package features implements the two-stage column filter applied before
// model fitting: zero-variance removal followed by correlation-based
// selection against the target. Both selectors learn a support mask from
// data and can then filter matrices and column name lists consistently.
package features

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/pkg/errors"
)

// VarianceThreshold selects columns whose variance exceeds Threshold.
// With the default threshold of zero it drops exactly the constant
// columns, which carry no signal and destabilize correlation estimates.
type VarianceThreshold struct {
	model.BaseEstimator

	// Threshold is the minimum variance a column must exceed to survive.
	Threshold float64

	// Variances holds the per-column variance learned by Fit.
	Variances []float64

	support   []bool
	nFeatures int
}

// NewVarianceThreshold creates a selector that drops constant columns.
func NewVarianceThreshold() *VarianceThreshold {
	return &VarianceThreshold{Threshold: 0.0}
}

// Fit computes per-column variances on X.
func (v *VarianceThreshold) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("VarianceThreshold.Fit", "empty data", errors.ErrEmptyData)
	}

	v.nFeatures = c
	v.Variances = make([]float64, c)
	v.support = make([]bool, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		// Population variance; only the comparison against the threshold
		// matters, so the normalization constant is irrelevant.
		mean := stat.Mean(col, nil)
		var sumSquares float64
		for _, val := range col {
			diff := val - mean
			sumSquares += diff * diff
		}
		v.Variances[j] = sumSquares / float64(r)
		v.support[j] = v.Variances[j] > v.Threshold
	}

	v.SetFitted()
	return nil
}

// Support returns the per-column keep mask learned by Fit.
func (v *VarianceThreshold) Support() []bool {
	return v.support
}

// SupportIndices returns the indices of the surviving columns, in order.
// An empty result is a legitimate outcome for degenerate data.
func (v *VarianceThreshold) SupportIndices() []int {
	return supportIndices(v.support)
}

// Transform keeps only the surviving columns of X. When no column
// survives it returns ErrNoFeatures.
func (v *VarianceThreshold) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !v.IsFitted() {
		return nil, errors.NewNotFittedError("VarianceThreshold", "Transform")
	}
	return filterColumns("VarianceThreshold.Transform", X, v.support, v.nFeatures)
}

// FitTransform fits on X and returns the filtered X.
func (v *VarianceThreshold) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := v.Fit(X); err != nil {
		return nil, err
	}
	return v.Transform(X)
}

// SelectedNames filters a column name list with the learned mask.
func (v *VarianceThreshold) SelectedNames(names []string) ([]string, error) {
	if !v.IsFitted() {
		return nil, errors.NewNotFittedError("VarianceThreshold", "SelectedNames")
	}
	return selectNames("VarianceThreshold.SelectedNames", names, v.support, v.nFeatures)
}

// CorrelationSelector keeps columns whose absolute Pearson correlation
// with the target is strictly greater than Threshold.
type CorrelationSelector struct {
	model.BaseEstimator

	// Threshold is the absolute correlation a column must strictly exceed.
	Threshold float64

	// Correlations holds the per-column correlation with the target
	// learned by Fit.
	Correlations []float64

	support   []bool
	nFeatures int
}

// NewCorrelationSelector creates a selector with an explicit threshold.
func NewCorrelationSelector(threshold float64) *CorrelationSelector {
	return &CorrelationSelector{Threshold: threshold}
}

// NewCorrelationSelectorDefault creates a selector with the 0.1 threshold
// used by the sweep.
func NewCorrelationSelectorDefault() *CorrelationSelector {
	return NewCorrelationSelector(0.1)
}

// Fit computes each column's Pearson correlation with y. A correlation
// that comes out NaN (for example against a constant target) never
// selects the column.
func (c *CorrelationSelector) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, cols := X.Dims()
	if r == 0 || cols == 0 {
		return errors.NewModelError("CorrelationSelector.Fit", "empty data", errors.ErrEmptyData)
	}
	if y.Len() != r {
		return errors.NewDimensionError("CorrelationSelector.Fit", r, y.Len(), 0)
	}

	c.nFeatures = cols
	c.Correlations = make([]float64, cols)
	c.support = make([]bool, cols)

	target := make([]float64, r)
	for i := 0; i < r; i++ {
		target[i] = y.AtVec(i)
	}

	col := make([]float64, r)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, X)
		corr := stat.Correlation(col, target, nil)
		c.Correlations[j] = corr
		c.support[j] = !math.IsNaN(corr) && math.Abs(corr) > c.Threshold
	}

	c.SetFitted()
	return nil
}

// Support returns the per-column keep mask learned by Fit.
func (c *CorrelationSelector) Support() []bool {
	return c.support
}

// SupportIndices returns the indices of the surviving columns, in order.
func (c *CorrelationSelector) SupportIndices() []int {
	return supportIndices(c.support)
}

// Transform keeps only the surviving columns of X. When no column
// survives it returns ErrNoFeatures.
func (c *CorrelationSelector) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("CorrelationSelector", "Transform")
	}
	return filterColumns("CorrelationSelector.Transform", X, c.support, c.nFeatures)
}

// FitTransform fits on X, y and returns the filtered X.
func (c *CorrelationSelector) FitTransform(X mat.Matrix, y *mat.VecDense) (*mat.Dense, error) {
	if err := c.Fit(X, y); err != nil {
		return nil, err
	}
	return c.Transform(X)
}

// SelectedNames filters a column name list with the learned mask.
func (c *CorrelationSelector) SelectedNames(names []string) ([]string, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("CorrelationSelector", "SelectedNames")
	}
	return selectNames("CorrelationSelector.SelectedNames", names, c.support, c.nFeatures)
}

func supportIndices(support []bool) []int {
	indices := make([]int, 0, len(support))
	for j, keep := range support {
		if keep {
			indices = append(indices, j)
		}
	}
	return indices
}

func filterColumns(op string, X mat.Matrix, support []bool, nFeatures int) (*mat.Dense, error) {
	r, c := X.Dims()
	if c != nFeatures {
		return nil, errors.NewDimensionError(op, nFeatures, c, 1)
	}

	kept := supportIndices(support)
	if len(kept) == 0 {
		return nil, errors.Wrap(errors.ErrNoFeatures, op)
	}

	result := mat.NewDense(r, len(kept), nil)
	col := make([]float64, r)
	for outJ, j := range kept {
		mat.Col(col, j, X)
		result.SetCol(outJ, col)
	}
	return result, nil
}

func selectNames(op string, names []string, support []bool, nFeatures int) ([]string, error) {
	if len(names) != nFeatures {
		return nil, errors.NewDimensionError(op, nFeatures, len(names), 1)
	}

	kept := make([]string, 0, len(names))
	for j, keep := range support {
		if keep {
			kept = append(kept, names[j])
		}
	}
	return kept, nil
}

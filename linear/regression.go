// Package linear implements the linear model family used in the yield
// experiments: ordinary least squares, ridge and lasso regression.
package linear

import (
	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/core/parallel"
	"github.com/cropml/yieldbench/metrics"
	"github.com/cropml/yieldbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// parallelThreshold is the row count below which matrix assembly runs
// sequentially.
const parallelThreshold = 1000

// LinearRegression is an ordinary least squares model fitted via the
// normal equations w = (X^T * X)^(-1) * X^T * y.
type LinearRegression struct {
	model.BaseEstimator

	Weights   *mat.VecDense
	Intercept float64
	NFeatures int
}

// NewLinearRegression creates an unfitted ordinary least squares model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit learns the weights and intercept from the training data.
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.NFeatures = c

	XAug := augmentWithIntercept(X, r, c)

	var XT mat.Dense
	XT.CloneFrom(XAug.T())

	var XTX mat.Dense
	XTX.Mul(&XT, XAug)

	var XTXInv mat.Dense
	if invErr := XTXInv.Inverse(&XTX); invErr != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := columnVector(y, r)

	var XTy mat.VecDense
	XTy.MulVec(&XT, yVec)

	solution := mat.NewVecDense(c+1, nil)
	solution.MulVec(&XTXInv, &XTy)

	lr.Intercept = solution.AtVec(0)
	lr.Weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.Weights.SetVec(j, solution.AtVec(j+1))
	}

	lr.SetFitted()

	return nil
}

// Predict returns an n x 1 matrix of predictions for X.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	_, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	return predictLinear(X, lr.Weights, lr.Intercept), nil
}

// Score returns the coefficient of determination on the given data.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, yPred)
}

// GetWeights returns the learned coefficients.
func (lr *LinearRegression) GetWeights() []float64 {
	return weightsSlice(lr.Weights)
}

// GetIntercept returns the learned intercept.
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// augmentWithIntercept prepends a column of ones to X so the intercept
// can be solved together with the weights.
func augmentWithIntercept(X mat.Matrix, r, c int) *mat.Dense {
	XAug := mat.NewDense(r, c+1, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			XAug.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				XAug.Set(i, j+1, X.At(i, j))
			}
		}
	})

	return XAug
}

// columnVector copies the single column of y into a VecDense.
func columnVector(y mat.Matrix, r int) *mat.VecDense {
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, y.At(i, 0))
	}
	return v
}

// predictLinear computes X * weights + intercept row by row.
func predictLinear(X mat.Matrix, weights *mat.VecDense, intercept float64) *mat.Dense {
	r, c := X.Dims()
	predictions := mat.NewDense(r, 1, nil)

	for i := 0; i < r; i++ {
		pred := intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions
}

// weightsSlice converts a weight vector to a plain slice, returning nil
// before the model has been fitted.
func weightsSlice(w *mat.VecDense) []float64 {
	if w == nil {
		return nil
	}

	out := make([]float64, w.Len())
	for i := 0; i < w.Len(); i++ {
		out[i] = w.AtVec(i)
	}
	return out
}

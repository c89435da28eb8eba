package linear

import (
	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/metrics"
	"github.com/cropml/yieldbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Ridge is a linear model with an L2 penalty on the coefficients,
// solved in closed form as w = (X^T * X + alpha * I)^(-1) * X^T * y.
// The intercept is not penalized.
type Ridge struct {
	model.BaseEstimator

	// Alpha is the L2 penalty strength.
	Alpha float64

	Weights   *mat.VecDense
	Intercept float64
	NFeatures int
}

// NewRidge creates a ridge model with the given options applied.
func NewRidge(opts ...RidgeOption) *Ridge {
	r := &Ridge{Alpha: 1.0}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRidgeDefault creates a ridge model with alpha = 1.0.
func NewRidgeDefault() *Ridge {
	return NewRidge()
}

// Fit learns the penalized weights and the unpenalized intercept.
func (rr *Ridge) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Ridge.Fit")

	if rr.Alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", rr.Alpha)
	}

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("Ridge.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("Ridge.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("Ridge.Fit", "y must be a column vector")
	}

	rr.NFeatures = c

	XAug := augmentWithIntercept(X, r, c)

	var XT mat.Dense
	XT.CloneFrom(XAug.T())

	var XTX mat.Dense
	XTX.Mul(&XT, XAug)

	// Add the penalty to every diagonal entry except the intercept's.
	for j := 1; j <= c; j++ {
		XTX.Set(j, j, XTX.At(j, j)+rr.Alpha)
	}

	var XTXInv mat.Dense
	if invErr := XTXInv.Inverse(&XTX); invErr != nil {
		return errors.NewModelError("Ridge.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := columnVector(y, r)

	var XTy mat.VecDense
	XTy.MulVec(&XT, yVec)

	solution := mat.NewVecDense(c+1, nil)
	solution.MulVec(&XTXInv, &XTy)

	rr.Intercept = solution.AtVec(0)
	rr.Weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		rr.Weights.SetVec(j, solution.AtVec(j+1))
	}

	rr.SetFitted()

	return nil
}

// Predict returns an n x 1 matrix of predictions for X.
func (rr *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rr.IsFitted() {
		return nil, errors.NewNotFittedError("Ridge", "Predict")
	}

	_, c := X.Dims()
	if c != rr.NFeatures {
		return nil, errors.NewDimensionError("Ridge.Predict", rr.NFeatures, c, 1)
	}

	return predictLinear(X, rr.Weights, rr.Intercept), nil
}

// Score returns the coefficient of determination on the given data.
func (rr *Ridge) Score(X, y mat.Matrix) (float64, error) {
	if !rr.IsFitted() {
		return 0, errors.NewNotFittedError("Ridge", "Score")
	}

	yPred, err := rr.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, yPred)
}

// GetWeights returns the learned coefficients.
func (rr *Ridge) GetWeights() []float64 {
	return weightsSlice(rr.Weights)
}

// GetIntercept returns the learned intercept.
func (rr *Ridge) GetIntercept() float64 {
	if !rr.IsFitted() {
		return 0
	}
	return rr.Intercept
}

// GetParams returns the hyperparameters of the model.
func (rr *Ridge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha": rr.Alpha,
	}
}

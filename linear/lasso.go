package linear

import (
	"math"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/metrics"
	"github.com/cropml/yieldbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Lasso is a linear model with an L1 penalty, fitted by cyclic
// coordinate descent on centered data. The penalty drives weak
// coefficients to exactly zero, so the model doubles as a feature
// selector.
//
// The objective matches scikit-learn:
//
//	(1 / (2n)) * ||y - Xw||^2 + alpha * ||w||_1
type Lasso struct {
	model.BaseEstimator

	// Alpha is the L1 penalty strength.
	Alpha float64
	// MaxIter caps the number of full coordinate descent passes.
	MaxIter int
	// Tol is the convergence threshold on the largest coefficient
	// update seen in a pass.
	Tol float64

	Weights   *mat.VecDense
	Intercept float64
	NFeatures int
	// NIter is the number of passes run by the most recent Fit.
	NIter int
}

// NewLasso creates a lasso model with the given options applied.
func NewLasso(opts ...LassoOption) *Lasso {
	l := &Lasso{
		Alpha:   1.0,
		MaxIter: 1000,
		Tol:     1e-4,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewLassoDefault creates a lasso model with alpha = 1.0, 1000
// iterations and tolerance 1e-4.
func NewLassoDefault() *Lasso {
	return NewLasso()
}

// Fit runs coordinate descent until the largest coefficient update in a
// pass falls below Tol or MaxIter passes have run. Hitting the cap
// raises a ConvergenceWarning but still produces a usable model.
func (l *Lasso) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Lasso.Fit")

	if l.Alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", l.Alpha)
	}
	if l.MaxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", l.MaxIter)
	}
	if l.Tol < 0 {
		return errors.NewValidationError("tol", "must be non-negative", l.Tol)
	}

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("Lasso.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("Lasso.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("Lasso.Fit", "y must be a column vector")
	}

	l.NFeatures = c

	// Center the data so the intercept drops out of the descent and
	// can be recovered from the means afterwards.
	colMeans := make([]float64, c)
	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		colMeans[j] = sum / float64(r)
	}

	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	// Column-major copy of the centered design matrix keeps the inner
	// loops cache friendly.
	cols := make([][]float64, c)
	colNorms := make([]float64, c)
	for j := 0; j < c; j++ {
		col := make([]float64, r)
		var norm float64
		for i := 0; i < r; i++ {
			v := X.At(i, j) - colMeans[j]
			col[i] = v
			norm += v * v
		}
		cols[j] = col
		colNorms[j] = norm
	}

	weights := make([]float64, c)
	residual := make([]float64, r)
	for i := 0; i < r; i++ {
		residual[i] = y.At(i, 0) - yMean
	}

	threshold := float64(r) * l.Alpha
	converged := false

	for iter := 0; iter < l.MaxIter; iter++ {
		l.NIter = iter + 1
		maxDelta := 0.0

		for j := 0; j < c; j++ {
			if colNorms[j] == 0 {
				// A column that is constant after centering carries
				// no signal and keeps a zero coefficient.
				weights[j] = 0
				continue
			}

			// Correlation of column j with the partial residual that
			// excludes its own current contribution.
			var rho float64
			col := cols[j]
			for i := 0; i < r; i++ {
				rho += col[i] * (residual[i] + col[i]*weights[j])
			}

			wNew := softThreshold(rho, threshold) / colNorms[j]
			if wNew != weights[j] {
				delta := weights[j] - wNew
				for i := 0; i < r; i++ {
					residual[i] += col[i] * delta
				}
				if math.Abs(delta) > maxDelta {
					maxDelta = math.Abs(delta)
				}
				weights[j] = wNew
			}
		}

		if maxDelta < l.Tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("Lasso", l.MaxIter, ""))
	}

	l.Weights = mat.NewVecDense(c, weights)
	l.Intercept = yMean
	for j := 0; j < c; j++ {
		l.Intercept -= weights[j] * colMeans[j]
	}

	l.SetFitted()

	return nil
}

// Predict returns an n x 1 matrix of predictions for X.
func (l *Lasso) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !l.IsFitted() {
		return nil, errors.NewNotFittedError("Lasso", "Predict")
	}

	_, c := X.Dims()
	if c != l.NFeatures {
		return nil, errors.NewDimensionError("Lasso.Predict", l.NFeatures, c, 1)
	}

	return predictLinear(X, l.Weights, l.Intercept), nil
}

// Score returns the coefficient of determination on the given data.
func (l *Lasso) Score(X, y mat.Matrix) (float64, error) {
	if !l.IsFitted() {
		return 0, errors.NewNotFittedError("Lasso", "Score")
	}

	yPred, err := l.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, yPred)
}

// GetWeights returns the learned coefficients.
func (l *Lasso) GetWeights() []float64 {
	return weightsSlice(l.Weights)
}

// GetIntercept returns the learned intercept.
func (l *Lasso) GetIntercept() float64 {
	if !l.IsFitted() {
		return 0
	}
	return l.Intercept
}

// GetParams returns the hyperparameters of the model.
func (l *Lasso) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":    l.Alpha,
		"max_iter": l.MaxIter,
		"tol":      l.Tol,
	}
}

// softThreshold applies S(x, lambda) = sign(x) * max(|x| - lambda, 0).
func softThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}

// Package svm implements a linear support vector regressor trained by
// stochastic gradient descent.
package svm

import (
	"math"
	"math/rand/v2"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/metrics"
	"github.com/cropml/yieldbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LinearSVR minimizes the epsilon-insensitive loss with an L2 penalty
// on the weights (strength 1/C, intercept unpenalized). Each epoch
// visits the samples in a freshly shuffled seeded order; training stops
// when the epoch loss plateaus within Tol or MaxIter epochs have run.
type LinearSVR struct {
	model.BaseEstimator

	// C is the inverse regularization strength.
	C float64
	// Epsilon is the half-width of the penalty-free tube around the
	// prediction.
	Epsilon float64
	// MaxIter caps the number of epochs.
	MaxIter int
	// Tol stops training once the epoch loss changes by less than it.
	Tol float64
	// LearningRate is the initial step size of the decaying schedule.
	LearningRate float64
	// RandomState seeds the per-epoch sample shuffle.
	RandomState int64

	coef      []float64
	intercept float64
	NFeatures int
	// NIter is the number of epochs run by the most recent Fit.
	NIter int
}

// NewLinearSVR creates a model with the given options applied.
func NewLinearSVR(opts ...Option) *LinearSVR {
	s := &LinearSVR{
		C:            1.0,
		Epsilon:      0.1,
		MaxIter:      1000,
		Tol:          1e-4,
		LearningRate: 0.1,
		RandomState:  42,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewLinearSVRDefault creates a model with C = 1.0 and epsilon = 0.1.
func NewLinearSVRDefault() *LinearSVR {
	return NewLinearSVR()
}

// Fit trains the regressor with SGD over shuffled epochs.
func (s *LinearSVR) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearSVR.Fit")

	if s.C <= 0 {
		return errors.NewValidationError("C", "must be positive", s.C)
	}
	if s.Epsilon < 0 {
		return errors.NewValidationError("epsilon", "must be non-negative", s.Epsilon)
	}
	if s.MaxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", s.MaxIter)
	}
	if s.Tol < 0 {
		return errors.NewValidationError("tol", "must be non-negative", s.Tol)
	}
	if s.LearningRate <= 0 {
		return errors.NewValidationError("learning_rate", "must be positive", s.LearningRate)
	}

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearSVR.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("LinearSVR.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("LinearSVR.Fit", "y must be a column vector")
	}

	s.NFeatures = c
	s.coef = make([]float64, c)
	s.intercept = 0

	lambda := 1.0 / s.C
	rng := rand.New(rand.NewPCG(uint64(s.RandomState), uint64(s.RandomState)))

	var steps int64
	prevLoss := math.Inf(1)
	converged := false

	for epoch := 0; epoch < s.MaxIter; epoch++ {
		s.NIter = epoch + 1

		var epochLoss float64
		for _, i := range rng.Perm(r) {
			eta := s.LearningRate / (1.0 + s.LearningRate*lambda*float64(steps))
			steps++

			pred := s.intercept
			for j := 0; j < c; j++ {
				pred += s.coef[j] * X.At(i, j)
			}

			residual := y.At(i, 0) - pred
			violation := math.Abs(residual) - s.Epsilon
			if violation > 0 {
				epochLoss += violation
			}

			// L2 shrink applies every step; the loss gradient only
			// when the sample leaves the tube.
			shrink := 1.0 - eta*lambda
			if violation > 0 {
				sign := 1.0
				if residual < 0 {
					sign = -1.0
				}
				for j := 0; j < c; j++ {
					s.coef[j] = s.coef[j]*shrink + eta*sign*X.At(i, j)
				}
				s.intercept += eta * sign
			} else {
				for j := 0; j < c; j++ {
					s.coef[j] *= shrink
				}
			}
		}

		epochLoss /= float64(r)
		if math.Abs(prevLoss-epochLoss) < s.Tol {
			converged = true
			break
		}
		prevLoss = epochLoss
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LinearSVR", s.NIter, "Maximum number of iterations reached"))
	}

	s.SetFitted()

	return nil
}

// Predict returns an n x 1 matrix of predictions for X.
func (s *LinearSVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("LinearSVR", "Predict")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("LinearSVR.Predict", s.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := s.intercept
		for j := 0; j < c; j++ {
			pred += s.coef[j] * X.At(i, j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Score returns the coefficient of determination on the given data.
func (s *LinearSVR) Score(X, y mat.Matrix) (float64, error) {
	if !s.IsFitted() {
		return 0, errors.NewNotFittedError("LinearSVR", "Score")
	}

	yPred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, yPred)
}

// GetWeights returns the learned coefficients.
func (s *LinearSVR) GetWeights() []float64 {
	if s.coef == nil {
		return nil
	}
	out := make([]float64, len(s.coef))
	copy(out, s.coef)
	return out
}

// GetIntercept returns the learned intercept.
func (s *LinearSVR) GetIntercept() float64 {
	if !s.IsFitted() {
		return 0
	}
	return s.intercept
}

// GetParams returns the hyperparameters of the model.
func (s *LinearSVR) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"c":             s.C,
		"epsilon":       s.Epsilon,
		"max_iter":      s.MaxIter,
		"tol":           s.Tol,
		"learning_rate": s.LearningRate,
	}
}

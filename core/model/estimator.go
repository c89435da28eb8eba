package model

import "gonum.org/v1/gonum/mat"

// Fitter is implemented by models that learn from labelled data.
type Fitter interface {
	// Fit trains the model on feature matrix X and target vector y.
	Fit(X, y mat.Matrix) error
}

// Predictor is implemented by fitted models that produce predictions.
type Predictor interface {
	// Predict returns one prediction per row of X as an n x 1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// LinearModel exposes the learned parameters of linear regressors.
type LinearModel interface {
	// Weights returns the learned coefficients, one per feature.
	Weights() []float64
	// Intercept returns the learned bias term.
	Intercept() float64
	// Score returns the coefficient of determination on X, y.
	Score(X, y mat.Matrix) (float64, error)
}

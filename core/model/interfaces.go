package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is implemented by models that can evaluate their own fit.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Regressor is the contract every model family in the sweep satisfies.
// The tuner and evaluator operate exclusively through this interface.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// ParameterGetter is implemented by models that expose their
// hyperparameters, used when reporting tuned settings.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters keyed by name.
	GetParams() map[string]interface{}
}

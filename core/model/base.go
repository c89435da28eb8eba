// Package model defines the estimator contracts shared by every model
// family in yieldbench. Concrete regressors embed BaseEstimator for
// fitted-state tracking and implement the interfaces in this package.
package model

// EstimatorState tracks whether an estimator has been fitted.
type EstimatorState int

const (
	// NotFitted marks an estimator that has not seen training data yet.
	NotFitted EstimatorState = iota
	// Fitted marks an estimator whose learned parameters are valid.
	Fitted
)

// BaseEstimator is embedded by every model and transformer to carry
// fitted-state bookkeeping.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether Fit has completed successfully.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted. Called at the end of Fit.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to the unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}

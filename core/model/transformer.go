package model

import "gonum.org/v1/gonum/mat"

// Transformer is implemented by preprocessing steps that rescale or
// otherwise rewrite a feature matrix.
type Transformer interface {
	// Fit learns the parameters of the transformation from X.
	Fit(X mat.Matrix) error

	// Transform applies the learned transformation to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits on X and returns the transformed X.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Package preprocessing implements the feature transformations swept by the
// harness: numeric scaling (standard, min-max) and categorical encoding
// (label, one-hot). Scalers follow the scikit-learn conventions for
// parameter names and defaults.
package preprocessing

import (
	"fmt"
	"math"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// StandardScaler shifts each feature to zero mean and unit variance.
type StandardScaler struct {
	model.BaseEstimator

	// Mean holds the per-feature mean learned by Fit.
	Mean []float64

	// Scale holds the per-feature standard deviation learned by Fit.
	Scale []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	// WithMean controls whether the mean is subtracted (default: true).
	WithMean bool

	// WithStd controls whether values are divided by the standard
	// deviation (default: true).
	WithStd bool
}

// NewStandardScaler creates a StandardScaler with explicit centering and
// scaling switches.
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(X)
//	XScaled, err := scaler.Transform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault creates a StandardScaler with both centering
// and scaling enabled.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit learns the per-feature mean and standard deviation from X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	if s.WithMean {
		for j := 0; j < c; j++ {
			sum := 0.0
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			s.Mean[j] = sum / float64(r)
		}
	} else {
		for j := 0; j < c; j++ {
			s.Mean[j] = 0.0
		}
	}

	if s.WithStd {
		for j := 0; j < c; j++ {
			sumSquares := 0.0
			for i := 0; i < r; i++ {
				diff := X.At(i, j) - s.Mean[j]
				sumSquares += diff * diff
			}
			// Population variance, matching scikit-learn.
			variance := sumSquares / float64(r)
			s.Scale[j] = math.Sqrt(variance)

			// Constant features keep scale 1 to avoid division by zero.
			if math.Abs(s.Scale[j]) < 1e-8 {
				s.Scale[j] = 1.0
			}
		}
	} else {
		for j := 0; j < c; j++ {
			s.Scale[j] = 1.0
		}
	}

	s.SetFitted()
	return nil
}

// Transform standardizes X using the statistics learned by Fit.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			value := X.At(i, j)
			standardized := (value - s.Mean[j]) / s.Scale[j]
			result.Set(i, j, standardized)
		}
	}

	return result, nil
}

// FitTransform fits the scaler on X and returns the standardized X.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			value := X.At(i, j)
			original := value*s.Scale[j] + s.Mean[j]
			result.Set(i, j, original)
		}
	}

	return result, nil
}

// GetParams returns the scaler's configuration.
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String returns a printable description of the scaler.
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}

// MinMaxScaler rescales each feature into a fixed range, [0, 1] unless
// configured otherwise.
type MinMaxScaler struct {
	model.BaseEstimator

	// Min holds the per-feature additive term of the transformation.
	Min []float64

	// Max holds the per-feature upper adjustment of the transformation.
	Max []float64

	// Scale holds the per-feature data range (max - min).
	Scale []float64

	// DataMin holds the per-feature minimum seen during Fit.
	DataMin []float64

	// DataMax holds the per-feature maximum seen during Fit.
	DataMax []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	// FeatureRange is the target range after scaling.
	FeatureRange [2]float64
}

// NewMinMaxScaler creates a MinMaxScaler targeting the given range.
//
//	scaler := preprocessing.NewMinMaxScaler([2]float64{0.0, 1.0})
//	err := scaler.Fit(X)
//	XScaled, err := scaler.Transform(X)
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{
		FeatureRange: featureRange,
	}
}

// NewMinMaxScalerDefault creates a MinMaxScaler targeting [0, 1].
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0.0, 1.0})
}

// Fit learns the per-feature minimum and maximum from X.
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	m.NFeatures = c
	m.DataMin = make([]float64, c)
	m.DataMax = make([]float64, c)
	m.Min = make([]float64, c)
	m.Max = make([]float64, c)
	m.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		min := X.At(0, j)
		max := X.At(0, j)

		for i := 1; i < r; i++ {
			val := X.At(i, j)
			if val < min {
				min = val
			}
			if val > max {
				max = val
			}
		}

		m.DataMin[j] = min
		m.DataMax[j] = max

		// Constant features keep scale 1 to avoid division by zero.
		dataRange := max - min
		if math.Abs(dataRange) < 1e-8 {
			m.Scale[j] = 1.0
		} else {
			m.Scale[j] = dataRange
		}

		featureRange := m.FeatureRange[1] - m.FeatureRange[0]
		m.Min[j] = m.FeatureRange[0] - min*featureRange/m.Scale[j]
		m.Max[j] = m.FeatureRange[1] - max*featureRange/m.Scale[j]
	}

	m.SetFitted()
	return nil
}

// Transform rescales X using the range learned by Fit.
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "Transform")
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.Transform", m.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)

	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			val := X.At(i, j)
			// X_scaled = (X - data_min) / (data_max - data_min) mapped onto
			// the target range.
			scaled := (val-m.DataMin[j])/m.Scale[j]*featureRange + m.FeatureRange[0]
			result.Set(i, j, scaled)
		}
	}

	return result, nil
}

// FitTransform fits the scaler on X and returns the rescaled X.
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform maps rescaled data back to the original range.
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.InverseTransform", m.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)

	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			val := X.At(i, j)
			original := ((val-m.FeatureRange[0])/featureRange)*m.Scale[j] + m.DataMin[j]
			result.Set(i, j, original)
		}
	}

	return result, nil
}

// GetParams returns the scaler's configuration.
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"feature_range": m.FeatureRange,
	}
}

// String returns a printable description of the scaler.
func (m *MinMaxScaler) String() string {
	if !m.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])",
			m.FeatureRange[0], m.FeatureRange[1])
	}
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f], n_features=%d)",
		m.FeatureRange[0], m.FeatureRange[1], m.NFeatures)
}

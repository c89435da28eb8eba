package experiment

import (
	"fmt"

	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/cropml/yieldbench/dataset"
	"github.com/cropml/yieldbench/pkg/errors"
	"github.com/cropml/yieldbench/preprocessing"
)

// Scaling method names accepted in configuration.
const (
	ScaleNone     = "none"
	ScaleStandard = "standard"
	ScaleMinMax   = "minmax"
)

// Encoding method names accepted in configuration.
const (
	EncodeNone   = "none"
	EncodeLabel  = "label"
	EncodeOneHot = "onehot"
)

// Pipeline stage names recorded on cell failures.
const (
	StageEncode   = "encode"
	StageAssemble = "assemble"
	StageCheckNaN = "check_nan"
	StageScale    = "scale"
	StageVariance = "variance_filter"
	StageSelect   = "select"
	StageSplit    = "split"
	StageModels   = "models"
)

// encodeTable applies the cell's encoding to every categorical feature
// column. Label encoding replaces the column with ordinal codes;
// one-hot drops it and appends k-1 indicator columns; none leaves the
// table untouched so categorical text reaches the numeric pipeline
// as-is.
func encodeTable(t *dataset.Table, encoding string) (*dataset.Table, error) {
	switch encoding {
	case EncodeNone:
		return t, nil

	case EncodeLabel:
		out := t
		for _, name := range t.CategoricalFeatures() {
			records, err := out.Records(name)
			if err != nil {
				return nil, err
			}
			codes, err := preprocessing.NewLabelEncoder().FitTransform(records)
			if err != nil {
				return nil, errors.Wrapf(err, "label-encode column %q", name)
			}
			out, err = out.ReplaceColumn(series.New(codes, series.Float, name))
			if err != nil {
				return nil, err
			}
		}
		return out, nil

	case EncodeOneHot:
		out := t
		for _, name := range t.CategoricalFeatures() {
			records, err := out.Records(name)
			if err != nil {
				return nil, err
			}

			enc := preprocessing.NewOneHotEncoderDefault()
			if err := enc.Fit(records); err != nil {
				return nil, errors.Wrapf(err, "one-hot encode column %q", name)
			}

			// A single-category column leaves only the dropped baseline,
			// so the column carries no information and goes away.
			if enc.Width() == 0 {
				out, err = out.DropColumns(name)
				if err != nil {
					return nil, err
				}
				continue
			}

			indicators, err := enc.Transform(records)
			if err != nil {
				return nil, errors.Wrapf(err, "one-hot encode column %q", name)
			}

			for j, indicatorName := range enc.FeatureNames(name) {
				col := make([]float64, len(records))
				mat.Col(col, j, indicators)
				out, err = out.AppendColumn(series.New(col, series.Float, indicatorName))
				if err != nil {
					return nil, err
				}
			}
			out, err = out.DropColumns(name)
			if err != nil {
				return nil, err
			}
		}
		return out, nil

	default:
		return nil, errors.NewValidationError("encoding", "unknown encoding method", encoding)
	}
}

// residualFill replaces NaN cells left after encoding with their
// column mean, in place. A column with no numeric values at all cannot
// be repaired and fails the cell, which is how raw categorical text
// surfaces under the "none" encoding.
func residualFill(X *mat.Dense, names []string) error {
	r, c := X.Dims()
	for j := 0; j < c; j++ {
		sum := 0.0
		finite := 0
		for i := 0; i < r; i++ {
			if v := X.At(i, j); v == v {
				sum += v
				finite++
			}
		}
		if finite == r {
			continue
		}
		if finite == 0 {
			return errors.NewValueError("residualFill",
				fmt.Sprintf("column %q has no numeric values after encoding", names[j]))
		}

		mean := sum / float64(finite)
		filled := 0
		for i := 0; i < r; i++ {
			if v := X.At(i, j); v != v {
				X.Set(i, j, mean)
				filled++
			}
		}
		errors.Warn(errors.NewDataQualityWarning(names[j], filled, "filled with column mean"))
	}
	return nil
}

// scaleMatrix applies the cell's scaling to the whole design matrix,
// indicator columns included.
func scaleMatrix(X *mat.Dense, scaling string) (mat.Matrix, error) {
	switch scaling {
	case ScaleNone:
		return X, nil
	case ScaleStandard:
		return preprocessing.NewStandardScalerDefault().FitTransform(X)
	case ScaleMinMax:
		return preprocessing.NewMinMaxScalerDefault().FitTransform(X)
	default:
		return nil, errors.NewValidationError("scaling", "unknown scaling method", scaling)
	}
}

// columnSlice copies the first column of an n x 1 matrix.
func columnSlice(m mat.Matrix) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = m.At(i, 0)
	}
	return out
}

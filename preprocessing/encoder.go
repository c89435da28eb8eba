package preprocessing

import (
	"fmt"
	"sort"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LabelEncoder maps string categories to integer codes. Codes follow the
// lexicographic order of the categories seen during Fit, so the mapping is
// reproducible across runs regardless of row order.
type LabelEncoder struct {
	model.BaseEstimator

	// Classes holds the categories in code order: Classes[i] has code i.
	Classes []string

	index map[string]int
}

// NewLabelEncoder creates an unfitted LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit learns the category set from values.
func (e *LabelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	e.Classes = make([]string, 0, len(seen))
	for v := range seen {
		e.Classes = append(e.Classes, v)
	}
	sort.Strings(e.Classes)

	e.index = make(map[string]int, len(e.Classes))
	for i, v := range e.Classes {
		e.index[v] = i
	}

	e.SetFitted()
	return nil
}

// Transform converts values to their integer codes. A category not seen
// during Fit is an error.
func (e *LabelEncoder) Transform(values []string) ([]float64, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	codes := make([]float64, len(values))
	for i, v := range values {
		code, ok := e.index[v]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform",
				fmt.Sprintf("unknown category %q", v))
		}
		codes[i] = float64(code)
	}
	return codes, nil
}

// FitTransform fits on values and returns their codes.
func (e *LabelEncoder) FitTransform(values []string) ([]float64, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

// InverseTransform maps codes back to their categories.
func (e *LabelEncoder) InverseTransform(codes []float64) ([]string, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	values := make([]string, len(codes))
	for i, code := range codes {
		idx := int(code)
		if idx < 0 || idx >= len(e.Classes) || float64(idx) != code {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform",
				fmt.Sprintf("code %v out of range [0, %d)", code, len(e.Classes)))
		}
		values[i] = e.Classes[idx]
	}
	return values, nil
}

// String returns a printable description of the encoder.
func (e *LabelEncoder) String() string {
	if !e.IsFitted() {
		return "LabelEncoder()"
	}
	return fmt.Sprintf("LabelEncoder(n_classes=%d)", len(e.Classes))
}

// OneHotEncoder expands a categorical column into indicator columns. With
// DropFirst set, the lexicographically first category becomes the baseline
// and gets no column, yielding k-1 indicators for k categories.
type OneHotEncoder struct {
	model.BaseEstimator

	// Classes holds the categories in lexicographic order. When DropFirst
	// is set, Classes[0] is the baseline.
	Classes []string

	// DropFirst drops the first category's indicator column.
	DropFirst bool

	index map[string]int
}

// NewOneHotEncoder creates an encoder with an explicit drop-first switch.
func NewOneHotEncoder(dropFirst bool) *OneHotEncoder {
	return &OneHotEncoder{DropFirst: dropFirst}
}

// NewOneHotEncoderDefault creates an encoder that drops the first category.
func NewOneHotEncoderDefault() *OneHotEncoder {
	return NewOneHotEncoder(true)
}

// Fit learns the category set from values.
func (e *OneHotEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	e.Classes = make([]string, 0, len(seen))
	for v := range seen {
		e.Classes = append(e.Classes, v)
	}
	sort.Strings(e.Classes)

	e.index = make(map[string]int, len(e.Classes))
	for i, v := range e.Classes {
		e.index[v] = i
	}

	e.SetFitted()
	return nil
}

// Width returns the number of indicator columns Transform will produce.
// A single-category column with DropFirst yields zero columns; callers
// should drop such a column instead of transforming it.
func (e *OneHotEncoder) Width() int {
	if !e.IsFitted() {
		return 0
	}
	if e.DropFirst {
		return len(e.Classes) - 1
	}
	return len(e.Classes)
}

// FeatureNames returns the output column names for a column called base,
// one per indicator in column order, e.g. "Region_North".
func (e *OneHotEncoder) FeatureNames(base string) []string {
	if !e.IsFitted() || e.Width() == 0 {
		return nil
	}

	start := 0
	if e.DropFirst {
		start = 1
	}
	names := make([]string, 0, e.Width())
	for _, class := range e.Classes[start:] {
		names = append(names, base+"_"+class)
	}
	return names
}

// Transform converts values into an n x Width() indicator matrix. A
// category not seen during Fit is an error, as is a fitted width of zero.
func (e *OneHotEncoder) Transform(values []string) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}

	width := e.Width()
	if width == 0 {
		return nil, errors.NewValueError("OneHotEncoder.Transform",
			"single-category column leaves no indicator columns")
	}

	result := mat.NewDense(len(values), width, nil)
	for i, v := range values {
		idx, ok := e.index[v]
		if !ok {
			return nil, errors.NewValueError("OneHotEncoder.Transform",
				fmt.Sprintf("unknown category %q", v))
		}
		if e.DropFirst {
			if idx == 0 {
				continue
			}
			result.Set(i, idx-1, 1.0)
		} else {
			result.Set(i, idx, 1.0)
		}
	}
	return result, nil
}

// FitTransform fits on values and returns their indicator matrix.
func (e *OneHotEncoder) FitTransform(values []string) (*mat.Dense, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

// String returns a printable description of the encoder.
func (e *OneHotEncoder) String() string {
	if !e.IsFitted() {
		return fmt.Sprintf("OneHotEncoder(drop_first=%t)", e.DropFirst)
	}
	return fmt.Sprintf("OneHotEncoder(drop_first=%t, n_classes=%d)", e.DropFirst, len(e.Classes))
}

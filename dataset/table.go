// Package dataset loads the crop yield table and exposes the column views
// the preprocessing pipeline works with. A Table wraps a gota DataFrame
// together with the name of the target column, and all mutating operations
// return a new Table so experiment cells never share state.
package dataset

import (
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/cropml/yieldbench/pkg/errors"
	"github.com/cropml/yieldbench/pkg/log"
)

// Table is an immutable view of a loaded dataset.
type Table struct {
	df     dataframe.DataFrame
	target string
}

// Load reads a CSV file with a header row into a Table. Column types are
// detected from the data; empty fields and the usual NA spellings become
// missing values.
func Load(path, target string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{"", "NA", "NaN", "nan", "null"}),
	)

	t, err := FromDataFrame(df, target)
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("dataset").Info("dataset loaded",
		"path", path,
		log.SamplesKey, t.NRows(),
		log.FeaturesKey, len(t.FeatureNames()),
		log.TargetKey, target,
	)
	return t, nil
}

// FromDataFrame wraps an existing DataFrame. The target column must exist.
func FromDataFrame(df dataframe.DataFrame, target string) (*Table, error) {
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "read dataframe")
	}
	if df.Nrow() == 0 || df.Ncol() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset")
	}

	found := false
	for _, name := range df.Names() {
		if name == target {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Newf("target column %q not found in dataset", target)
	}

	return &Table{df: df, target: target}, nil
}

// NRows returns the number of rows.
func (t *Table) NRows() int { return t.df.Nrow() }

// NCols returns the number of columns, target included.
func (t *Table) NCols() int { return t.df.Ncol() }

// Target returns the target column name.
func (t *Table) Target() string { return t.target }

// ColumnNames returns every column name in dataframe order.
func (t *Table) ColumnNames() []string { return t.df.Names() }

// FeatureNames returns every column name except the target, in order.
func (t *Table) FeatureNames() []string {
	names := make([]string, 0, t.df.Ncol()-1)
	for _, name := range t.df.Names() {
		if name != t.target {
			names = append(names, name)
		}
	}
	return names
}

// NumericFeatures returns the feature columns holding numeric data.
// Boolean columns count as numeric since they convert cleanly to 0/1.
func (t *Table) NumericFeatures() []string {
	names := t.df.Names()
	types := t.df.Types()

	numeric := make([]string, 0, len(names))
	for i, name := range names {
		if name == t.target {
			continue
		}
		switch types[i] {
		case series.Float, series.Int, series.Bool:
			numeric = append(numeric, name)
		}
	}
	return numeric
}

// CategoricalFeatures returns the feature columns holding string data.
func (t *Table) CategoricalFeatures() []string {
	names := t.df.Names()
	types := t.df.Types()

	categorical := make([]string, 0, len(names))
	for i, name := range names {
		if name == t.target {
			continue
		}
		if types[i] == series.String {
			categorical = append(categorical, name)
		}
	}
	return categorical
}

// Column returns the named column.
func (t *Table) Column(name string) (series.Series, error) {
	if !t.hasColumn(name) {
		return series.Series{}, errors.Newf("column %q not found in dataset", name)
	}
	return t.df.Col(name), nil
}

// Records returns the named column as strings, the form encoders consume.
func (t *Table) Records(name string) ([]string, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return col.Records(), nil
}

// ReplaceColumn returns a Table with the column of the same name replaced.
func (t *Table) ReplaceColumn(s series.Series) (*Table, error) {
	if !t.hasColumn(s.Name) {
		return nil, errors.Newf("column %q not found in dataset", s.Name)
	}
	df := t.df.Mutate(s)
	if df.Err != nil {
		return nil, errors.Wrapf(df.Err, "replace column %q", s.Name)
	}
	return &Table{df: df, target: t.target}, nil
}

// AppendColumn returns a Table with a new column added after the existing
// ones. The name must not collide with an existing column.
func (t *Table) AppendColumn(s series.Series) (*Table, error) {
	if t.hasColumn(s.Name) {
		return nil, errors.Newf("column %q already exists in dataset", s.Name)
	}
	df := t.df.Mutate(s)
	if df.Err != nil {
		return nil, errors.Wrapf(df.Err, "append column %q", s.Name)
	}
	return &Table{df: df, target: t.target}, nil
}

// DropColumns returns a Table without the named feature columns. Dropping
// the target is an error.
func (t *Table) DropColumns(names ...string) (*Table, error) {
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == t.target {
			return nil, errors.Newf("cannot drop target column %q", name)
		}
		if !t.hasColumn(name) {
			return nil, errors.Newf("column %q not found in dataset", name)
		}
		drop[name] = struct{}{}
	}

	kept := make([]string, 0, t.df.Ncol())
	for _, name := range t.df.Names() {
		if _, gone := drop[name]; !gone {
			kept = append(kept, name)
		}
	}

	df := t.df.Select(kept)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "drop columns")
	}
	return &Table{df: df, target: t.target}, nil
}

// Matrix extracts the named columns into a dense matrix, one column per
// name in the given order. Values that do not convert to a float become
// NaN in the result; callers decide how to treat them.
func (t *Table) Matrix(cols []string) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "matrix with no columns")
	}

	r := t.df.Nrow()
	result := mat.NewDense(r, len(cols), nil)
	for j, name := range cols {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		result.SetCol(j, col.Float())
	}
	return result, nil
}

// FeatureMatrix extracts every feature column into a dense matrix and
// returns the column names in matrix order.
func (t *Table) FeatureMatrix() (*mat.Dense, []string, error) {
	names := t.FeatureNames()
	X, err := t.Matrix(names)
	if err != nil {
		return nil, nil, err
	}
	return X, names, nil
}

// TargetVector extracts the target column. A target that still contains
// missing values after imputation is an error.
func (t *Table) TargetVector() (*mat.VecDense, error) {
	col, err := t.Column(t.target)
	if err != nil {
		return nil, err
	}

	vals := col.Float()
	for i, v := range vals {
		if v != v {
			return nil, errors.NewValueError("TargetVector",
				fmt.Sprintf("target column contains a missing value at row %d", i))
		}
	}
	return mat.NewVecDense(len(vals), vals), nil
}

// MissingCounts returns the number of missing values per column, counting
// only columns that have at least one.
func (t *Table) MissingCounts() map[string]int {
	counts := make(map[string]int)
	for _, name := range t.df.Names() {
		if n := countMissing(t.df.Col(name)); n > 0 {
			counts[name] = n
		}
	}
	return counts
}

func (t *Table) hasColumn(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

package dataset

import (
	"sort"

	"github.com/go-gota/gota/series"

	"github.com/cropml/yieldbench/pkg/errors"
	"github.com/cropml/yieldbench/pkg/log"
)

// Impute returns a Table with every missing value filled in: numeric
// columns with their column mean, categorical and boolean columns with
// their most frequent value. Ties on the mode go to the lexicographically
// smallest category so the result does not depend on row order. Each
// repaired column raises a DataQualityWarning.
func (t *Table) Impute() (*Table, error) {
	names := t.df.Names()
	types := t.df.Types()
	logger := log.GetLoggerWithName("dataset")

	out := t
	for i, name := range names {
		col := out.df.Col(name)
		missing := countMissing(col)
		if missing == 0 {
			continue
		}

		var (
			filled series.Series
			action string
			err    error
		)
		switch types[i] {
		case series.Float, series.Int:
			filled, err = fillMean(col)
			action = "filled with column mean"
		case series.String, series.Bool:
			filled, err = fillMode(col, types[i])
			action = "filled with column mode"
		default:
			err = errors.Newf("unsupported column type %v", types[i])
		}
		if err != nil {
			return nil, errors.Wrapf(err, "impute column %q", name)
		}

		out, err = out.ReplaceColumn(filled)
		if err != nil {
			return nil, err
		}

		errors.Warn(errors.NewDataQualityWarning(name, missing, action))
		logger.Debug("imputed column",
			"column", name,
			"missing", missing,
			"action", action,
		)
	}
	return out, nil
}

func countMissing(col series.Series) int {
	n := 0
	for i := 0; i < col.Len(); i++ {
		if col.Elem(i).IsNA() {
			n++
		}
	}
	return n
}

// fillMean replaces missing values with the mean of the observed ones.
// The repaired column is always a float column, matching how integer
// columns behave once a fractional mean lands in them.
func fillMean(col series.Series) (series.Series, error) {
	vals := col.Float()

	var sum float64
	observed := 0
	for _, v := range vals {
		if v == v {
			sum += v
			observed++
		}
	}
	if observed == 0 {
		return series.Series{}, errors.Newf("column has no observed values")
	}

	mean := sum / float64(observed)
	for i, v := range vals {
		if v != v {
			vals[i] = mean
		}
	}
	return series.New(vals, series.Float, col.Name), nil
}

// fillMode replaces missing values with the most frequent observed value,
// keeping the column's original type.
func fillMode(col series.Series, colType series.Type) (series.Series, error) {
	counts := make(map[string]int)
	values := make([]string, col.Len())
	for i := 0; i < col.Len(); i++ {
		elem := col.Elem(i)
		if elem.IsNA() {
			continue
		}
		v := elem.String()
		values[i] = v
		counts[v]++
	}
	if len(counts) == 0 {
		return series.Series{}, errors.Newf("column has no observed values")
	}

	categories := make([]string, 0, len(counts))
	for v := range counts {
		categories = append(categories, v)
	}
	sort.Strings(categories)

	mode := categories[0]
	for _, v := range categories[1:] {
		if counts[v] > counts[mode] {
			mode = v
		}
	}

	for i := 0; i < col.Len(); i++ {
		if col.Elem(i).IsNA() {
			values[i] = mode
		}
	}
	return series.New(values, colType, col.Name), nil
}

package experiment

import (
	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/linear"
	"github.com/cropml/yieldbench/neighbors"
	"github.com/cropml/yieldbench/pkg/errors"
	"github.com/cropml/yieldbench/svm"
	"github.com/cropml/yieldbench/tree"
	"github.com/cropml/yieldbench/tuning"
)

// Family describes one model family of the sweep: how to build it from
// a hyperparameter assignment and, for tuned families, which search
// spaces to explore. A nil Grid means the family runs with fixed
// defaults.
type Family struct {
	Name string

	// New builds an unfitted model. A nil assignment means defaults.
	New func(p tuning.Params) model.Regressor

	// Grid is the exhaustive search space, nil when the family is not
	// tuned.
	Grid tuning.Grid

	// Space is the randomized search space, nil when the family is not
	// tuned.
	Space tuning.Grid
}

// Tuned reports whether the family has a search space.
func (f Family) Tuned() bool {
	return len(f.Grid) > 0 || len(f.Space) > 0
}

func newTreeRegressor(p tuning.Params) model.Regressor {
	if p == nil {
		return tree.NewRegressorDefault()
	}
	return tree.NewRegressor(
		tree.WithMaxDepth(p["max_depth"].(int)),
		tree.WithMinSamplesSplit(p["min_samples_split"].(int)),
		tree.WithMinSamplesLeaf(p["min_samples_leaf"].(int)),
		tree.WithMaxFeatures(p["max_features"].(string)),
	)
}

// treeGrid is the exhaustive space: 5 x 3 x 3 x 3 = 135 combinations.
// A max_depth of 0 grows the tree unbounded.
func treeGrid() tuning.Grid {
	return tuning.Grid{
		{Name: "max_depth", Values: []interface{}{0, 5, 10, 15, 20}},
		{Name: "min_samples_split", Values: []interface{}{2, 5, 10}},
		{Name: "min_samples_leaf", Values: []interface{}{1, 2, 4}},
		{Name: "max_features", Values: []interface{}{"sqrt", "log2", "all"}},
	}
}

// treeSpace spans the same axes with a denser value set for sampling.
func treeSpace() tuning.Grid {
	return tuning.Grid{
		{Name: "max_depth", Values: []interface{}{0, 3, 5, 8, 10, 12, 15, 20}},
		{Name: "min_samples_split", Values: []interface{}{2, 3, 5, 8, 10}},
		{Name: "min_samples_leaf", Values: []interface{}{1, 2, 3, 4, 5}},
		{Name: "max_features", Values: []interface{}{"sqrt", "log2", "all"}},
	}
}

// AllFamilies returns the six families of the study in report order.
func AllFamilies() []Family {
	return []Family{
		{
			Name: "linear",
			New:  func(tuning.Params) model.Regressor { return linear.NewLinearRegression() },
		},
		{
			Name: "ridge",
			New:  func(tuning.Params) model.Regressor { return linear.NewRidgeDefault() },
		},
		{
			Name: "lasso",
			New:  func(tuning.Params) model.Regressor { return linear.NewLassoDefault() },
		},
		{
			Name:  "tree",
			New:   newTreeRegressor,
			Grid:  treeGrid(),
			Space: treeSpace(),
		},
		{
			Name: "knn",
			New:  func(tuning.Params) model.Regressor { return neighbors.NewKNNRegressorDefault() },
		},
		{
			Name: "svr",
			New:  func(tuning.Params) model.Regressor { return svm.NewLinearSVRDefault() },
		},
	}
}

// FamilyNames returns the names of all families in report order.
func FamilyNames() []string {
	families := AllFamilies()
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.Name
	}
	return names
}

// ResolveFamilies maps configured names onto family values, preserving
// the configured order.
func ResolveFamilies(names []string) ([]Family, error) {
	byName := make(map[string]Family)
	for _, f := range AllFamilies() {
		byName[f.Name] = f
	}

	resolved := make([]Family, 0, len(names))
	for _, name := range names {
		f, ok := byName[name]
		if !ok {
			return nil, errors.NewValidationError("models", "unknown model family", name)
		}
		resolved = append(resolved, f)
	}
	return resolved, nil
}

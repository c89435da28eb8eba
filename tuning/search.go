package tuning

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/evaluation"
	"github.com/cropml/yieldbench/pkg/errors"
)

// ModelBuilder constructs an unfitted model from one hyperparameter
// assignment. Invalid assignments surface as Fit errors during
// scoring, matching how the estimators themselves validate.
type ModelBuilder func(p Params) model.Regressor

// SearchResult reports the winning assignment of a search.
type SearchResult struct {
	BestParams Params
	BestScore  float64
	Candidates int
}

// GridSearchCV scores every combination of the grid by k-fold
// cross-validated R² and keeps the best. Ties keep the earlier
// candidate, so a fixed grid always resolves the same way.
type GridSearchCV struct {
	Grid    Grid
	NSplits int
	Seed    int
}

// NewGridSearchCV creates an exhaustive searcher. Fewer than two
// splits falls back to five.
func NewGridSearchCV(grid Grid, nSplits, seed int) *GridSearchCV {
	if nSplits < 2 {
		nSplits = 5
	}
	return &GridSearchCV{Grid: grid, NSplits: nSplits, Seed: seed}
}

// Search evaluates all grid combinations on X, y.
func (gs *GridSearchCV) Search(builder ModelBuilder, X, y mat.Matrix) (*SearchResult, error) {
	return searchCandidates(gs.Grid.Enumerate(), builder, X, y, gs.NSplits, gs.Seed)
}

// RandomizedSearchCV scores NIter seeded samples from the space
// instead of the full product.
type RandomizedSearchCV struct {
	Space   Grid
	NIter   int
	NSplits int
	Seed    int
}

// NewRandomizedSearchCV creates a sampling searcher. Non-positive
// iteration counts fall back to ten, fewer than two splits to five.
func NewRandomizedSearchCV(space Grid, nIter, nSplits, seed int) *RandomizedSearchCV {
	if nIter < 1 {
		nIter = 10
	}
	if nSplits < 2 {
		nSplits = 5
	}
	return &RandomizedSearchCV{Space: space, NIter: nIter, NSplits: nSplits, Seed: seed}
}

// Search evaluates the sampled candidates on X, y.
func (rs *RandomizedSearchCV) Search(builder ModelBuilder, X, y mat.Matrix) (*SearchResult, error) {
	return searchCandidates(rs.Space.Sample(rs.NIter, int64(rs.Seed)), builder, X, y, rs.NSplits, rs.Seed)
}

func searchCandidates(candidates []Params, builder ModelBuilder, X, y mat.Matrix, nSplits, seed int) (*SearchResult, error) {
	if builder == nil {
		return nil, errors.NewValueError("Search", "model builder must not be nil")
	}
	if len(candidates) == 0 {
		return nil, errors.NewValidationError("param_grid", "must contain at least one candidate", len(candidates))
	}

	best := &SearchResult{
		BestScore:  math.Inf(-1),
		Candidates: len(candidates),
	}

	for i, cand := range candidates {
		factory := func() model.Regressor { return builder(cand) }

		cv, err := evaluation.CrossValidate(factory, X, y, evaluation.NewKFold(nSplits, true, seed))
		if err != nil {
			return nil, errors.Wrapf(err, "candidate %d", i)
		}

		if cv.R2Mean > best.BestScore {
			best.BestScore = cv.R2Mean
			best.BestParams = cand
		}
	}

	return best, nil
}

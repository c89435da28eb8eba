// Package neighbors implements k-nearest-neighbor regression.
package neighbors

import (
	"math"
	"sort"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/core/parallel"
	"github.com/cropml/yieldbench/metrics"
	"github.com/cropml/yieldbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Neighbor weighting modes.
const (
	WeightsUniform  = "uniform"
	WeightsDistance = "distance"
)

// KNNRegressor predicts the (optionally distance-weighted) mean target
// of the K nearest training samples under Euclidean distance. Fit only
// stores the training data; all work happens in Predict.
type KNNRegressor struct {
	model.BaseEstimator

	// K is the number of neighbors consulted per prediction.
	K int
	// Weights selects neighbor averaging: WeightsUniform or
	// WeightsDistance.
	Weights string

	trainX    *mat.Dense
	trainY    []float64
	NFeatures int
}

// NewKNNRegressor creates a model with the given options applied.
func NewKNNRegressor(opts ...Option) *KNNRegressor {
	k := &KNNRegressor{
		K:       5,
		Weights: WeightsUniform,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// NewKNNRegressorDefault creates a model with K = 5 and uniform weights.
func NewKNNRegressorDefault() *KNNRegressor {
	return NewKNNRegressor()
}

// Fit stores a copy of the training data.
func (k *KNNRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "KNNRegressor.Fit")

	if k.K < 1 {
		return errors.NewValidationError("n_neighbors", "must be at least 1", k.K)
	}
	if k.Weights != WeightsUniform && k.Weights != WeightsDistance {
		return errors.NewValidationError("weights", `must be "uniform" or "distance"`, k.Weights)
	}

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("KNNRegressor.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("KNNRegressor.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("KNNRegressor.Fit", "y must be a column vector")
	}

	if k.K > r {
		return errors.NewValidationError("n_neighbors", "must not exceed the training sample count", k.K)
	}

	k.NFeatures = c
	k.trainX = mat.DenseCopyOf(X)
	k.trainY = make([]float64, r)
	for i := 0; i < r; i++ {
		k.trainY[i] = y.At(i, 0)
	}

	k.SetFitted()

	return nil
}

// Predict returns an n x 1 matrix of neighbor-averaged targets. Query
// rows are processed in parallel.
func (k *KNNRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !k.IsFitted() {
		return nil, errors.NewNotFittedError("KNNRegressor", "Predict")
	}

	r, c := X.Dims()
	if c != k.NFeatures {
		return nil, errors.NewDimensionError("KNNRegressor.Predict", k.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	parallel.Parallelize(r, func(start, end int) {
		for i := start; i < end; i++ {
			predictions.Set(i, 0, k.predictRow(X, i))
		}
	})

	return predictions, nil
}

// Score returns the coefficient of determination on the given data.
func (k *KNNRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !k.IsFitted() {
		return 0, errors.NewNotFittedError("KNNRegressor", "Score")
	}

	yPred, err := k.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, yPred)
}

// GetParams returns the hyperparameters of the model.
func (k *KNNRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": k.K,
		"weights":     k.Weights,
	}
}

type neighborCandidate struct {
	dist  float64
	index int
}

// predictRow ranks every training sample by squared distance to query
// row i and averages the K nearest. Distance ties break on the lower
// training index so predictions are stable across runs.
func (k *KNNRegressor) predictRow(X mat.Matrix, i int) float64 {
	n := len(k.trainY)
	candidates := make([]neighborCandidate, n)

	for j := 0; j < n; j++ {
		var sum float64
		for f := 0; f < k.NFeatures; f++ {
			d := X.At(i, f) - k.trainX.At(j, f)
			sum += d * d
		}
		candidates[j] = neighborCandidate{dist: sum, index: j}
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].dist != candidates[b].dist {
			return candidates[a].dist < candidates[b].dist
		}
		return candidates[a].index < candidates[b].index
	})
	nearest := candidates[:k.K]

	if k.Weights == WeightsDistance {
		return distanceWeightedMean(nearest, k.trainY)
	}

	var sum float64
	for _, c := range nearest {
		sum += k.trainY[c.index]
	}
	return sum / float64(k.K)
}

// distanceWeightedMean averages targets with weight 1/distance. Exact
// matches would get infinite weight, so when any neighbor sits at
// distance zero the prediction is the plain mean of those matches.
func distanceWeightedMean(nearest []neighborCandidate, targets []float64) float64 {
	var exactSum float64
	exact := 0
	for _, c := range nearest {
		if c.dist == 0 {
			exactSum += targets[c.index]
			exact++
		}
	}
	if exact > 0 {
		return exactSum / float64(exact)
	}

	var num, den float64
	for _, c := range nearest {
		w := 1.0 / math.Sqrt(c.dist)
		num += w * targets[c.index]
		den += w
	}
	return num / den
}

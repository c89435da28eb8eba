// Package tree implements a CART regression tree with variance-reduction
// splits.
package tree

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/metrics"
	"github.com/cropml/yieldbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Regressor is a binary regression tree. Splits minimize the summed
// squared error of the two children; leaves predict the mean target of
// the samples that reach them.
type Regressor struct {
	model.BaseEstimator

	// MaxDepth limits the tree depth. 0 means unbounded.
	MaxDepth int
	// MinSamplesSplit is the minimum number of samples a node needs
	// before a split is attempted.
	MinSamplesSplit int
	// MinSamplesLeaf is the minimum number of samples each child must
	// keep for a split to be valid.
	MinSamplesLeaf int
	// MaxFeatures controls how many features each split considers:
	// "" or "all" for every feature, "sqrt" or "log2" for a seeded
	// random subset of that size.
	MaxFeatures string
	// RandomState seeds the feature subsampling.
	RandomState int64

	root      *node
	NFeatures int
}

type node struct {
	leaf      bool
	feature   int
	threshold float64
	left      *node
	right     *node

	n     int
	value float64
}

// NewRegressor creates a regression tree with sklearn defaults: no
// depth limit, MinSamplesSplit 2, MinSamplesLeaf 1, all features.
func NewRegressor(opts ...Option) *Regressor {
	t := &Regressor{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     "",
		RandomState:     42,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewRegressorDefault creates a regression tree with default settings.
func NewRegressorDefault() *Regressor {
	return NewRegressor()
}

// Fit grows the tree on X (n x p) and y (n x 1).
func (t *Regressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "tree.Regressor.Fit")

	if t.MaxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be non-negative", t.MaxDepth)
	}
	if t.MinSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", t.MinSamplesSplit)
	}
	if t.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", t.MinSamplesLeaf)
	}
	switch t.MaxFeatures {
	case "", "all", "sqrt", "log2":
	default:
		return errors.NewValidationError("max_features", `must be one of "", "all", "sqrt", "log2"`, t.MaxFeatures)
	}

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("tree.Regressor.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("tree.Regressor.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("tree.Regressor.Fit", "y must be a column vector")
	}

	t.NFeatures = c

	targets := make([]float64, r)
	for i := 0; i < r; i++ {
		targets[i] = y.At(i, 0)
	}

	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}

	rng := rand.New(rand.NewPCG(uint64(t.RandomState), uint64(t.RandomState)))

	t.root = t.buildNode(X, targets, idx, 0, c, rng)
	t.SetFitted()

	return nil
}

// Predict returns an n x 1 matrix of leaf means for the rows of X.
func (t *Regressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("tree.Regressor", "Predict")
	}

	r, c := X.Dims()
	if c != t.NFeatures {
		return nil, errors.NewDimensionError("tree.Regressor.Predict", t.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		n := t.root
		for !n.leaf {
			if X.At(i, n.feature) <= n.threshold {
				n = n.left
			} else {
				n = n.right
			}
		}
		predictions.Set(i, 0, n.value)
	}

	return predictions, nil
}

// Score returns the coefficient of determination on the given data.
func (t *Regressor) Score(X, y mat.Matrix) (float64, error) {
	if !t.IsFitted() {
		return 0, errors.NewNotFittedError("tree.Regressor", "Score")
	}

	yPred, err := t.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, yPred)
}

// GetParams returns the hyperparameters of the tree.
func (t *Regressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         t.MaxDepth,
		"min_samples_split": t.MinSamplesSplit,
		"min_samples_leaf":  t.MinSamplesLeaf,
		"max_features":      t.MaxFeatures,
	}
}

// Depth returns the depth of the fitted tree; a lone root counts as 0.
func (t *Regressor) Depth() int {
	return depthOf(t.root)
}

// LeafCount returns the number of leaves in the fitted tree.
func (t *Regressor) LeafCount() int {
	return leavesOf(t.root)
}

func depthOf(n *node) int {
	if n == nil || n.leaf {
		return 0
	}
	left := depthOf(n.left)
	right := depthOf(n.right)
	if left > right {
		return left + 1
	}
	return right + 1
}

func leavesOf(n *node) int {
	if n == nil {
		return 0
	}
	if n.leaf {
		return 1
	}
	return leavesOf(n.left) + leavesOf(n.right)
}

// splitCandidate describes the best split found for one feature.
type splitCandidate struct {
	feature   int
	threshold float64
	childSSE  float64
}

func (t *Regressor) buildNode(X mat.Matrix, targets []float64, idx []int, depth, p int, rng *rand.Rand) *node {
	n := &node{n: len(idx)}

	var sum float64
	minTarget, maxTarget := math.Inf(1), math.Inf(-1)
	for _, ii := range idx {
		v := targets[ii]
		sum += v
		if v < minTarget {
			minTarget = v
		}
		if v > maxTarget {
			maxTarget = v
		}
	}
	n.value = sum / float64(len(idx))

	pure := minTarget == maxTarget
	if pure || len(idx) < t.MinSamplesSplit {
		n.leaf = true
		return n
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		n.leaf = true
		return n
	}

	var sumsq float64
	for _, ii := range idx {
		sumsq += targets[ii] * targets[ii]
	}
	parentSSE := sumsq - sum*sum/float64(len(idx))

	best := splitCandidate{feature: -1, childSSE: math.Inf(1)}
	for _, f := range t.featureCandidates(p, rng) {
		if cand, ok := t.bestSplitForFeature(X, targets, idx, f); ok && cand.childSSE < best.childSSE {
			best = cand
		}
	}

	if best.feature == -1 || parentSSE-best.childSSE <= 0 {
		n.leaf = true
		return n
	}

	leftIdx := make([]int, 0, len(idx))
	rightIdx := make([]int, 0, len(idx))
	for _, ii := range idx {
		if X.At(ii, best.feature) <= best.threshold {
			leftIdx = append(leftIdx, ii)
		} else {
			rightIdx = append(rightIdx, ii)
		}
	}

	n.feature = best.feature
	n.threshold = best.threshold
	n.left = t.buildNode(X, targets, leftIdx, depth+1, p, rng)
	n.right = t.buildNode(X, targets, rightIdx, depth+1, p, rng)

	return n
}

// bestSplitForFeature scans the sorted values of feature f and returns
// the threshold minimizing the combined child SSE, using prefix sums so
// the scan is linear after sorting.
func (t *Regressor) bestSplitForFeature(X mat.Matrix, targets []float64, idx []int, f int) (splitCandidate, bool) {
	type valueTarget struct {
		value  float64
		target float64
	}

	vt := make([]valueTarget, len(idx))
	for k, ii := range idx {
		vt[k] = valueTarget{value: X.At(ii, f), target: targets[ii]}
	}
	sort.Slice(vt, func(a, b int) bool { return vt[a].value < vt[b].value })

	total := len(vt)
	var totalSum, totalSumsq float64
	for _, e := range vt {
		totalSum += e.target
		totalSumsq += e.target * e.target
	}

	best := splitCandidate{feature: -1, childSSE: math.Inf(1)}
	var leftSum, leftSumsq float64

	for s := 1; s < total; s++ {
		e := vt[s-1]
		leftSum += e.target
		leftSumsq += e.target * e.target

		if vt[s].value == e.value {
			continue
		}
		if s < t.MinSamplesLeaf || total-s < t.MinSamplesLeaf {
			continue
		}

		nL, nR := float64(s), float64(total-s)
		leftSSE := leftSumsq - leftSum*leftSum/nL
		rightSum := totalSum - leftSum
		rightSSE := (totalSumsq - leftSumsq) - rightSum*rightSum/nR

		if childSSE := leftSSE + rightSSE; childSSE < best.childSSE {
			best = splitCandidate{
				feature:   f,
				threshold: (e.value + vt[s].value) / 2.0,
				childSSE:  childSSE,
			}
		}
	}

	return best, best.feature != -1
}

// featureCandidates returns the feature indices each split may use,
// subsampled without replacement when MaxFeatures asks for fewer than p.
func (t *Regressor) featureCandidates(p int, rng *rand.Rand) []int {
	feats := make([]int, p)
	for j := range feats {
		feats[j] = j
	}

	k := t.featureCandidateCount(p)
	if k >= p {
		return feats
	}

	for i := 0; i < k; i++ {
		j := i + rng.IntN(p-i)
		feats[i], feats[j] = feats[j], feats[i]
	}
	return feats[:k]
}

func (t *Regressor) featureCandidateCount(p int) int {
	var k int
	switch t.MaxFeatures {
	case "sqrt":
		k = int(math.Sqrt(float64(p)))
	case "log2":
		k = int(math.Log2(float64(p)))
	default:
		return p
	}
	if k < 1 {
		k = 1
	}
	return k
}

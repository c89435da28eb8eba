package evaluation

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/cropml/yieldbench/core/model"
	"github.com/cropml/yieldbench/metrics"
	"github.com/cropml/yieldbench/pkg/errors"
)

// ModelFactory constructs a fresh, unfitted model. CrossValidate calls
// it once per fold so folds never share state.
type ModelFactory func() model.Regressor

// CVMetrics aggregates per-fold test scores across a cross-validation
// run.
type CVMetrics struct {
	R2Mean  float64
	R2Std   float64
	MAEMean float64
	MSEMean float64
	Folds   int
}

// CrossValidate fits one model per fold and reports the mean test-set
// R², MAE and MSE, plus the sample standard deviation of R². Rows are
// ranked by content before fold assignment, so shuffled copies of the
// same dataset produce the same folds and the same means.
func CrossValidate(factory ModelFactory, X, y mat.Matrix, splitter KFoldSplitter) (*CVMetrics, error) {
	if factory == nil {
		return nil, errors.NewValueError("CrossValidate", "model factory must not be nil")
	}

	r, c := X.Dims()
	yRows, yCols := y.Dims()

	if r == 0 || c == 0 {
		return nil, errors.NewModelError("CrossValidate", "empty data", errors.ErrEmptyData)
	}
	if yRows != r {
		return nil, errors.NewDimensionError("CrossValidate", r, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewValueError("CrossValidate", "y must be a column vector (n×1 matrix)")
	}
	if r < splitter.GetNSplits() {
		return nil, errors.NewValidationError("n_splits", "must not exceed the number of samples", splitter.GetNSplits())
	}

	Xc, yc := reorderByContent(X, y)
	folds := splitter.Split(Xc, yc)
	nFolds := len(folds)

	r2s := make([]float64, nFolds)
	maes := make([]float64, nFolds)
	mses := make([]float64, nFolds)
	errs := make([]error, nFolds)

	var wg sync.WaitGroup
	for foldIdx := range folds {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			fold := folds[idx]
			trainX, trainY := extractRows(Xc, yc, fold.TrainIndices)
			testX, testY := extractRows(Xc, yc, fold.TestIndices)

			m := factory()
			if err := m.Fit(trainX, trainY); err != nil {
				errs[idx] = errors.Wrapf(err, "fold %d: fit", idx)
				return
			}

			pred, err := m.Predict(testX)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "fold %d: predict", idx)
				return
			}

			yVec := columnToVec(testY)
			pVec := columnToVec(pred)

			r2, err := metrics.R2Score(yVec, pVec)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "fold %d: r2", idx)
				return
			}
			mae, err := metrics.MAE(yVec, pVec)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "fold %d: mae", idx)
				return
			}
			mse, err := metrics.MSE(yVec, pVec)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "fold %d: mse", idx)
				return
			}

			r2s[idx] = r2
			maes[idx] = mae
			mses[idx] = mse
		}(foldIdx)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	result := &CVMetrics{
		R2Mean:  mean(r2s),
		R2Std:   sampleStd(r2s),
		MAEMean: mean(maes),
		MSEMean: mean(mses),
		Folds:   nFolds,
	}
	return result, nil
}

// reorderByContent copies X and y with rows sorted lexicographically
// by feature values, tie-broken on the target. Fold membership then
// depends only on what the rows contain, not the order they arrived
// in.
func reorderByContent(X, y mat.Matrix) (*mat.Dense, *mat.Dense) {
	r, c := X.Dims()

	order := make([]int, r)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		for j := 0; j < c; j++ {
			va, vb := X.At(ia, j), X.At(ib, j)
			if va != vb {
				return va < vb
			}
		}
		return y.At(ia, 0) < y.At(ib, 0)
	})

	Xc := mat.NewDense(r, c, nil)
	yc := mat.NewDense(r, 1, nil)
	for i, idx := range order {
		for j := 0; j < c; j++ {
			Xc.Set(i, j, X.At(idx, j))
		}
		yc.Set(i, 0, y.At(idx, 0))
	}
	return Xc, yc
}

func columnToVec(m mat.Matrix) *mat.VecDense {
	r, _ := m.Dims()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStd(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - m
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

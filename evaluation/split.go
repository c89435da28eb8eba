package evaluation

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cropml/yieldbench/pkg/errors"
)

// TrainTestSplit partitions X and y into train and test subsets after
// a seeded shuffle. The test partition receives ceil(n * testSize)
// rows; X and y rows stay paired throughout.
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "must be between 0 and 1 exclusive", testSize)
	}

	r, c := X.Dims()
	yr, yc := y.Dims()

	if r == 0 || c == 0 {
		return nil, nil, nil, nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if yr != r {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", r, yr, 0)
	}
	if yc != 1 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "y must be a column vector (n×1 matrix)")
	}

	nTest := int(math.Ceil(float64(r) * testSize))
	if nTest >= r {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "test partition would leave no training rows")
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	perm := rng.Perm(r)

	XTest, yTest = extractRows(X, y, perm[:nTest])
	XTrain, yTrain = extractRows(X, y, perm[nTest:])

	return XTrain, XTest, yTrain, yTest, nil
}

// extractRows copies the given rows of X and y into fresh matrices,
// in ascending row order.
func extractRows(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	_, xCols := X.Dims()

	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	xSub := mat.NewDense(len(sorted), xCols, nil)
	ySub := mat.NewDense(len(sorted), 1, nil)

	for i, idx := range sorted {
		for j := 0; j < xCols; j++ {
			xSub.Set(i, j, X.At(idx, j))
		}
		ySub.Set(i, 0, y.At(idx, 0))
	}

	return xSub, ySub
}

package evaluation

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// KFoldSplitter generates train/test index partitions for cross-validation.
type KFoldSplitter interface {
	Split(X, y mat.Matrix) []CVFold
	GetNSplits() int
}

// CVFold holds the row indices of a single cross-validation fold.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold splits samples into k consecutive folds, optionally after a
// seeded shuffle of the row indices.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewKFold creates a k-fold splitter. Fewer than two splits falls back
// to the conventional five.
func NewKFold(nSplits int, shuffle bool, randomSeed int) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of folds.
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split generates train/test indices for each fold. The first
// nSamples mod k folds receive one extra test row so every sample
// lands in exactly one test set.
func (kf *KFold) Split(X, _ mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.RandomSeed), uint64(kf.RandomSeed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	currentIdx := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[currentIdx:currentIdx+testSize])

		trainIndices := make([]int, 0, nSamples-testSize)
		trainIndices = append(trainIndices, indices[:currentIdx]...)
		trainIndices = append(trainIndices, indices[currentIdx+testSize:]...)

		folds[i] = CVFold{
			TrainIndices: trainIndices,
			TestIndices:  testIndices,
		}

		currentIdx += testSize
	}

	return folds
}

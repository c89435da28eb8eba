package evaluation

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cropml/yieldbench/pkg/errors"
)

// pairedData builds X with rows (i, i+0.5) and y = 10*i so tests can
// verify that X and y rows stay paired through the shuffle.
func pairedData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i)+0.5)
		y.Set(i, 0, float64(i)*10)
	}
	return X, y
}

func TestTrainTestSplitSizes(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		testSize float64
		wantTest int
	}{
		{"fifth of ten", 10, 0.2, 2},
		{"ceil rounds up", 9, 0.2, 2},
		{"twenty four rows", 24, 0.2, 5},
		{"thirty percent of seven", 7, 0.3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X, y := pairedData(tt.n)

			XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, tt.testSize, 42)
			if err != nil {
				t.Fatalf("TrainTestSplit error: %v", err)
			}

			testRows, _ := XTest.Dims()
			trainRows, trainCols := XTrain.Dims()
			if testRows != tt.wantTest {
				t.Errorf("test rows = %d, want %d", testRows, tt.wantTest)
			}
			if trainRows != tt.n-tt.wantTest {
				t.Errorf("train rows = %d, want %d", trainRows, tt.n-tt.wantTest)
			}
			if trainCols != 2 {
				t.Errorf("train cols = %d, want 2", trainCols)
			}

			yTrainRows, _ := yTrain.Dims()
			yTestRows, _ := yTest.Dims()
			if yTrainRows != trainRows || yTestRows != testRows {
				t.Errorf("y partition rows = (%d, %d), want (%d, %d)",
					yTrainRows, yTestRows, trainRows, testRows)
			}
		})
	}
}

func TestTrainTestSplitKeepsRowsPaired(t *testing.T) {
	X, y := pairedData(24)

	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, 0.2, 42)
	if err != nil {
		t.Fatalf("TrainTestSplit error: %v", err)
	}

	checkPairs := func(name string, Xp, yp *mat.Dense) {
		rows, _ := Xp.Dims()
		for i := 0; i < rows; i++ {
			id := Xp.At(i, 0)
			if got := Xp.At(i, 1); got != id+0.5 {
				t.Errorf("%s row %d: second feature = %v, want %v", name, i, got, id+0.5)
			}
			if got := yp.At(i, 0); got != id*10 {
				t.Errorf("%s row %d: target = %v, want %v", name, i, got, id*10)
			}
		}
	}

	checkPairs("train", XTrain, yTrain)
	checkPairs("test", XTest, yTest)
}

func TestTrainTestSplitPartitionIsExhaustive(t *testing.T) {
	const n = 24
	X, y := pairedData(n)

	XTrain, XTest, _, _, err := TrainTestSplit(X, y, 0.2, 42)
	if err != nil {
		t.Fatalf("TrainTestSplit error: %v", err)
	}

	counts := make(map[float64]int)
	trainRows, _ := XTrain.Dims()
	for i := 0; i < trainRows; i++ {
		counts[XTrain.At(i, 0)]++
	}
	testRows, _ := XTest.Dims()
	for i := 0; i < testRows; i++ {
		counts[XTest.At(i, 0)]++
	}

	for i := 0; i < n; i++ {
		if counts[float64(i)] != 1 {
			t.Errorf("row %d appears %d times across partitions, want exactly 1", i, counts[float64(i)])
		}
	}
}

func TestTrainTestSplitIsDeterministic(t *testing.T) {
	X, y := pairedData(20)

	aTrain, aTest, ayTrain, ayTest, err := TrainTestSplit(X, y, 0.2, 42)
	if err != nil {
		t.Fatalf("first split error: %v", err)
	}
	bTrain, bTest, byTrain, byTest, err := TrainTestSplit(X, y, 0.2, 42)
	if err != nil {
		t.Fatalf("second split error: %v", err)
	}

	if !mat.Equal(aTrain, bTrain) || !mat.Equal(aTest, bTest) {
		t.Error("same seed produced different X partitions")
	}
	if !mat.Equal(ayTrain, byTrain) || !mat.Equal(ayTest, byTest) {
		t.Error("same seed produced different y partitions")
	}
}

func TestTrainTestSplitValidation(t *testing.T) {
	X, y := pairedData(10)

	t.Run("test size bounds", func(t *testing.T) {
		for _, size := range []float64{0, 1, -0.2, 1.5} {
			_, _, _, _, err := TrainTestSplit(X, y, size, 42)
			var validationErr *errors.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("testSize %v: got %v, want ValidationError", size, err)
			}
		}
	})

	t.Run("row count mismatch", func(t *testing.T) {
		yShort := mat.NewDense(4, 1, nil)
		_, _, _, _, err := TrainTestSplit(X, yShort, 0.2, 42)
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Errorf("got %v, want DimensionError", err)
		}
	})

	t.Run("y must be a column", func(t *testing.T) {
		yWide := mat.NewDense(10, 2, nil)
		_, _, _, _, err := TrainTestSplit(X, yWide, 0.2, 42)
		var valueErr *errors.ValueError
		if !errors.As(err, &valueErr) {
			t.Errorf("got %v, want ValueError", err)
		}
	})

	t.Run("train partition must not be empty", func(t *testing.T) {
		smallX, smallY := pairedData(2)
		_, _, _, _, err := TrainTestSplit(smallX, smallY, 0.9, 42)
		var valueErr *errors.ValueError
		if !errors.As(err, &valueErr) {
			t.Errorf("got %v, want ValueError", err)
		}
	})
}

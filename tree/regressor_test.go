package tree

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/cropml/yieldbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// makeStepData builds a seeded set where the target is a noisy step
// function of the first feature.
func makeStepData(rows, cols int) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(42, 42))

	X := mat.NewDense(rows, cols, nil)
	y := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			X.Set(i, j, rng.Float64()*2.0-1.0)
		}
		target := -2.0
		if X.At(i, 0) > 0 {
			target = 2.0
		}
		y.Set(i, 0, target+(rng.Float64()-0.5)*0.2)
	}
	return X, y
}

func TestRegressorPerfectStep(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	reg := NewRegressorDefault()
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := reg.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i, want := range []float64{0, 0, 1, 1} {
		if pred.At(i, 0) != want {
			t.Errorf("prediction[%d] = %v, want %v", i, pred.At(i, 0), want)
		}
	}

	if got := reg.Depth(); got != 1 {
		t.Errorf("Depth() = %d, want 1 (one split separates the step)", got)
	}

	score, err := reg.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if math.Abs(score-1.0) > 1e-12 {
		t.Errorf("Score() = %v, want 1.0", score)
	}
}

func TestRegressorLeafMeans(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{1, 2, 10, 11})

	reg := NewRegressor(WithMaxDepth(1))
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"far left", 0, 1.5},
		{"left of threshold", 2.4, 1.5},
		{"right of threshold", 2.6, 10.5},
		{"far right", 100, 10.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := reg.Predict(mat.NewDense(1, 1, []float64{tt.input}))
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			if math.Abs(pred.At(0, 0)-tt.want) > 1e-12 {
				t.Errorf("Predict(%v) = %v, want %v", tt.input, pred.At(0, 0), tt.want)
			}
		})
	}

	if got := reg.LeafCount(); got != 2 {
		t.Errorf("LeafCount() = %d, want 2", got)
	}
}

func TestRegressorUnboundedDepthMemorizes(t *testing.T) {
	X, y := makeStepData(80, 3)

	reg := NewRegressorDefault()
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	score, err := reg.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	// Distinct continuous features let the tree isolate every sample.
	if math.Abs(score-1.0) > 1e-9 {
		t.Errorf("training Score() = %v, want 1.0 for an unbounded tree", score)
	}
}

func TestRegressorMaxDepthCapsDepth(t *testing.T) {
	X, y := makeStepData(80, 3)

	reg := NewRegressor(WithMaxDepth(2))
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := reg.Depth(); got > 2 {
		t.Errorf("Depth() = %d, want <= 2", got)
	}

	score, err := reg.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score < 0.9 {
		t.Errorf("Score() = %v, want > 0.9 (first split captures the step)", score)
	}
}

func TestRegressorMinSamplesLeaf(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	reg := NewRegressor(WithMinSamplesLeaf(3))
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// No split can give both children 3 samples, so the root stays a
	// leaf predicting the overall mean.
	if got := reg.LeafCount(); got != 1 {
		t.Errorf("LeafCount() = %d, want 1", got)
	}

	pred, err := reg.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < 4; i++ {
		if math.Abs(pred.At(i, 0)-0.5) > 1e-12 {
			t.Errorf("prediction[%d] = %v, want 0.5", i, pred.At(i, 0))
		}
	}
}

func TestRegressorMinSamplesSplit(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	reg := NewRegressor(WithMinSamplesSplit(5))
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := reg.Depth(); got != 0 {
		t.Errorf("Depth() = %d, want 0", got)
	}
}

func TestRegressorConstantTarget(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{7, 7, 7, 7})

	reg := NewRegressorDefault()
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := reg.LeafCount(); got != 1 {
		t.Errorf("LeafCount() = %d, want 1 for a pure root", got)
	}

	pred, err := reg.Predict(mat.NewDense(1, 1, []float64{-5}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if pred.At(0, 0) != 7 {
		t.Errorf("prediction = %v, want 7", pred.At(0, 0))
	}
}

func TestRegressorParameterValidation(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewDense(2, 1, []float64{1, 2})

	tests := []struct {
		name string
		reg  *Regressor
	}{
		{"negative max_depth", NewRegressor(WithMaxDepth(-1))},
		{"min_samples_split below 2", NewRegressor(WithMinSamplesSplit(1))},
		{"min_samples_leaf below 1", NewRegressor(WithMinSamplesLeaf(0))},
		{"unknown max_features", NewRegressor(WithMaxFeatures("bogus"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Fit(X, y)
			if err == nil {
				t.Fatal("Fit() should reject the parameter")
			}
			var ve *errors.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}
}

func TestRegressorFeatureCandidateCount(t *testing.T) {
	tests := []struct {
		name string
		mode string
		p    int
		want int
	}{
		{"all features by default", "", 8, 8},
		{"all keyword", "all", 8, 8},
		{"sqrt of nine", "sqrt", 9, 3},
		{"log2 of eight", "log2", 8, 3},
		{"sqrt clamps to one", "sqrt", 1, 1},
		{"log2 clamps to one", "log2", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegressor(WithMaxFeatures(tt.mode))
			if got := reg.featureCandidateCount(tt.p); got != tt.want {
				t.Errorf("featureCandidateCount(%d) = %d, want %d", tt.p, got, tt.want)
			}
		})
	}
}

func TestRegressorSeededSubsamplingIsDeterministic(t *testing.T) {
	X, y := makeStepData(60, 4)

	first := NewRegressor(WithMaxFeatures("sqrt"), WithRandomState(7))
	if err := first.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	second := NewRegressor(WithMaxFeatures("sqrt"), WithRandomState(7))
	if err := second.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	predFirst, err := first.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	predSecond, err := second.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	for i := 0; i < 60; i++ {
		if predFirst.At(i, 0) != predSecond.At(i, 0) {
			t.Fatalf("prediction[%d] differs across identically seeded fits: %v vs %v",
				i, predFirst.At(i, 0), predSecond.At(i, 0))
		}
	}
}

func TestRegressorNotFitted(t *testing.T) {
	reg := NewRegressorDefault()

	_, err := reg.Predict(mat.NewDense(1, 1, []float64{1}))
	if err == nil {
		t.Fatal("Predict() before Fit() should fail")
	}
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Errorf("error = %v, want NotFittedError", err)
	}
}

func TestRegressorDimensionErrors(t *testing.T) {
	reg := NewRegressorDefault()
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	if err := reg.Fit(X, mat.NewDense(2, 1, []float64{1, 2})); err == nil {
		t.Error("Fit() should reject mismatched row counts")
	}
	if err := reg.Fit(X, mat.NewDense(3, 2, nil)); err == nil {
		t.Error("Fit() should reject a multi-column target")
	}

	y := mat.NewDense(3, 1, []float64{1, 2, 3})
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := reg.Predict(mat.NewDense(1, 3, nil)); err == nil {
		t.Error("Predict() should reject a feature count mismatch")
	}
}

func TestRegressorGetParams(t *testing.T) {
	params := NewRegressor(
		WithMaxDepth(5),
		WithMinSamplesSplit(10),
		WithMinSamplesLeaf(4),
		WithMaxFeatures("log2"),
	).GetParams()

	if got := params["max_depth"].(int); got != 5 {
		t.Errorf("params[max_depth] = %v, want 5", got)
	}
	if got := params["min_samples_split"].(int); got != 10 {
		t.Errorf("params[min_samples_split] = %v, want 10", got)
	}
	if got := params["min_samples_leaf"].(int); got != 4 {
		t.Errorf("params[min_samples_leaf] = %v, want 4", got)
	}
	if got := params["max_features"].(string); got != "log2" {
		t.Errorf("params[max_features] = %v, want log2", got)
	}
}

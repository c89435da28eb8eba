package svm

import (
	"math"
	"testing"

	"github.com/cropml/yieldbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// slopeData builds 21 evenly spaced points on y = 2x + 1 over [-1, 1].
func slopeData() (*mat.Dense, *mat.Dense) {
	n := 21
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := -1.0 + 0.1*float64(i)
		X.Set(i, 0, x)
		y.Set(i, 0, 2*x+1)
	}
	return X, y
}

func TestLinearSVRFitsLinearTrend(t *testing.T) {
	X, y := slopeData()

	svr := NewLinearSVRDefault()
	if err := svr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// The epsilon tube tolerates a margin around the true line, so the
	// recovered parameters land near (2, 1) rather than exactly on it.
	if w := svr.GetWeights()[0]; math.Abs(w-2.0) > 0.5 {
		t.Errorf("weight = %v, want within 0.5 of 2.0", w)
	}
	if b := svr.GetIntercept(); math.Abs(b-1.0) > 0.5 {
		t.Errorf("intercept = %v, want within 0.5 of 1.0", b)
	}

	score, err := svr.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score < 0.9 {
		t.Errorf("Score() = %v, want > 0.9", score)
	}
}

func TestLinearSVRConstantTargetStaysInTube(t *testing.T) {
	n := 20
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i)/float64(n))
		y.Set(i, 0, 5.0)
	}

	svr := NewLinearSVRDefault()
	if err := svr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := svr.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < n; i++ {
		if math.Abs(pred.At(i, 0)-5.0) > 0.25 {
			t.Errorf("prediction[%d] = %v, want within 0.25 of 5.0", i, pred.At(i, 0))
		}
	}
}

func TestLinearSVRDeterministicAcrossFits(t *testing.T) {
	X, y := slopeData()

	first := NewLinearSVR(WithRandomState(7))
	if err := first.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	second := NewLinearSVR(WithRandomState(7))
	if err := second.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if first.GetWeights()[0] != second.GetWeights()[0] {
		t.Errorf("weights differ across identically seeded fits: %v vs %v",
			first.GetWeights()[0], second.GetWeights()[0])
	}
	if first.GetIntercept() != second.GetIntercept() {
		t.Errorf("intercepts differ across identically seeded fits: %v vs %v",
			first.GetIntercept(), second.GetIntercept())
	}
	if first.NIter != second.NIter {
		t.Errorf("epoch counts differ: %d vs %d", first.NIter, second.NIter)
	}
}

func TestLinearSVRConvergenceWarning(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) {
		warnings = append(warnings, w)
	})
	defer errors.SetWarningHandler(func(w error) {})

	X, y := slopeData()

	svr := NewLinearSVR(WithMaxIter(1))
	if err := svr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if len(warnings) != 1 {
		t.Fatalf("received %d warnings, want 1", len(warnings))
	}
	var cw *errors.ConvergenceWarning
	if !errors.As(warnings[0], &cw) {
		t.Fatalf("warning = %v, want ConvergenceWarning", warnings[0])
	}
	if cw.Iterations != 1 {
		t.Errorf("warning iterations = %d, want 1", cw.Iterations)
	}
	if !svr.IsFitted() {
		t.Error("model should still be usable after hitting the cap")
	}
}

func TestLinearSVRParameterValidation(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewDense(2, 1, []float64{1, 2})

	tests := []struct {
		name string
		svr  *LinearSVR
	}{
		{"zero C", NewLinearSVR(WithC(0))},
		{"negative epsilon", NewLinearSVR(WithEpsilon(-0.1))},
		{"zero max_iter", NewLinearSVR(WithMaxIter(0))},
		{"negative tol", NewLinearSVR(WithTol(-1))},
		{"zero learning rate", NewLinearSVR(WithLearningRate(0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.svr.Fit(X, y)
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

func TestLinearSVRDefaults(t *testing.T) {
	svr := NewLinearSVRDefault()
	if svr.C != 1.0 {
		t.Errorf("default C = %v, want 1.0", svr.C)
	}
	if svr.Epsilon != 0.1 {
		t.Errorf("default epsilon = %v, want 0.1", svr.Epsilon)
	}
	if svr.MaxIter != 1000 {
		t.Errorf("default max_iter = %d, want 1000", svr.MaxIter)
	}
	if svr.Tol != 1e-4 {
		t.Errorf("default tol = %v, want 1e-4", svr.Tol)
	}
}

func TestLinearSVRNotFitted(t *testing.T) {
	svr := NewLinearSVRDefault()

	_, err := svr.Predict(mat.NewDense(1, 1, []float64{1}))
	if err == nil {
		t.Fatal("Predict() before Fit() should fail")
	}
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Errorf("error = %v, want NotFittedError", err)
	}
	if svr.GetWeights() != nil {
		t.Error("GetWeights() before Fit() should return nil")
	}
}

func TestLinearSVRDimensionErrors(t *testing.T) {
	svr := NewLinearSVRDefault()
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	if err := svr.Fit(X, mat.NewDense(2, 1, []float64{1, 2})); err == nil {
		t.Error("Fit() should reject mismatched row counts")
	}

	y := mat.NewDense(3, 1, []float64{1, 2, 3})
	if err := svr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := svr.Predict(mat.NewDense(1, 3, nil)); err == nil {
		t.Error("Predict() should reject a feature count mismatch")
	}
}

func TestLinearSVRGetParams(t *testing.T) {
	params := NewLinearSVR(WithC(2.0), WithEpsilon(0.05)).GetParams()

	if got := params["c"].(float64); got != 2.0 {
		t.Errorf("params[c] = %v, want 2.0", got)
	}
	if got := params["epsilon"].(float64); got != 0.05 {
		t.Errorf("params[epsilon] = %v, want 0.05", got)
	}
}

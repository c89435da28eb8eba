package experiment

import (
	"testing"
)

func trialsConfig() *Config {
	cfg := DefaultConfig()
	cfg.DataPath = "testdata/crop_trials.csv"
	return cfg
}

func TestRunnerSingleCellAllFamilies(t *testing.T) {
	cfg := trialsConfig()
	cfg.Scalings = []string{ScaleStandard}
	cfg.Encodings = []string{EncodeOneHot}

	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if runner.RunID() == "" {
		t.Error("RunID() is empty")
	}

	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Outcomes) != 1 {
		t.Fatalf("len(Outcomes) = %d, want 1", len(result.Outcomes))
	}

	cell := result.Outcomes[0]
	if cell.Failed() {
		t.Fatalf("cell failed at %s: %v", cell.Stage, cell.Err)
	}
	if len(cell.FamilyErrors) != 0 {
		t.Fatalf("families skipped: %v", cell.FamilyErrors)
	}
	if len(cell.Holdout) != 6 || len(cell.CV) != 6 {
		t.Fatalf("records = %d holdout, %d CV, want 6 each", len(cell.Holdout), len(cell.CV))
	}
	if len(cell.TestActual) != 5 {
		t.Errorf("holdout size = %d, want ceil(25*0.2) = 5", len(cell.TestActual))
	}

	hasRainfall := false
	for _, name := range cell.Features {
		if name == "Rainfall_mm" {
			hasRainfall = true
		}
	}
	if !hasRainfall {
		t.Errorf("Rainfall_mm filtered out of %v", cell.Features)
	}

	for i, h := range cell.Holdout {
		if h.Metrics.R2 > 1.0 {
			t.Errorf("%s holdout R2 = %v, exceeds 1", h.Family, h.Metrics.R2)
		}
		if h.Metrics.MAE < 0 || h.Metrics.MSE < 0 {
			t.Errorf("%s negative error metric: MAE=%v MSE=%v", h.Family, h.Metrics.MAE, h.Metrics.MSE)
		}
		if h.Metrics.TrainTime < 0 {
			t.Errorf("%s negative train time", h.Family)
		}
		if len(h.Predicted) != len(cell.TestActual) {
			t.Errorf("%s predicted %d values, want %d", h.Family, len(h.Predicted), len(cell.TestActual))
		}
		if cell.CV[i].Metrics.Folds != 5 {
			t.Errorf("%s CV folds = %d, want 5", h.Family, cell.CV[i].Metrics.Folds)
		}
	}

	// The target is linear in the features, so the linear family must
	// fit it closely; the tuned tree must carry its chosen assignment.
	byFamily := make(map[string]HoldoutResult)
	for _, h := range cell.Holdout {
		byFamily[h.Family] = h
	}
	if lin := byFamily["linear"]; lin.Metrics.R2 < 0.9 {
		t.Errorf("linear holdout R2 = %v, want > 0.9 on linear data", lin.Metrics.R2)
	}
	if tr := byFamily["tree"]; len(tr.Params) == 0 {
		t.Error("tree record has no tuned parameters")
	}
	if lin := byFamily["linear"]; lin.Params != nil {
		t.Errorf("untuned linear family has params %v", lin.Params)
	}
}

func TestRunnerIsolatesFailedCells(t *testing.T) {
	cfg := trialsConfig()
	cfg.Scalings = []string{ScaleStandard}
	cfg.Encodings = []string{EncodeNone, EncodeOneHot}
	cfg.Models = []string{"linear"}
	cfg.Tuning = false

	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v, want nil while one cell is healthy", err)
	}
	if len(result.Outcomes) != 2 {
		t.Fatalf("len(Outcomes) = %d, want 2", len(result.Outcomes))
	}

	broken := result.Outcomes[0]
	if !broken.Failed() {
		t.Fatal("none-encoding cell succeeded, want failure on categorical text")
	}
	if broken.Stage != StageCheckNaN {
		t.Errorf("failed stage = %q, want %q", broken.Stage, StageCheckNaN)
	}
	if len(broken.Holdout) != 0 {
		t.Errorf("failed cell produced %d records, want 0", len(broken.Holdout))
	}

	healthy := result.Outcomes[1]
	if healthy.Failed() {
		t.Fatalf("onehot cell failed at %s: %v", healthy.Stage, healthy.Err)
	}
	if len(healthy.Holdout) != 1 {
		t.Errorf("healthy cell records = %d, want 1", len(healthy.Holdout))
	}

	if got := len(result.HoldoutRecords()); got != 1 {
		t.Errorf("flattened records = %d, want the healthy cell only", got)
	}
}

func TestRunnerAllCellsFailed(t *testing.T) {
	cfg := trialsConfig()
	cfg.Scalings = []string{ScaleNone}
	cfg.Encodings = []string{EncodeNone}
	cfg.Models = []string{"linear"}
	cfg.Tuning = false

	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	result, err := runner.Run()
	if err == nil {
		t.Fatal("Run() = nil error with every cell failed")
	}
	if result == nil || len(result.Outcomes) != 1 {
		t.Fatal("Run() did not return the partial sweep alongside the error")
	}
}

func TestRunnerIsDeterministic(t *testing.T) {
	run := func() []HoldoutRecord {
		cfg := trialsConfig()
		cfg.Scalings = []string{ScaleStandard}
		cfg.Encodings = []string{EncodeLabel}
		cfg.Models = []string{"linear", "tree"}

		runner, err := NewRunner(cfg)
		if err != nil {
			t.Fatalf("NewRunner() error = %v", err)
		}
		result, err := runner.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return result.HoldoutRecords()
	}

	first := run()
	second := run()

	if len(first) != len(second) {
		t.Fatalf("record counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].R2 != second[i].R2 || first[i].MAE != second[i].MAE || first[i].MSE != second[i].MSE {
			t.Errorf("record %d differs between identical runs:\n%+v\n%+v", i, first[i], second[i])
		}
		if first[i].Family != second[i].Family {
			t.Errorf("record %d family differs: %s vs %s", i, first[i].Family, second[i].Family)
		}
	}
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := NewRunner(cfg); err == nil {
		t.Fatal("NewRunner() = nil error without a data path")
	}
}

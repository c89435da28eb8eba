package experiment

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cropml/yieldbench/tuning"
)

func TestReporterWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter(&buf).Write(sampleSweep()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Run test-run (target Yield_tons_per_hectare, 25 rows)",
		"Best per family",
		"Holdout",
		"Cross-validation",
		"Failed cells",
		"Skipped families",
		"linear",
		"tree",
		"svr",
		"did not converge",
		StageCheckNaN,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	// The leaderboard lists each family once, best cell first.
	bestIdx := strings.Index(out, "Best per family")
	holdoutIdx := strings.Index(out, "Holdout")
	if bestIdx > holdoutIdx {
		t.Error("leaderboard printed after holdout table")
	}
}

func TestReporterEmptySweep(t *testing.T) {
	var buf bytes.Buffer
	result := &SweepResult{RunID: "empty", Target: "y", Rows: 0}
	if err := NewReporter(&buf).Write(result); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Run empty") {
		t.Errorf("header missing:\n%s", out)
	}
	for _, absent := range []string{"Holdout", "Cross-validation", "Failed cells", "Skipped families"} {
		if strings.Contains(out, absent) {
			t.Errorf("empty sweep printed %q section:\n%s", absent, out)
		}
	}
}

func TestFormatParams(t *testing.T) {
	tests := []struct {
		name string
		p    tuning.Params
		want string
	}{
		{"nil params", nil, "-"},
		{"empty params", tuning.Params{}, "-"},
		{"single", tuning.Params{"alpha": 0.001}, "alpha=0.001"},
		{"sorted keys", tuning.Params{"min_samples_split": 2, "max_depth": 5}, "max_depth=5,min_samples_split=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatParams(tt.p); got != tt.want {
				t.Errorf("formatParams() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	if err := ExportCSV(sampleSweep(), dir); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	holdout := readLines(t, filepath.Join(dir, "holdout.csv"))
	if holdout[0] != "scaling,encoding,family,r2,mae,mse,train_ms,params" {
		t.Errorf("holdout header = %q", holdout[0])
	}
	if len(holdout) != 5 {
		t.Fatalf("holdout.csv has %d lines, want header plus 4 records", len(holdout))
	}
	if !strings.HasPrefix(holdout[1], "standard,onehot,linear,0.970000") {
		t.Errorf("best record not first: %q", holdout[1])
	}

	crossval := readLines(t, filepath.Join(dir, "crossval.csv"))
	if crossval[0] != "scaling,encoding,family,r2_mean,r2_std,mae_mean,mse_mean,params" {
		t.Errorf("crossval header = %q", crossval[0])
	}
	if len(crossval) != 5 {
		t.Fatalf("crossval.csv has %d lines, want header plus 4 records", len(crossval))
	}
	if !strings.HasPrefix(crossval[1], "standard,onehot,linear,0.930000") {
		t.Errorf("best CV record not first: %q", crossval[1])
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(b)), "\n")
}

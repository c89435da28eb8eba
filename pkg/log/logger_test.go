package log

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  slog.Level
	}{
		{name: "debug", level: "debug", want: slog.LevelDebug},
		{name: "info", level: "info", want: slog.LevelInfo},
		{name: "warn", level: "warn", want: slog.LevelWarn},
		{name: "error", level: "error", want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToLogLevel(tt.level); got != tt.want {
				t.Errorf("ToLogLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestToLogLevelPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ToLogLevel should panic on an unknown level name")
		}
	}()
	ToLogLevel("verbose")
}

func TestTestLoggerCapturesRecords(t *testing.T) {
	logger, capture := NewTestLogger(slog.LevelDebug)

	logger.Info("cell finished",
		ScalingKey, "standard",
		EncodingKey, "onehot",
		SamplesKey, 800,
	)

	if !capture.ContainsMessage("cell finished") {
		t.Error("message not found in captured output")
	}
	if !capture.ContainsField(ScalingKey, "standard") {
		t.Error("scaling field not found in captured output")
	}
	if !capture.ContainsField(SamplesKey, 800.0) {
		t.Error("samples field not found in captured output")
	}
}

func TestTestLoggerHonorsLevel(t *testing.T) {
	logger, capture := NewTestLogger(slog.LevelWarn)

	logger.Debug("chatty detail")
	logger.Warn("model underperforming")

	if capture.ContainsMessage("chatty detail") {
		t.Error("debug record should be filtered at warn level")
	}
	if !capture.ContainsMessage("model underperforming") {
		t.Error("warn record should pass at warn level")
	}
}

func TestErrFmtHandlerExtractsStacktrace(t *testing.T) {
	logger, capture := NewTestLogger(slog.LevelDebug)

	err := errors.New("solver blew up")
	logger.Error("cell failed", ErrAttr(err))

	entries, parseErr := capture.Entries()
	if parseErr != nil {
		t.Fatalf("Entries() error: %v", parseErr)
	}
	if len(entries) != 1 {
		t.Fatalf("captured %d entries, want 1", len(entries))
	}

	stack, ok := entries[0][StacktraceAttrKey].(string)
	if !ok || stack == "" {
		t.Fatal("expected a stacktrace attribute on the error record")
	}
	if !strings.Contains(stack, "logger_test.go") {
		t.Errorf("stacktrace %q should mention the call site", stack)
	}
}

func TestErrFmtHandlerLeavesPlainRecordsAlone(t *testing.T) {
	logger, capture := NewTestLogger(slog.LevelDebug)

	logger.Info("sweep started", FoldsKey, 5)

	entries, err := capture.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if _, exists := entries[0][StacktraceAttrKey]; exists {
		t.Error("record without an error attribute should not gain a stacktrace")
	}
}

func TestCaptureClear(t *testing.T) {
	logger, capture := NewTestLogger(slog.LevelDebug)

	logger.Info("first")
	capture.Clear()
	logger.Info("second")

	if capture.ContainsMessage("first") {
		t.Error("Clear() should drop earlier records")
	}
	if !capture.ContainsMessage("second") {
		t.Error("records after Clear() should be kept")
	}
}

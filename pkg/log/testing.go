// Package log provides testing helpers for structured logging.
//
// Tests that need to assert on log output use NewTestLogger, which returns
// a real slog.Logger writing JSON lines into an in-memory capture. The
// capture can be queried by message or by structured field.

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
)

// Capture holds log output produced through a test logger.
type Capture struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

// NewTestLogger returns a slog.Logger emitting JSON records at or above
// level into the returned Capture. The logger runs through the same
// ErrFmtHandler wrapping as the production logger, so stack trace
// extraction is exercised in tests too.
func NewTestLogger(level slog.Level) (*slog.Logger, *Capture) {
	capture := &Capture{}
	handler := slog.NewJSONHandler(capture, &slog.HandlerOptions{Level: level})
	return slog.New(WrapByErrFmtHandler(handler)), capture
}

// Write implements io.Writer so the capture can back a slog handler.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.Write(p)
}

// String returns the raw captured output.
func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.String()
}

// Entries parses the captured output into one map per log record.
func (c *Capture) Entries() ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	lines := strings.Split(strings.TrimSpace(c.String()), "\n")

	for _, line := range lines {
		if line == "" {
			continue
		}

		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ContainsMessage reports whether any captured record contains message.
func (c *Capture) ContainsMessage(message string) bool {
	return strings.Contains(c.String(), message)
}

// ContainsField reports whether any captured record has the given field
// set to value. Numeric values are compared after JSON decoding, so pass
// float64 for numbers.
func (c *Capture) ContainsField(key string, value interface{}) bool {
	entries, err := c.Entries()
	if err != nil {
		return false
	}

	for _, entry := range entries {
		if fieldValue, exists := entry[key]; exists {
			if fieldValue == value {
				return true
			}
		}
	}

	return false
}

// Clear drops all captured output. Useful between test cases.
func (c *Capture) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer.Reset()
}

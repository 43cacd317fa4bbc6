package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogBuffer captures log output in tests. It is safe for use from the
// goroutines a handler under test may log from.
type TestLogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything written so far.
func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards everything written so far.
func (b *TestLogBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Bytes returns a copy of everything written so far.
func (b *TestLogBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

// GetLogEntries decodes the captured output as a stream of JSON log records,
// one map per record.
func (b *TestLogBuffer) GetLogEntries() ([]map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(b.Bytes()))

	var entries []map[string]interface{}
	for {
		var entry map[string]interface{}
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
}

// SetupTestLogger routes the process default logger into a TestLogBuffer for
// the duration of a test. With nil opts every level down to DEBUG is
// captured. The returned cleanup restores the previous default logger;
// because the default logger is process-wide, tests using this helper must
// not run in parallel.
func SetupTestLogger(t *testing.T, opts *slog.HandlerOptions) (*TestLogBuffer, *slog.Logger, func()) {
	t.Helper()

	if opts == nil {
		opts = &slog.HandlerOptions{Level: slog.LevelDebug}
	}

	logBuf := &TestLogBuffer{}
	testLogger := slog.New(slog.NewJSONHandler(logBuf, opts))

	original := slog.Default()
	slog.SetDefault(testLogger)

	return logBuf, testLogger, func() {
		slog.SetDefault(original)
	}
}

// AssertLogContains fails the test when the captured output does not contain
// content anywhere.
func AssertLogContains(t *testing.T, logBuf *TestLogBuffer, content string) {
	t.Helper()

	if logs := logBuf.String(); !strings.Contains(logs, content) {
		t.Errorf("log output missing %q.\nLogs:\n%s", content, logs)
	}
}

// AssertLogField fails the test unless some captured record carries field
// with the expected value. JSON decoding applies, so numeric values must be
// compared as float64.
func AssertLogField(t *testing.T, logBuf *TestLogBuffer, field string, expected interface{}) {
	t.Helper()

	entries, err := logBuf.GetLogEntries()
	if err != nil {
		t.Fatalf("failed to parse log entries: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no log entries captured")
	}

	for _, entry := range entries {
		if value, ok := entry[field]; ok && value == expected {
			return
		}
	}
	t.Errorf("no log entry has field %q = %v.\nLogs:\n%s", field, expected, logBuf.String())
}

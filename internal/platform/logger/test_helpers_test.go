package logger

import (
	"log/slog"
	"strings"
	"testing"
)

func TestTestLogBuffer(t *testing.T) {
	buf := &TestLogBuffer{}

	n, err := buf.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Write returned %d, want 5", n)
	}
	if buf.String() != "hello" {
		t.Errorf("String returned %q, want %q", buf.String(), "hello")
	}

	buf.Reset()
	if buf.String() != "" {
		t.Errorf("Reset did not clear the buffer, got %q", buf.String())
	}
}

func TestTestLogBuffer_GetLogEntries(t *testing.T) {
	buf := &TestLogBuffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))

	logger.Info("first message", "key", "value")
	logger.Warn("second message")

	entries, err := buf.GetLogEntries()
	if err != nil {
		t.Fatalf("GetLogEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0]["msg"] != "first message" {
		t.Errorf("first entry msg = %v, want %q", entries[0]["msg"], "first message")
	}
	if entries[0]["key"] != "value" {
		t.Errorf("first entry key = %v, want %q", entries[0]["key"], "value")
	}
	if entries[1]["level"] != "WARN" {
		t.Errorf("second entry level = %v, want WARN", entries[1]["level"])
	}
}

func TestTestLogBuffer_GetLogEntries_InvalidJSON(t *testing.T) {
	buf := &TestLogBuffer{}
	if _, err := buf.Write([]byte("not json\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, err := buf.GetLogEntries(); err == nil {
		t.Error("expected an error for non-JSON content, got nil")
	}
}

func TestSetupTestLogger(t *testing.T) {
	buf, logger, cleanup := SetupTestLogger(t, nil)
	defer cleanup()

	logger.Debug("debug message survives default options")

	if !strings.Contains(buf.String(), "debug message survives default options") {
		t.Errorf("expected debug output to be captured, got: %s", buf.String())
	}

	// The test logger is installed as the process default until cleanup.
	slog.Info("routed via default")
	AssertLogContains(t, buf, "routed via default")
}

func TestAssertLogField(t *testing.T) {
	buf, logger, cleanup := SetupTestLogger(t, nil)
	defer cleanup()

	logger.Info("message", slog.String("component", "session_store"))

	AssertLogField(t, buf, "component", "session_store")
}

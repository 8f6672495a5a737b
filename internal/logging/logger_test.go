package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger_DefaultConfig(t *testing.T) {
	logger := NewLogger(nil)
	if logger == nil {
		t.Fatal("NewLogger(nil) returned nil")
	}
	if logger.level != LevelInfo {
		t.Errorf("expected default level Info, got %v", logger.level)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info message to be filtered at warn level, got: %s", buf.String())
	}

	logger.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("expected warn message in output, got: %s", buf.String())
	}
}

func TestLogger_With_BindsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	threadLogger := logger.With("thread", "front_left_brake")
	threadLogger.Info("job completed", "job_id", 7)

	output := buf.String()
	if !strings.Contains(output, "thread=front_left_brake") {
		t.Errorf("expected thread=front_left_brake in output, got: %s", output)
	}
	if !strings.Contains(output, "job_id=7") {
		t.Errorf("expected job_id=7 in output, got: %s", output)
	}
}

func TestLogger_With_Chains(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	l := logger.With("node", "fl").With("channel", "Ch")
	l.Warn("transport error")

	output := buf.String()
	if !strings.Contains(output, "node=fl") || !strings.Contains(output, "channel=Ch") {
		t.Errorf("expected both bound fields in output, got: %s", output)
	}
}

func TestGlobalLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf}))
	t.Cleanup(func() { SetDefault(NewLogger(nil)) })

	Debug("debug message", "key", "value")
	if !strings.Contains(buf.String(), "debug message") || !strings.Contains(buf.String(), "key=value") {
		t.Errorf("unexpected debug output: %s", buf.String())
	}

	buf.Reset()
	Info("info message")
	if !strings.Contains(buf.String(), "info message") {
		t.Errorf("unexpected info output: %s", buf.String())
	}

	buf.Reset()
	Warn("warning message")
	if !strings.Contains(buf.String(), "warning message") {
		t.Errorf("unexpected warn output: %s", buf.String())
	}

	buf.Reset()
	Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Errorf("unexpected error output: %s", buf.String())
	}
}

func TestLogger_Printf_Compat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})
	logger.Printf("value=%d", 42)
	if !strings.Contains(buf.String(), "value=42") {
		t.Errorf("expected formatted value in output, got: %s", buf.String())
	}
}

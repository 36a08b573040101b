package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug": LevelDebug, " WARN ": LevelWarn, "warning": LevelWarn,
		"error": LevelError, "info": LevelInfo, "": LevelInfo, "loud": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %d, want %d", in, got, want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf).WithLevel(LevelWarn)

	l.Debug("debug line")
	l.Info("info line")
	l.Warn("warn %d", 1)
	l.Error("error %d", 2)

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("lines below warn were written:\n%s", out)
	}
	if !strings.Contains(out, "warn 1") || !strings.Contains(out, "error 2") {
		t.Errorf("missing warn/error lines:\n%s", out)
	}
}

func TestPrintfWritesAtWarn(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf).Printf("slow query %s\n", "SELECT 1")
	if !strings.Contains(buf.String(), "WARN") || !strings.Contains(buf.String(), "slow query SELECT 1") {
		t.Errorf("Printf output: %q", buf.String())
	}
}

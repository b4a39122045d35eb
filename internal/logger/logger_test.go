package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel("warn") {
		t.Error("warn should be valid")
	}
	if ValidLevel("verbose") {
		t.Error("verbose should not be valid")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("shown %d", 1)
	l.Error("shown %s", "two")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below level were written: %q", out)
	}
	if !strings.Contains(out, "shown 1") || !strings.Contains(out, "shown two") {
		t.Errorf("expected warn and error messages, got %q", out)
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf})

	l.Debug("before")
	l.SetLevel(slog.LevelDebug)
	l.Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Error("debug message written before level change")
	}
	if !strings.Contains(out, "after") {
		t.Error("debug message missing after level change")
	}
}

func TestLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf}).WithComponent("interp")

	l.Info("hello")

	if !strings.Contains(buf.String(), "component=interp") {
		t.Errorf("component field missing: %q", buf.String())
	}
}

func TestLoggerMessageWithoutArgs(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf, JSON: true})

	l.Info("100% literal")

	if !strings.Contains(buf.String(), `"msg":"100% literal"`) {
		t.Errorf("message was formatted without args: %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	if NullLogger.Enabled(slog.LevelError) {
		t.Error("NullLogger should never be enabled")
	}
	NullLogger.WithField("k", "v").Error("dropped")

	if OrNull(nil) != NullLogger {
		t.Error("OrNull(nil) should return NullLogger")
	}
}

func TestGetSet(t *testing.T) {
	prev := Get()
	defer Set(prev)

	l := New(DefaultConfig())
	Set(l)
	if Get() != l {
		t.Error("Get should return the logger passed to Set")
	}
}

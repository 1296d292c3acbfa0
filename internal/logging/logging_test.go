package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := ParseLevel(tc.input); got != tc.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "WARN" {
		t.Errorf("LevelWarn.String() = %q", LevelWarn.String())
	}
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("Level(42).String() = %q", Level(42).String())
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelWarn)
	log.SetOutput(&buf)

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("lookup slow", "provider", "horizons")
	log.Error("lookup failed", "body", "Moon")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below level were written: %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "provider=horizons") {
		t.Errorf("warn record missing or malformed: %q", out)
	}
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "body=Moon") {
		t.Errorf("error record missing or malformed: %q", out)
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelError)
	log.SetOutput(&buf)

	log.Info("first")
	log.SetLevel(LevelDebug)
	log.Debug("second")

	out := buf.String()
	if strings.Contains(out, "first") {
		t.Errorf("info written at error level: %q", out)
	}
	if !strings.Contains(out, "second") {
		t.Errorf("debug not written after SetLevel: %q", out)
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelInfo)
	log.SetOutput(&buf)

	child := log.With("component", "state")
	child.Info("reduced")

	if !strings.Contains(buf.String(), "component=state") {
		t.Errorf("child attributes missing: %q", buf.String())
	}

	// Level changes on the parent apply to the child.
	buf.Reset()
	log.SetLevel(LevelError)
	child.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("child ignored parent level: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	// Must not panic and must not write anywhere visible.
	log.Error("nothing", "k", 1)
	log.With("a", "b").Info("nothing")
}

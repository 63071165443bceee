package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "console", Output: &buf})

	log.Info("exporting table: users")

	if !strings.Contains(buf.String(), "exporting table: users") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "json", Output: &buf})

	log.Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("json output missing message field: %q", out)
	}
	if !strings.Contains(out, `"level":"info"`) {
		t.Errorf("json output missing level field: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "error", Format: "json", Output: &buf})

	log.Info("should not appear")
	log.Debugf("nor this: %d", 42)

	if buf.Len() != 0 {
		t.Errorf("expected no output below error level, got %q", buf.String())
	}

	log.Error("this appears")
	if !strings.Contains(buf.String(), "this appears") {
		t.Errorf("error output missing: %q", buf.String())
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "debug", Format: "json", Output: &buf})

	child := log.With().Str("table", "users").Int("columns", 3).Logger()
	child.Debug("described")

	out := buf.String()
	if !strings.Contains(out, `"table":"users"`) {
		t.Errorf("field missing from output: %q", out)
	}
	if !strings.Contains(out, `"columns":3`) {
		t.Errorf("field missing from output: %q", out)
	}
}

func TestNop(t *testing.T) {
	// Nop loggers must stay silent; they are the library default.
	log := Nop()
	log.Info("dropped")
	log.Errorf("also dropped: %v", "x")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

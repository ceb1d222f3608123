package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_Format(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("hello", "film_id", 7)
	if !strings.Contains(buf.String(), `"film_id":7`) {
		t.Errorf("expected JSON output, got %s", buf.String())
	}

	buf.Reset()
	New(&buf, "info", "text").Info("hello", "film_id", 7)
	if !strings.Contains(buf.String(), "film_id=7") {
		t.Errorf("expected text output, got %s", buf.String())
	}

	buf.Reset()
	New(&buf, "warn", "text").Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %s", buf.String())
	}
}

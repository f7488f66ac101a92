package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"chatty", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gifbox.log")

	log, err := New(path, "info")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug().Msg("hidden")
	log.Info().Str("id", "abc").Msg("visible")
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %s", out)
	}
	if !strings.Contains(out, `"message":"visible"`) || !strings.Contains(out, `"id":"abc"`) {
		t.Fatalf("log output = %s", out)
	}
	if log.Path != path {
		t.Fatalf("Path = %q, want %q", log.Path, path)
	}
}

func TestNew_Stderr(t *testing.T) {
	log, err := New(Stderr, "warn")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Path != "" {
		t.Fatalf("Path = %q, want empty for stderr", log.Path)
	}
	if log.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("level = %v, want warn", log.GetLevel())
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New("", "info"); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := New(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Fatal("expected error for bad level")
	}
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zerolog.DebugLevel)
	log.Debug().Msg("hello")
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Fatalf("output = %s", buf.String())
	}
}

func TestClose_NilSafe(t *testing.T) {
	var log *Logger
	if err := log.Close(); err != nil {
		t.Fatalf("Close on nil = %v", err)
	}
}

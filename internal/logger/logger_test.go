//go:build unit

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"go-elearn-app/internal/config"
	"strings"
	"testing"
)

// decode parses every JSON line written by the logger.
func decode(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("output is not json: %v\n%s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level string
		want  []string // levels expected in the output
	}{
		{"debug", []string{"debug", "info", "warn", "error"}},
		{"info", []string{"info", "warn", "error"}},
		{"WARN", []string{"warn", "error"}},
		{"error", []string{"error"}},
		{"", []string{"info", "warn", "error"}},
		{"verbose", []string{"info", "warn", "error"}},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(config.LogConfig{Level: tt.level, Format: "json"}, &buf)

			log.Debug("catalog loaded")
			log.Info("course created")
			log.Warn("contact notification failed")
			log.Error(errors.New("boom"), "failed to render page")

			entries := decode(t, &buf)
			if len(entries) != len(tt.want) {
				t.Fatalf("want %d entries; got %d: %s", len(tt.want), len(entries), buf.String())
			}
			for i, e := range entries {
				if e["level"] != tt.want[i] {
					t.Errorf("entry %d: want level %q; got %v", i, tt.want[i], e["level"])
				}
			}
		})
	}
}

func TestErrorAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "debug", Format: "json"}, &buf)

	log.With(map[string]interface{}{"course_id": 7, "admin": "root"}).Error(errors.New("disk full"), "Failed to delete course image")

	entries := decode(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("want one entry; got %d", len(entries))
	}
	e := entries[0]
	if e["message"] != "Failed to delete course image" || e["error"] != "disk full" {
		t.Errorf("unexpected entry %v", e)
	}
	if e["course_id"] != float64(7) || e["admin"] != "root" {
		t.Errorf("fields missing from %v", e)
	}
	if _, ok := e["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	New(config.LogConfig{Level: "info", Format: "Console"}, &buf).Info("server started")

	out := buf.String()
	if !strings.Contains(out, "server started") || strings.HasPrefix(out, "{") {
		t.Errorf("expected a human readable line; got %q", out)
	}
}

func TestNop(t *testing.T) {
	// Nop must accept every call without writing anywhere.
	log := Nop().With(map[string]interface{}{"k": "v"})
	log.Debug("x")
	log.Info("x")
	log.Warn("x")
	log.Error(errors.New("x"), "x")
}

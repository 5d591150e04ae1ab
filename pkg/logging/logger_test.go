package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriterEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("debug", &buf)
	logger.Debug("hello", "session_id", "abc")

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", line, err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["session_id"] != "abc" {
		t.Errorf("session_id = %v", entry["session_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("warn", &buf)
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info line should be filtered at warn level, got %q", buf.String())
	}
	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn line should be emitted")
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("bogus", &buf)
	logger.Debug("dropped")
	if buf.Len() != 0 {
		t.Error("debug should be filtered at default info level")
	}
}

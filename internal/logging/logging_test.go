package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "text"}, &buf)
	log.Info("fetched diff", "pr", 24)

	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "msg=\"fetched diff\"") {
		t.Errorf("unexpected text log output: %s", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json"}, &buf)
	log.Debug("submitting review", "owner", "danobi")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse json log line: %v", err)
	}
	if entry["msg"] != "submitting review" {
		t.Errorf("msg = %v, want %q", entry["msg"], "submitting review")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "not-a-level", Format: "text"}, &buf)
	log.Debug("should not appear")
	log.Info("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("debug line leaked through with invalid level config: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("info line missing: %s", out)
	}
}

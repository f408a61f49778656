package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)

	l.Info("collection finished", Fields{"source": "gorunning", "events": 42})

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Level != "INFO" {
		t.Errorf("expected level INFO, got %s", entry.Level)
	}
	if entry.Message != "collection finished" {
		t.Errorf("unexpected message: %s", entry.Message)
	}
	if entry.Fields["source"] != "gorunning" {
		t.Errorf("expected source field, got %v", entry.Fields)
	}
	if entry.Timestamp == "" {
		t.Error("timestamp should be set")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn, &buf)

	l.Debug("ignored", nil)
	l.Info("ignored", nil)
	l.Warn("kept", nil)

	lines := strings.Count(buf.String(), "\n")
	if lines != 1 {
		t.Errorf("expected 1 entry, got %d", lines)
	}
}

func TestLoggerErrorField(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelError, &buf)

	l.Error("feed download failed", Fields{"url": "https://example.com/events.ics"},
		errTest("connection refused"))

	if !strings.Contains(buf.String(), "connection refused") {
		t.Error("error message should be included in the entry")
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.IncrCounter("normalize.dropped")
	m.IncrCounter("normalize.dropped")
	m.AddCounter("collect.total", 10)
	m.RecordTiming("collect.gorunning", 100*time.Millisecond)
	m.RecordTiming("collect.gorunning", 300*time.Millisecond)

	snap := m.Snapshot()
	counters := snap["counters"].(map[string]int64)
	if counters["normalize.dropped"] != 2 {
		t.Errorf("expected counter 2, got %d", counters["normalize.dropped"])
	}
	if counters["collect.total"] != 10 {
		t.Errorf("expected counter 10, got %d", counters["collect.total"])
	}

	timings := snap["timings"].(map[string]map[string]interface{})
	stats, ok := timings["collect.gorunning"]
	if !ok {
		t.Fatal("expected timing stats for collect.gorunning")
	}
	if stats["count"] != 2 {
		t.Errorf("expected 2 samples, got %v", stats["count"])
	}
	if stats["average"] != "200ms" {
		t.Errorf("expected average 200ms, got %v", stats["average"])
	}
}

package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/AlibekovAA/toggle-task/internal/common/constants"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "tasks", "warn")

	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARNING] [tasks]") || !strings.Contains(out, "shown 2") {
		t.Errorf("expected warning line with service name, got %q", out)
	}
	if l.ShouldLog(DEBUG) || !l.ShouldLog(ERROR) {
		t.Errorf("unexpected ShouldLog results at warn level")
	}
}

func TestEntry_FieldsAndTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "tasks", "debug")
	ctx := context.WithValue(context.Background(), constants.TraceIDKey, "trace-1")

	l.WithFields(ctx, Fields{"user_id": "u1", "action": "login_success"}).Info("login success")

	out := buf.String()
	if !strings.Contains(out, "[trace_id=trace-1 action=login_success user_id=u1]") {
		t.Errorf("expected trace id followed by sorted fields, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug": DEBUG, "WARN": WARNING, " error ": ERROR, "critical": CRITICAL, "": INFO, "bogus": INFO,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

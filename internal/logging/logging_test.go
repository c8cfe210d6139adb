package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{"info", false, false},
		{"debug", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(tt.debug, &buf)
			l.Debug("debug line")
			l.Info("info line")
			_ = l.Sync()

			out := buf.String()
			if !strings.Contains(out, "info line") {
				t.Errorf("info line missing: %q", out)
			}
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestQuiet(t *testing.T) {
	var buf bytes.Buffer
	l := Quiet(&buf)
	l.Info("chatty")
	l.Warn("careful")
	_ = l.Sync()
	if strings.Contains(buf.String(), "chatty") || !strings.Contains(buf.String(), "careful") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Component(New(false, &buf), "batch").Info("started")
	if !strings.Contains(buf.String(), `"component": "batch"`) {
		t.Errorf("component field missing: %q", buf.String())
	}
}

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer func() {
		_ = SetLevel("info")
	}()

	if err := SetLevel("warn"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Info("hidden", "k", 1)
	Warn("shown", "segment", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "segment=3") {
		t.Fatalf("warn message missing: %q", out)
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("loud"); err == nil {
		t.Fatalf("unknown level should fail")
	}
	if err := SetLevel(""); err != nil {
		t.Fatalf("empty level should be a no-op: %v", err)
	}
}

package observability

import (
	"strings"
	"testing"
)

func TestNopLoggerSafe(t *testing.T) {
	var l Logger = NopLogger{}
	l.Info("hello", String("k", "v"))
	l = l.With(Int("n", 1))
	l.Error("still fine", Error("err", nil))
}

func TestTextLoggerLevelsAndFields(t *testing.T) {
	var sb strings.Builder
	l := NewTextLogger(&sb, LevelInfo)
	l.Debug("hidden")
	l.With(String("file", "a.pdf")).Info("loaded", Int("pages", 3))
	out := sb.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line emitted below level: %q", out)
	}
	if !strings.Contains(out, "info: loaded file=a.pdf pages=3") {
		t.Fatalf("unexpected output: %q", out)
	}
}

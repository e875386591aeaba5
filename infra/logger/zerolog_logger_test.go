package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestLogLevelOverride(t *testing.T) {
	t.Setenv("NFX_LOG_LEVEL", "warn")
	if lvl := logLevel(); lvl != zerolog.WarnLevel {
		t.Fatalf("expected warn, got %s", lvl)
	}
	t.Setenv("NFX_LOG_LEVEL", "bogus")
	if lvl := logLevel(); lvl != zerolog.InfoLevel {
		t.Fatalf("expected info fallback, got %s", lvl)
	}
}

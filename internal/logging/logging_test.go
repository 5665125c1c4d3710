package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olivier-w/termspec/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestNewWithoutFileIsNop(t *testing.T) {
	log, closeFn, err := New(config.Logging{Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("discarded")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
}

func TestNewWritesJSONAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "termspec.log")
	log, closeFn, err := New(config.Logging{Level: "warn", File: path})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hidden")
	log.Warn("render overrun")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"render overrun"`) {
		t.Fatalf("unexpected log contents %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zapcore.DebugLevel || ParseLevel("bogus") != zapcore.InfoLevel {
		t.Fatal("unexpected level mapping")
	}
}

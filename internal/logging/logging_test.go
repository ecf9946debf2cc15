package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	logger, closer := New(DefaultConfig())
	if closer != nil {
		defer closer.Close() //nolint:errcheck
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be enabled")
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be disabled")
	}
}

func TestNewDebugLevel(t *testing.T) {
	logger, _ := New(Config{Level: "debug", Format: "text"})
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be enabled")
	}
}

func TestNewFileWriter(t *testing.T) {
	dir := t.TempDir()
	logger, closer := New(Config{Level: "info", Format: "json", FilePath: dir + "/cli.log"})
	if closer == nil {
		t.Fatal("expected a closer for file output")
	}
	defer closer.Close() //nolint:errcheck
	logger.Info("hello")
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error"} {
		if !ValidLevel(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidLevel("verbose") {
		t.Error("expected verbose to be invalid")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if parseLevel("nonsense") != slog.LevelInfo {
		t.Error("expected unknown level to default to info")
	}
}

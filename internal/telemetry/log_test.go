package telemetry

import "testing"

func TestNilLoggerDoesNotPanic(t *testing.T) {
	var l *Logger
	l.Debug("no-op")
	l.Info("no-op")
	l.Warn("still logs to slog default")
	l.Error("still logs to slog default")
}

func TestNewWithoutDirLogsToStderr(t *testing.T) {
	l := New(Config{Level: "debug"})
	if l.LogFile != "" {
		t.Fatalf("expected no log file when Dir is empty, got %q", l.LogFile)
	}
	l.Info("hello")
}

func TestNewWithDirRotatesToFile(t *testing.T) {
	dir := t.TempDir()
	l := New(Config{Dir: dir, Level: "info"})
	if l.LogFile == "" {
		t.Fatal("expected a log file path when Dir is set")
	}
	l.Info("hello", "mode", "MC_MODE")
}

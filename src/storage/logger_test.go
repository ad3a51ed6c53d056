package storage

import (
	"AirlineSafety/src/config"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesAndNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	ch := logger.Subscribe()
	logger.Info("数据加载完成")

	select {
	case msg := <-ch:
		if !strings.Contains(msg, `"level":"info"`) || !strings.Contains(msg, "数据加载完成") {
			t.Errorf("unexpected entry %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive entry")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "数据加载完成") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLoggerWithConfig(config.LogConfig{File: path, Level: "warn", Format: "json"})
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	logger.Debug("hidden")
	logger.Warning("shown")

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("debug entry should be filtered")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("warning entry missing")
	}
}

func TestCheckRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	for i := 0; i < 20; i++ {
		logger.Debug("This is a log message")
	}

	cfg := &config.Config{Log: config.LogConfig{MaxSize: "1 * 100"}}
	if err := logger.CheckRotate(cfg); err != nil {
		t.Fatal(err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("expected rotated file plus new log, got %d entries", len(entries))
	}
	info, _ := os.Stat(path)
	if info.Size() != 0 {
		t.Errorf("new log size = %d, want 0", info.Size())
	}
}

func TestEval(t *testing.T) {
	if got := eval("100 * 1024 * 1024"); got != 100*1024*1024 {
		t.Errorf("eval = %d", got)
	}
	if got := eval(""); got != 0 {
		t.Errorf("eval empty = %d", got)
	}
}

func TestLogLevelString(t *testing.T) {
	if WARNING.String() != "WARNING" || LogLevel(42).String() != "UNKNOWN" {
		t.Error("unexpected level names")
	}
}

package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")
	closer := Setup(Options{File: path, MaxSizeMB: 1})
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	log.Printf("[INFO] hello from test")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] hello from test") {
		t.Fatalf("log file content: %q", data)
	}
}

func TestSetupWithoutFile(t *testing.T) {
	if err := Setup(Options{}).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

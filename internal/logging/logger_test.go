package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileLoggerWritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	logger := NewFileLogger(dir)

	logger.Info().Str("component", "bracket").Msg("library updated")
	logger.Error().Msg("download failed")

	data, err := os.ReadFile(filepath.Join(dir, "partsync.log"))
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "library updated") {
		t.Errorf("info entry missing from log file: %q", content)
	}
	if !strings.Contains(content, "download failed") {
		t.Errorf("error entry missing from log file: %q", content)
	}
	if !strings.Contains(content, "bracket") {
		t.Errorf("structured field missing from log file: %q", content)
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
	// Must not panic on a bare console logger.
	logger.Debug().Msg("smoke entry")
}

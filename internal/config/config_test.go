package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.EndpointURL != "https://catalog.partbench.io/graphql" {
		t.Errorf("unexpected default EndpointURL: %s", cfg.EndpointURL)
	}
	if cfg.Program != "freecad" {
		t.Errorf("unexpected default Program: %s", cfg.Program)
	}
	if cfg.DownloadWorkers != 0 {
		t.Errorf("expected DownloadWorkers to default to 0 (auto), got %d", cfg.DownloadWorkers)
	}
	if cfg.RequestTimeoutSeconds != 30 {
		t.Errorf("expected RequestTimeoutSeconds 30, got %d", cfg.RequestTimeoutSeconds)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config")

	cfg := NewConfig()
	cfg.EndpointURL = "https://test.partbench.io/graphql"
	cfg.LoginURL = "https://test.partbench.io/login"
	cfg.Program = "testcad"
	cfg.LibraryRoot = "/tmp/parts"
	cfg.DownloadWorkers = 3
	cfg.Token = "should-not-be-saved"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.EndpointURL != cfg.EndpointURL {
		t.Errorf("EndpointURL mismatch: expected %s, got %s", cfg.EndpointURL, loaded.EndpointURL)
	}
	if loaded.Program != cfg.Program {
		t.Errorf("Program mismatch: expected %s, got %s", cfg.Program, loaded.Program)
	}
	if loaded.LibraryRoot != cfg.LibraryRoot {
		t.Errorf("LibraryRoot mismatch: expected %s, got %s", cfg.LibraryRoot, loaded.LibraryRoot)
	}
	if loaded.DownloadWorkers != 3 {
		t.Errorf("DownloadWorkers mismatch: expected 3, got %d", loaded.DownloadWorkers)
	}
	if loaded.Token != "" {
		t.Error("token must never round-trip through the config file")
	}

	// Token must not appear in the file contents either
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.Contains(string(data), "should-not-be-saved") {
		t.Error("config file contains the token")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Load of missing file should not error, got %v", err)
	}
	if cfg.EndpointURL == "" {
		t.Error("expected defaults for missing file")
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")

	if err := WriteTokenFile(path, "  bearer-abc123\n"); err != nil {
		t.Fatalf("WriteTokenFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %04o", perm)
	}

	token, err := ReadTokenFile(path)
	if err != nil {
		t.Fatalf("ReadTokenFile failed: %v", err)
	}
	if token != "bearer-abc123" {
		t.Errorf("expected trimmed token, got %q", token)
	}
}

func TestWriteEmptyTokenFails(t *testing.T) {
	if err := WriteTokenFile(filepath.Join(t.TempDir(), "token"), "   "); err == nil {
		t.Error("expected error writing empty token")
	}
}

func TestMergeWithFlags(t *testing.T) {
	t.Setenv("PARTSYNC_TOKEN", "env-token")
	t.Setenv("PARTSYNC_API_URL", "https://env.partbench.io/graphql")

	cfg := NewConfig()
	cfg.MergeWithFlags("", "", "", 0)
	if cfg.Token != "env-token" {
		t.Errorf("expected env token, got %q", cfg.Token)
	}
	if cfg.EndpointURL != "https://env.partbench.io/graphql" {
		t.Errorf("expected env URL, got %q", cfg.EndpointURL)
	}

	// Flags beat environment
	cfg.MergeWithFlags("flag-token", "flags.partbench.io/graphql", "/lib", 7)
	if cfg.Token != "flag-token" {
		t.Errorf("expected flag token, got %q", cfg.Token)
	}
	if cfg.EndpointURL != "https://flags.partbench.io/graphql" {
		t.Errorf("expected https scheme prepended, got %q", cfg.EndpointURL)
	}
	if cfg.LibraryRoot != "/lib" {
		t.Errorf("expected flag library root, got %q", cfg.LibraryRoot)
	}
	if cfg.DownloadWorkers != 7 {
		t.Errorf("expected flag workers, got %d", cfg.DownloadWorkers)
	}
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	cfg.Token = "t"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.Token = ""
	if err := cfg.Validate(); err != ErrMissingToken {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}

	cfg = NewConfig()
	cfg.Token = "t"
	cfg.Program = ""
	if err := cfg.Validate(); err != ErrMissingProgram {
		t.Errorf("expected ErrMissingProgram, got %v", err)
	}
}

func TestTokenFollowsConfigLocation(t *testing.T) {
	t.Setenv("PARTSYNC_TOKEN", "")

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config")

	if err := Save(NewConfig(), configPath); err != nil {
		t.Fatal(err)
	}
	if err := WriteTokenFile(filepath.Join(dir, "token"), "relocated-token"); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := loaded.TokenPath(), filepath.Join(dir, "token"); got != want {
		t.Errorf("TokenPath() = %q, want %q", got, want)
	}

	loaded.MergeWithFlags("", "", "", 0)
	if loaded.Token != "relocated-token" {
		t.Errorf("token = %q, want the one beside the config file", loaded.Token)
	}
}

func TestTokenPathDefaultsWithoutFile(t *testing.T) {
	cfg := NewConfig()
	if got, want := cfg.TokenPath(), DefaultTokenPath(); got != want {
		t.Errorf("TokenPath() = %q, want default %q", got, want)
	}
}

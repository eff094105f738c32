// Package config provides configuration management for partsync.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds the persisted partsync settings.
//
// Config file location:
//   - Windows: %APPDATA%\PartBench\partsync\config
//   - Unix: ~/.config/partsync/config
//
// INI format:
//
//	[catalog]
//	endpoint_url = https://catalog.partbench.io/graphql
//	login_url = https://catalog.partbench.io/login
//	program = freecad
//
//	[library]
//	root = /home/user/PartBench
//	download_workers = 0
//	request_timeout_seconds = 30
//	download_timeout_seconds = 300
//
// The bearer token is NOT stored in the config file; it lives in a separate
// 0600 `token` file next to it (written by `partsync login`).
type Config struct {
	// Catalog connection settings
	EndpointURL string `ini:"endpoint_url"`
	LoginURL    string `ini:"login_url"`

	// Program is the host CAD program identifier used to filter filesets.
	Program string `ini:"program"`

	// LibraryRoot is the local directory the catalog tree is synced into.
	LibraryRoot string `ini:"root"`

	// DownloadWorkers bounds download parallelism. 0 means auto
	// (CPU count minus one, minimum 1).
	DownloadWorkers int `ini:"download_workers"`

	// RequestTimeoutSeconds bounds a single catalog query.
	RequestTimeoutSeconds int `ini:"request_timeout_seconds"`

	// DownloadTimeoutSeconds bounds a single file download.
	DownloadTimeoutSeconds int `ini:"download_timeout_seconds"`

	// Token is the bearer token. Populated from the token file or the
	// PARTSYNC_TOKEN environment variable, never from the config file.
	Token string `ini:"-"`

	// path is the config file location this Config was loaded from; the
	// token file lives next to it.
	path string
}

// Validation errors
var (
	ErrMissingEndpointURL = errors.New("endpoint_url is required")
	ErrMissingLibraryRoot = errors.New("root is required")
	ErrMissingProgram     = errors.New("program is required")
	ErrMissingToken       = errors.New("no bearer token (run `partsync login` or set PARTSYNC_TOKEN)")
)

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		EndpointURL:            "https://catalog.partbench.io/graphql",
		LoginURL:               "https://catalog.partbench.io/login",
		Program:                "freecad",
		LibraryRoot:            filepath.Join(home, "PartBench"),
		DownloadWorkers:        0,
		RequestTimeoutSeconds:  30,
		DownloadTimeoutSeconds: 300,
	}
}

// Load reads the config file at path, falling back to defaults for missing
// keys. A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	cfg.path = path
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := f.Section("catalog").MapTo(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse [catalog] section: %w", err)
	}
	if err := f.Section("library").MapTo(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse [library] section: %w", err)
	}

	return cfg, nil
}

// Save writes the config file at path with 0600 permissions. The token is
// intentionally not written; use WriteTokenFile.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f := ini.Empty()
	cat := f.Section("catalog")
	cat.Key("endpoint_url").SetValue(cfg.EndpointURL)
	cat.Key("login_url").SetValue(cfg.LoginURL)
	cat.Key("program").SetValue(cfg.Program)

	lib := f.Section("library")
	lib.Key("root").SetValue(cfg.LibraryRoot)
	lib.Key("download_workers").SetValue(fmt.Sprintf("%d", cfg.DownloadWorkers))
	lib.Key("request_timeout_seconds").SetValue(fmt.Sprintf("%d", cfg.RequestTimeoutSeconds))
	lib.Key("download_timeout_seconds").SetValue(fmt.Sprintf("%d", cfg.DownloadTimeoutSeconds))

	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Chmod(path, 0600)
}

// MergeWithFlags merges config with command-line flags and environment
// variables.
//
// Priority (highest to lowest):
//  1. command-line flags
//  2. PARTSYNC_TOKEN / PARTSYNC_API_URL environment variables
//  3. token file (~/.config/partsync/token)
//  4. config file / defaults
func (c *Config) MergeWithFlags(token, endpointURL, libraryRoot string, workers int) {
	if tokenPath := c.TokenPath(); tokenPath != "" {
		if t, err := ReadTokenFile(tokenPath); err == nil && t != "" {
			c.Token = t
		}
	}
	if env := os.Getenv("PARTSYNC_TOKEN"); env != "" {
		c.Token = env
	}
	if env := os.Getenv("PARTSYNC_API_URL"); env != "" {
		c.EndpointURL = env
	}

	if token != "" {
		c.Token = token
	}
	if endpointURL != "" {
		c.EndpointURL = endpointURL
	}
	if libraryRoot != "" {
		c.LibraryRoot = libraryRoot
	}
	if workers > 0 {
		c.DownloadWorkers = workers
	}

	// Ensure HTTPS scheme
	if c.EndpointURL != "" && !strings.HasPrefix(c.EndpointURL, "http") {
		c.EndpointURL = "https://" + c.EndpointURL
	}
	if c.LoginURL != "" && !strings.HasPrefix(c.LoginURL, "http") {
		c.LoginURL = "https://" + c.LoginURL
	}
}

// Validate checks whether the configuration can drive a sync.
func (c *Config) Validate() error {
	if c.EndpointURL == "" {
		return ErrMissingEndpointURL
	}
	if c.LibraryRoot == "" {
		return ErrMissingLibraryRoot
	}
	if c.Program == "" {
		return ErrMissingProgram
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// ConfigDir is the configuration directory name on Unix systems.
const ConfigDir = "partsync"

// configDir returns the platform-appropriate config directory.
func configDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "PartBench", "partsync")
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", ConfigDir)
	}
	return ""
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	dir := configDir()
	if dir == "" {
		return "config"
	}
	return filepath.Join(dir, "config")
}

// TokenPath returns the token file path belonging to this configuration: a
// `token` file next to the config file it was loaded from, so a relocated
// config carries its token with it. Falls back to the default location when
// the Config was not loaded from a file.
func (c *Config) TokenPath() string {
	if c.path == "" {
		return DefaultTokenPath()
	}
	return filepath.Join(filepath.Dir(c.path), "token")
}

// DefaultTokenPath returns the default token file path. This is where
// `partsync login` saves the bearer token.
func DefaultTokenPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "token")
}

// ReadTokenFile reads a bearer token from a file. Whitespace is trimmed.
// Warns on stderr if the file permissions are too open on Unix systems.
func ReadTokenFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat token file: %w", err)
	}

	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		fmt.Fprintf(os.Stderr, "Warning: Token file %s has insecure permissions %04o. Consider using 'chmod 600 %s'\n", path, mode, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file is empty")
	}
	return token, nil
}

// WriteTokenFile writes a bearer token to a file with 0600 permissions.
func WriteTokenFile(path, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("cannot write empty token")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

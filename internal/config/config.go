package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/epiwatch/internal/datagov"
)

// Config holds the settings epiwatch reads at startup.
type Config struct {
	APIURL     string
	ResourceID string
	Limit      int
	Timeout    time.Duration
	LogFile    string
	LogLevel   string
}

const (
	defaultConfigPath = "~/.config/epiwatch/config.toml"
	defaultLogFile    = "~/.local/state/epiwatch/epiwatch.log"
	defaultLogLevel   = "info"
	defaultTimeout    = 10 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:     datagov.DefaultBaseURL,
		ResourceID: datagov.DefaultResourceID,
		Timeout:    defaultTimeout,
		LogFile:    mustExpand(defaultLogFile),
		LogLevel:   defaultLogLevel,
	}
}

// Load locates and parses the epiwatch config, falling back to defaults when
// the file is missing or a field is empty.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		ResourceID     string `toml:"resource_id"`
		Limit          int    `toml:"limit"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.ResourceID); v != "" {
		cfg.ResourceID = v
	}
	if raw.Limit < 0 {
		return Config{}, fmt.Errorf("parse config: limit must not be negative (got %d)", raw.Limit)
	}
	cfg.Limit = raw.Limit
	if raw.TimeoutSeconds < 0 {
		return Config{}, fmt.Errorf("parse config: timeout_seconds must not be negative (got %d)", raw.TimeoutSeconds)
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		if !validLevel(v) {
			return Config{}, fmt.Errorf("parse config: unknown log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = v
	}

	return cfg, nil
}

// Endpoint returns the full datastore_search URL for this configuration.
func (c Config) Endpoint() (string, error) {
	return datagov.Endpoint(c.APIURL, c.ResourceID, c.Limit)
}

// LogPath returns the log file, using the default location when unset.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogFile) == "" {
		return mustExpand(defaultLogFile)
	}
	return c.LogFile
}

func validLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

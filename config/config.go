package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	orgerrors "github.com/obby/download-organizer/internal/errors"
	"github.com/obby/download-organizer/internal/logging"
	"github.com/obby/download-organizer/internal/patterns"
)

//go:embed sample_config.toml
var sampleConfig string

// Config holds the configuration for the download organizer
type Config struct {
	Root           string
	Debounce       time.Duration
	Workers        int
	SweepOnStart   bool
	IgnorePatterns []string
	LockPath       string
	LogLevel       string
	LogFormat      string
}

// fileConfig mirrors the TOML file. Pointers distinguish absent keys from
// zero values.
type fileConfig struct {
	Root           *string   `toml:"root"`
	Debounce       *string   `toml:"debounce"`
	Workers        *int      `toml:"workers"`
	SweepOnStart   *bool     `toml:"sweep_on_start"`
	IgnorePatterns *[]string `toml:"ignore_patterns"`
	LockPath       *string   `toml:"lock_path"`
	LogLevel       *string   `toml:"log_level"`
	LogFormat      *string   `toml:"log_format"`
}

// Default returns the built-in configuration: watch ~/Downloads with a one
// second debounce.
func Default() *Config {
	root := ""
	if home, err := os.UserHomeDir(); err == nil {
		root = filepath.Join(home, "Downloads")
	}
	return &Config{
		Root:           root,
		Debounce:       time.Second,
		Workers:        1,
		IgnorePatterns: patterns.DefaultIgnorePatterns(),
		LockPath:       defaultLockPath(),
		LogLevel:       "info",
		LogFormat:      "auto",
	}
}

// Load builds a configuration from defaults, the optional TOML file at path
// and environment variables, in that order. An explicitly named file that
// does not exist is an error. The result is not validated; call Validate
// after applying any further overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SampleConfig returns a commented TOML file listing every option.
func SampleConfig() string {
	return sampleConfig
}

func (c *Config) applyFile(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return orgerrors.NewInvalidConfigErr("config path", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return orgerrors.NewInvalidConfigErr("read config", err)
	}

	var fc fileConfig
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&fc); err != nil {
		return orgerrors.NewInvalidConfigErr(fmt.Sprintf("parse config %s", expanded), err)
	}

	if fc.Root != nil {
		c.Root = *fc.Root
	}
	if fc.Debounce != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*fc.Debounce))
		if err != nil {
			return orgerrors.NewInvalidConfigErr("debounce", err)
		}
		c.Debounce = d
	}
	if fc.Workers != nil {
		c.Workers = *fc.Workers
	}
	if fc.SweepOnStart != nil {
		c.SweepOnStart = *fc.SweepOnStart
	}
	if fc.IgnorePatterns != nil {
		c.IgnorePatterns = append([]string(nil), (*fc.IgnorePatterns)...)
	}
	if fc.LockPath != nil {
		c.LockPath = *fc.LockPath
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		c.LogFormat = *fc.LogFormat
	}
	return nil
}

// applyEnv overrides values from environment variables.
func (c *Config) applyEnv() error {
	if root := os.Getenv("ORGANIZER_ROOT"); root != "" {
		c.Root = root
	}

	// DEBOUNCE_MS is kept alongside the duration form for scripts that
	// only deal in integers.
	if dbStr := os.Getenv("DEBOUNCE_MS"); dbStr != "" {
		ms, err := strconv.Atoi(dbStr)
		if err != nil {
			return orgerrors.NewInvalidConfigErr("DEBOUNCE_MS", err)
		}
		c.Debounce = time.Duration(ms) * time.Millisecond
	}
	if dbStr := os.Getenv("ORGANIZER_DEBOUNCE"); dbStr != "" {
		d, err := time.ParseDuration(dbStr)
		if err != nil {
			return orgerrors.NewInvalidConfigErr("ORGANIZER_DEBOUNCE", err)
		}
		c.Debounce = d
	}

	if wStr := os.Getenv("ORGANIZER_WORKERS"); wStr != "" {
		w, err := strconv.Atoi(wStr)
		if err != nil {
			return orgerrors.NewInvalidConfigErr("ORGANIZER_WORKERS", err)
		}
		c.Workers = w
	}

	if sStr := os.Getenv("ORGANIZER_SWEEP"); sStr != "" {
		s, err := strconv.ParseBool(sStr)
		if err != nil {
			return orgerrors.NewInvalidConfigErr("ORGANIZER_SWEEP", err)
		}
		c.SweepOnStart = s
	}

	if lp := os.Getenv("ORGANIZER_LOCK_PATH"); lp != "" {
		c.LockPath = lp
	}
	if ll := os.Getenv("LOG_LEVEL"); ll != "" {
		c.LogLevel = ll
	}
	if lf := os.Getenv("LOG_FORMAT"); lf != "" {
		c.LogFormat = lf
	}
	return nil
}

// Normalize expands "~" and makes the root and lock paths absolute.
func (c *Config) Normalize() error {
	var err error
	if c.Root, err = ExpandPath(strings.TrimSpace(c.Root)); err != nil {
		return orgerrors.NewInvalidConfigErr("root", err)
	}
	if c.LockPath, err = ExpandPath(strings.TrimSpace(c.LockPath)); err != nil {
		return orgerrors.NewInvalidConfigErr("lock_path", err)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Root == "" {
		return orgerrors.NewInvalidConfig("root must be set")
	}
	if !filepath.IsAbs(c.Root) {
		return orgerrors.NewInvalidConfig(fmt.Sprintf("root must be an absolute path: %q", c.Root))
	}
	info, err := os.Stat(c.Root)
	if err != nil {
		return orgerrors.NewInvalidConfigErr("root", err)
	}
	if !info.IsDir() {
		return orgerrors.NewInvalidConfig(fmt.Sprintf("root is not a directory: %q", c.Root))
	}
	if c.Debounce <= 0 {
		return orgerrors.NewInvalidConfig("debounce must be positive")
	}
	if c.Workers < 1 {
		return orgerrors.NewInvalidConfig("workers must be at least 1")
	}
	if !logging.ValidFormat(c.LogFormat) {
		return orgerrors.NewInvalidConfig(fmt.Sprintf("log_format must be auto, console or json: %q", c.LogFormat))
	}
	if _, err := patterns.Compile(c.IgnorePatterns); err != nil {
		return orgerrors.NewInvalidConfigErr("ignore_patterns", err)
	}
	return nil
}

// ExpandPath resolves a leading "~" to the home directory and returns an
// absolute, cleaned path. Empty input stays empty.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

func defaultLockPath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "download-organizer", "organizer.lock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "download-organizer.lock")
	}
	return filepath.Join(home, ".cache", "download-organizer", "organizer.lock")
}

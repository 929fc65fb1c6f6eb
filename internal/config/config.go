// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/polly-tui/internal/util"
)

// CurrentVersion is the config file schema version.
const CurrentVersion = "1"

// DirName is the per-user configuration directory under $HOME.
const DirName = ".polly"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete polly configuration.
type Config struct {
	Version string `toml:"version"`

	Server    ServerConfig    `toml:"server"`
	History   HistoryConfig   `toml:"history"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Downloads DownloadsConfig `toml:"downloads"`
	Export    ExportConfig    `toml:"export"`
	UI        UIConfig        `toml:"ui"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ServerConfig locates the tutoring backend.
type ServerConfig struct {
	// BaseURL is the backend root, e.g. http://localhost:8000
	BaseURL string `toml:"base_url"`
	// Timeout bounds each request. 0 waits forever.
	Timeout Duration `toml:"timeout"`
}

// HistoryConfig bounds the conversation transcript.
type HistoryConfig struct {
	// MaxTurns caps the Turns kept and sent as context. 0 is unbounded.
	MaxTurns int `toml:"max_turns"`
}

// CatalogConfig controls the document list cache.
type CatalogConfig struct {
	TTL Duration `toml:"ttl"`
}

// DownloadsConfig controls where revision sheets are saved.
type DownloadsConfig struct {
	Dir string `toml:"dir"`
}

// ExportConfig controls where /export writes transcripts.
type ExportConfig struct {
	Dir string `toml:"dir"`
}

// UIConfig contains UI preferences.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme"`
	// Markdown renders assistant answers with glamour.
	Markdown bool `toml:"markdown"`
	// StartMode is the selector mode at launch: "global" or "precis".
	StartMode string `toml:"start_mode"`
}

// LoggingConfig controls the rotating log file.
type LoggingConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Duration is a time.Duration written as "30s" or "10m" in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. A bare integer is read
// as seconds.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := parseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Server: ServerConfig{
			BaseURL: "http://localhost:8000",
		},
		Catalog: CatalogConfig{
			TTL: Duration{30 * time.Minute},
		},
		UI: UIConfig{
			Theme:     "auto",
			Markdown:  true,
			StartMode: "global",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the polly configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ExpandPath replaces a leading "~" with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// LogFile returns the resolved log file path.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return ExpandPath(c.Logging.File)
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "polly.log")
	}
	return filepath.Join(dir, "logs", "polly.log")
}

// DownloadsDir returns the resolved revision sheet directory.
func (c *Config) DownloadsDir() string {
	if c.Downloads.Dir != "" {
		return ExpandPath(c.Downloads.Dir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Downloads")
	}
	return "."
}

// ExportDir returns the resolved transcript export directory.
func (c *Config) ExportDir() string {
	if c.Export.Dir != "" {
		return ExpandPath(c.Export.Dir)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "exports")
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// SECURITY: Config files are 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadFromPath reads the config file at path. A missing file yields the
// defaults. Precedence, lowest first: defaults, config file, .env, environment.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, statErr)
	}

	if err := LoadDotEnv(""); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path over cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from path (".env" when empty) into the
// process environment. Variables already set win. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg to path.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# polly configuration file\n")
	buf.WriteString("# Generated by polly - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidationErrors, or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if u, err := url.Parse(c.Server.BaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "server.base_url", Message: err.Error()})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme),
		})
	} else if u.Host == "" {
		errs = append(errs, ValidationError{Field: "server.base_url", Message: "missing host"})
	}

	if c.Server.Timeout.Duration < 0 {
		errs = append(errs, ValidationError{Field: "server.timeout", Message: "must not be negative"})
	}
	if c.History.MaxTurns < 0 {
		errs = append(errs, ValidationError{Field: "history.max_turns", Message: "must be 0 (unbounded) or positive"})
	}
	if c.Catalog.TTL.Duration < 0 {
		errs = append(errs, ValidationError{Field: "catalog.ttl", Message: "must not be negative"})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	switch strings.ToLower(c.UI.StartMode) {
	case "global", "precis":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.start_mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: global, precis", c.UI.StartMode),
		})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}
	if c.Logging.MaxSizeMB < 0 {
		errs = append(errs, ValidationError{Field: "logging.max_size_mb", Message: "must not be negative"})
	}
	if c.Logging.MaxBackups < 0 {
		errs = append(errs, ValidationError{Field: "logging.max_backups", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty fields that have no meaningful zero value.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = d.Server.BaseURL
	}
	if c.Catalog.TTL.Duration == 0 {
		c.Catalog.TTL = d.Catalog.TTL
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.StartMode == "" {
		c.UI.StartMode = d.UI.StartMode
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = d.Logging.MaxSizeMB
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies POLLY_* environment variables:
//   - POLLY_BASE_URL: overrides server.base_url
//   - POLLY_TIMEOUT: overrides server.timeout ("30s", or seconds)
//   - POLLY_HISTORY_MAX: overrides history.max_turns
//   - POLLY_LOG_LEVEL: overrides logging.level
//   - POLLY_DOWNLOADS_DIR: overrides downloads.dir
//   - POLLY_THEME: overrides ui.theme
//
// Unparseable numeric values are reported and leave the field unchanged.
func (c *Config) ApplyEnvOverrides() error {
	var errs ValidationErrors

	if v := os.Getenv("POLLY_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("POLLY_TIMEOUT"); v != "" {
		if d, err := parseDuration(v); err != nil {
			errs = append(errs, ValidationError{Field: "POLLY_TIMEOUT", Message: err.Error()})
		} else {
			c.Server.Timeout = Duration{d}
		}
	}
	if v := os.Getenv("POLLY_HISTORY_MAX"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err != nil {
			errs = append(errs, ValidationError{Field: "POLLY_HISTORY_MAX", Message: fmt.Sprintf("invalid integer %q", v)})
		} else {
			c.History.MaxTurns = n
		}
	}
	if v := os.Getenv("POLLY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("POLLY_DOWNLOADS_DIR"); v != "" {
		c.Downloads.Dir = v
	}
	if v := os.Getenv("POLLY_THEME"); v != "" {
		c.UI.Theme = v
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"POLLY_BASE_URL", "POLLY_TIMEOUT", "POLLY_HISTORY_MAX",
		"POLLY_LOG_LEVEL", "POLLY_DOWNLOADS_DIR", "POLLY_THEME",
	} {
		t.Setenv(k, "")
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	assert.Zero(t, cfg.Server.Timeout.Duration, "no timeout by default")
	assert.Zero(t, cfg.History.MaxTurns, "history unbounded by default")
	assert.Equal(t, 30*time.Minute, cfg.Catalog.TTL.Duration)
	assert.True(t, cfg.UI.Markdown)
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromPath_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
base_url = "http://tutor.example:9000/"
timeout = "45s"

[history]
max_turns = 20

[catalog]
ttl = "5m"

[ui]
theme = "dark"
markdown = false
start_mode = "precis"

[logging]
level = "debug"
`), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "http://tutor.example:9000", cfg.Server.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 45*time.Second, cfg.Server.Timeout.Duration)
	assert.Equal(t, 20, cfg.History.MaxTurns)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.TTL.Duration)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.False(t, cfg.UI.Markdown)
	assert.Equal(t, "precis", cfg.UI.StartMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB, "unset keys keep defaults")

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "permissions tightened on load")
	}
}

func TestLoadFromPath_InvalidFile(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[server\nbase_url ="},
		{"bad duration", "[server]\ntimeout = \"soon\""},
		{"bad scheme", "[server]\nbase_url = \"ftp://host\""},
		{"negative cap", "[history]\nmax_turns = -1"},
		{"bad theme", "[ui]\ntheme = \"neon\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0600))
			_, err := LoadFromPath(path)
			assert.Error(t, err)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("POLLY_BASE_URL", "https://polly.example")
	t.Setenv("POLLY_TIMEOUT", "90")
	t.Setenv("POLLY_HISTORY_MAX", "40")
	t.Setenv("POLLY_LOG_LEVEL", "warn")
	t.Setenv("POLLY_DOWNLOADS_DIR", "/tmp/fiches")
	t.Setenv("POLLY_THEME", "light")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnvOverrides())

	assert.Equal(t, "https://polly.example", cfg.Server.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Server.Timeout.Duration)
	assert.Equal(t, 40, cfg.History.MaxTurns)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/tmp/fiches", cfg.Downloads.Dir)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestApplyEnvOverrides_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("POLLY_TIMEOUT", "bientôt")
	t.Setenv("POLLY_HISTORY_MAX", "vingt")

	cfg := Default()
	err := cfg.ApplyEnvOverrides()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.Zero(t, cfg.History.MaxTurns, "field unchanged")
}

func TestEnvBeatsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[history]\nmax_turns = 10\n"), 0600))
	t.Setenv("POLLY_HISTORY_MAX", "4")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.History.MaxTurns)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POLLY_THEME=dark\nPOLLY_LOG_LEVEL=error\n"), 0600))
	t.Setenv("POLLY_LOG_LEVEL", "debug")
	// godotenv skips variables that exist, even empty ones.
	os.Unsetenv("POLLY_THEME")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "dark", os.Getenv("POLLY_THEME"))
	assert.Equal(t, "debug", os.Getenv("POLLY_LOG_LEVEL"), "existing variables win")

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Server.Timeout = Duration{2 * time.Minute}
	cfg.History.MaxTurns = 12
	cfg.Downloads.Dir = "~/Fiches"
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.BaseURL = "localhost:8000"
	cfg.History.MaxTurns = -2
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"server.base_url", "history.max_turns", "logging.level"}, fields)
	assert.Contains(t, err.Error(), "history.max_turns")
}

func TestResolvedPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg := Default()
	assert.Equal(t, filepath.Join(home, DirName, "logs", "polly.log"), cfg.LogFile())
	assert.Equal(t, filepath.Join(home, DirName, "exports"), cfg.ExportDir())
	assert.Equal(t, filepath.Join(home, "Downloads"), cfg.DownloadsDir())

	cfg.Downloads.Dir = "~/Fiches"
	assert.Equal(t, filepath.Join(home, "Fiches"), cfg.DownloadsDir())
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

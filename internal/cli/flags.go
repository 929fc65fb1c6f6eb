// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/jeranaias/polly-tui/internal/config"
)

// GlobalFlags are the persistent flags shared by every command. Set values
// override the config file and the environment.
type GlobalFlags struct {
	ConfigPath string
	Server     string
	Timeout    time.Duration
	LogLevel   string
	Theme      string
	// Docs pre-selects documents and starts in PRECIS mode.
	Docs []string
	// Global forces GLOBAL mode even when the config says otherwise.
	Global  bool
	Verbose bool
	NoColor bool
}

// NewGlobalFlags returns the flag defaults.
func NewGlobalFlags() *GlobalFlags {
	return &GlobalFlags{}
}

// BindFlags registers the flags on fs.
func (f *GlobalFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.ConfigPath, "config", "c", f.ConfigPath, "config file (default ~/.polly/config.toml)")
	fs.StringVarP(&f.Server, "server", "s", f.Server, "backend base URL, e.g. http://localhost:8000")
	fs.DurationVar(&f.Timeout, "timeout", f.Timeout, "per-request timeout (0 waits forever)")
	fs.StringVar(&f.LogLevel, "log-level", f.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&f.Theme, "theme", f.Theme, "color theme (auto, dark, light)")
	fs.StringArrayVarP(&f.Docs, "doc", "d", f.Docs, "select a document by name or label (repeatable, implies PRECIS mode)")
	fs.BoolVarP(&f.Global, "global", "g", f.Global, "search all documents (GLOBAL mode)")
	fs.BoolVarP(&f.Verbose, "verbose", "v", f.Verbose, "also write logs to stderr")
	fs.BoolVar(&f.NoColor, "no-color", f.NoColor, "disable colored output")
}

// Apply copies the flags that were set over cfg. Zero values mean unset,
// except Timeout which is applied only when the flag was given.
func (f *GlobalFlags) Apply(fs *pflag.FlagSet, cfg *config.Config) {
	if f.Server != "" {
		cfg.Server.BaseURL = f.Server
	}
	if fs != nil && fs.Changed("timeout") {
		cfg.Server.Timeout = config.Duration{Duration: f.Timeout}
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}
	if f.Theme != "" {
		cfg.UI.Theme = f.Theme
	}
	switch {
	case f.Global:
		cfg.UI.StartMode = "global"
	case len(f.Docs) > 0:
		cfg.UI.StartMode = "precis"
	}
}

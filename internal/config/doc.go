// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for polly.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (applied by internal/cli)
//   - Environment variables (POLLY_*), including a .env file in the
//     working directory
//   - ~/.polly/config.toml
//   - Built-in defaults
//
// # Usage
//
//	path, _ := config.ConfigPath()
//	cfg, err := config.LoadFromPath(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := backend.NewClient(cfg.Server.BaseURL).WithTimeout(cfg.Server.Timeout.Duration)
package config

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the polly command line.
//
// Without a subcommand polly opens the full-screen TUI. The other commands
// share the same session wiring (config, logger, backend client, catalog):
//
//	polly                      full-screen TUI
//	polly chat                 line-based REPL with history
//	polly ask "question"       one-shot question, quiz or answer on stdout
//	polly docs                 list the course catalog
//	polly sheet --doc X        download a revision sheet
//	polly config show|path|init
//	polly logs                 tail the log file
//	polly version
package cli

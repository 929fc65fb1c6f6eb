// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/polly-tui/internal/logging"
)

func newLogsCommand(f *GlobalFlags) *cobra.Command {
	var (
		limit int
		level string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Affiche les dernières lignes du journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return usagef("--lines doit être positif")
			}
			if level != "" {
				if _, err := logging.ParseLevel(level); err != nil {
					return &UsageError{Reason: err.Error()}
				}
			}
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}

			path := cfg.LogFile()
			entries, err := logging.Tail(path, level, limit)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, DimStyle.Render("Journal vide : "+path))
				return nil
			}
			// Oldest first, like tail.
			for i := len(entries) - 1; i >= 0; i-- {
				fmt.Fprintln(out, formatEntry(entries[i]))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "lines", "n", 20, "number of entries to show")
	cmd.Flags().StringVar(&level, "level", "", "only show entries of this level (debug, info, warn, error)")
	return cmd
}

func formatEntry(e logging.Entry) string {
	var b strings.Builder
	b.WriteString(DimStyle.Render(e.Timestamp))
	b.WriteString(" ")
	switch e.Level {
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("%-5s", e.Level)))
	case "WARN":
		b.WriteString(WarningStyle.Render(fmt.Sprintf("%-5s", e.Level)))
	default:
		b.WriteString(fmt.Sprintf("%-5s", e.Level))
	}
	if e.Logger != "" {
		b.WriteString(" " + InfoStyle.Render(e.Logger))
	}
	b.WriteString(" " + e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(DimStyle.Render(fmt.Sprintf(" %s=%v", k, e.Fields[k])))
	}
	return b.String()
}

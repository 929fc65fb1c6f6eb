// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand builds the polly command tree. Each call returns a fresh
// tree with its own flag values.
func NewRootCommand() *cobra.Command {
	f := NewGlobalFlags()

	root := &cobra.Command{
		Use:   "polly",
		Short: "Client terminal du tuteur de cours Polly",
		Long: `Polly répond à vos questions sur vos cours, génère des QCM pour vous
entraîner et produit des fiches de révision.

Sans sous-commande, polly ouvre l'interface plein écran.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if f.NoColor {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, f)
		},
	}
	f.BindFlags(root.PersistentFlags())
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Reason: err.Error()}
	})

	root.AddCommand(
		newChatCommand(f),
		newAskCommand(f),
		newDocsCommand(f),
		newSheetCommand(f),
		newConfigCommand(f),
		newLogsCommand(f),
		newVersionCommand(),
	)
	return root
}

// Execute runs polly with the process arguments and returns the exit code.
func Execute() int {
	root := NewRootCommand()
	err := root.ExecuteContext(context.Background())
	DisplayError(root.ErrOrStderr(), err)
	return GetExitCode(err)
}

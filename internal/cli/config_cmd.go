// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/polly-tui/internal/config"
)

func newConfigCommand(f *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Affiche ou initialise la configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Affiche la configuration effective (fichier, .env, variables, options)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.String())
			return nil
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Affiche le chemin du fichier de configuration et des dossiers utilisés",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := configFile(f)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:    %s\n", file)
			fmt.Fprintf(out, "log:       %s\n", cfg.LogFile())
			fmt.Fprintf(out, "downloads: %s\n", cfg.DownloadsDir())
			fmt.Fprintf(out, "exports:   %s\n", cfg.ExportDir())
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Écrit un fichier de configuration par défaut",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := configFile(f)
			if err != nil {
				return err
			}
			if _, err := os.Stat(file); err == nil && !force {
				return usagef("%s existe déjà (utilisez --force pour l'écraser)", file)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			cfg := config.Default()
			f.Apply(cmd.Flags(), cfg)
			cfg.SetDefaults()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}
			if err := config.SaveTOML(cfg, file); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Configuration écrite : ")+file)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, path, initCmd)
	return cmd
}

// configFile is the config path selected by --config or the default.
func configFile(f *GlobalFlags) (string, error) {
	if f.ConfigPath != "" {
		return config.ExpandPath(f.ConfigPath), nil
	}
	return config.ConfigPath()
}

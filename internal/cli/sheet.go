// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/polly-tui/internal/config"
	"github.com/jeranaias/polly-tui/internal/sheet"
)

func newSheetCommand(f *GlobalFlags) *cobra.Command {
	var (
		outDir string
		open   bool
	)
	cmd := &cobra.Command{
		Use:     "sheet [cours...]",
		Aliases: []string{"fiche"},
		Short:   "Télécharge la fiche de révision des cours choisis",
		Long: `Génère la fiche de révision d'un ou plusieurs cours précis et l'enregistre
dans le dossier de téléchargement. Les cours se désignent en argument ou avec --doc.`,
		Example: `  polly sheet Droit_Constitutionnel
  polly sheet -d "Relations internationales" -d Droit --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSheet(cmd, f, args, outDir, open)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "destination directory (default: downloads.dir)")
	cmd.Flags().BoolVar(&open, "open", false, "open the saved sheet with the system viewer")
	return cmd
}

// openSheet is swapped by tests.
var openSheet = sheet.Open

func runSheet(cmd *cobra.Command, f *GlobalFlags, args []string, outDir string, open bool) error {
	s, err := openSession(cmd, f)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := interruptible(cmd.Context())
	defer stop()

	names := append(append([]string(nil), f.Docs...), args...)
	if len(names) > 0 {
		_, _ = s.loadCatalog(ctx, false)
		if err := s.selectDocuments(names); err != nil {
			return err
		}
	}

	ctrl := s.Controller
	p := newPrinter(cmd.OutOrStdout(), s, false)
	res, err := ctrl.GenerateSheet(ctx, s.Client)
	p.flush(ctrl.Log())
	if err != nil {
		return reported(err)
	}
	if res == nil {
		return sheet.ErrEmpty
	}

	dir := s.Config.DownloadsDir()
	if outDir != "" {
		dir = config.ExpandPath(outDir)
	}
	path, err := res.Save(dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(msgSheetSaved)+path)

	if open {
		if err := openSheet(path); err != nil {
			s.Logger.Warn("open sheet", zap.String("path", path), zap.Error(err))
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

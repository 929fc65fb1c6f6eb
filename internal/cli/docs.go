// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jeranaias/polly-tui/internal/util"
)

func newDocsCommand(f *GlobalFlags) *cobra.Command {
	var idsOnly bool
	cmd := &cobra.Command{
		Use:     "docs [filtre]",
		Aliases: []string{"cours"},
		Short:   "Liste les cours disponibles sur le serveur",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, f)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := interruptible(cmd.Context())
			defer stop()
			if _, err := s.loadCatalog(ctx, false); err != nil {
				return err
			}

			sel := s.Controller.Selector()
			if len(args) > 0 {
				sel.SetFilter(args[0])
			}
			items := sel.Visible()
			out := cmd.OutOrStdout()

			if idsOnly {
				for _, it := range items {
					fmt.Fprintln(out, it.ID)
				}
				return nil
			}

			fmt.Fprintln(out, TitleStyle.Render(fmt.Sprintf(msgCatalogLoaded, len(sel.Catalog()))))
			if len(items) == 0 {
				fmt.Fprintln(out, DimStyle.Render("Aucun cours ne correspond."))
				return nil
			}
			width := 0
			for _, it := range items {
				if w := runewidth.StringWidth(it.Label); w > width {
					width = w
				}
			}
			for i, it := range items {
				fmt.Fprintf(out, "  %2d. %s  %s\n", i+1, util.PadRight(it.Label, width), DimStyle.Render(it.ID))
			}
			fmt.Fprintln(out, DimStyle.Render("Utilisez --doc <nom> pour restreindre une question à un cours."))
			return nil
		},
	}
	cmd.Flags().BoolVar(&idsOnly, "ids", false, "print raw document IDs, one per line")
	return cmd
}

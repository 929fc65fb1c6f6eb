// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/polly-tui/internal/ui/chat"
)

// runTUI opens the full-screen interface.
func runTUI(cmd *cobra.Command, f *GlobalFlags) error {
	if err := requireTTY(); err != nil {
		return err
	}

	s, err := openSession(cmd, f)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(f.Docs) > 0 {
		// The model reloads the catalog on Init; chosen documents survive it.
		_, _ = s.loadCatalog(cmd.Context(), false)
		if err := s.selectDocuments(f.Docs); err != nil {
			return err
		}
	}

	m := chat.New(chat.Options{
		Controller:   s.Controller,
		Backend:      s.Client,
		Catalog:      s.Catalog,
		Theme:        s.Theme,
		Logger:       s.Logger,
		Server:       s.Config.Server.BaseURL,
		DownloadsDir: s.Config.DownloadsDir(),
		ExportDir:    s.Config.ExportDir(),
		Markdown:     s.Config.UI.Markdown,
		Timeout:      s.Config.Server.Timeout.Duration,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		s.Logger.Error("tui exited", zap.Error(err))
		return fmt.Errorf("interface error: %w", err)
	}
	return nil
}

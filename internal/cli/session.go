// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/polly-tui/internal/backend"
	"github.com/jeranaias/polly-tui/internal/catalog"
	"github.com/jeranaias/polly-tui/internal/config"
	"github.com/jeranaias/polly-tui/internal/dispatch"
	"github.com/jeranaias/polly-tui/internal/logging"
	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/selector"
	"github.com/jeranaias/polly-tui/internal/ui/styles"
	"github.com/jeranaias/polly-tui/internal/util"
)

// =============================================================================
// SESSION WIRING
// =============================================================================

// Session bundles everything a command needs to talk to the backend.
type Session struct {
	Config     *config.Config
	Logger     *zap.Logger
	Client     *backend.Client
	Catalog    *catalog.Catalog
	Controller *dispatch.Controller
	Theme      *styles.Theme

	flush func()
}

// loadConfig resolves the configuration: defaults, file, .env, environment,
// then flags.
func loadConfig(cmd *cobra.Command, f *GlobalFlags) (*config.Config, error) {
	path, err := configFile(f)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}

	f.Apply(cmd.Flags(), cfg)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// openSession loads the configuration and wires the logger, the backend
// client, the catalog cache and the controller. Callers must Close it.
func openSession(cmd *cobra.Command, f *GlobalFlags) (*Session, error) {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{
		File:       cfg.LogFile(),
		Level:      cfg.Logging.Level,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	if f.Verbose {
		logOpts.Console = cmd.ErrOrStderr()
	}
	logger, flush, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}
	logger.Info("session start",
		zap.String("command", cmd.CommandPath()),
		zap.String("server", cfg.Server.BaseURL),
		zap.Duration("timeout", cfg.Server.Timeout.Duration),
		zap.String("mode", cfg.UI.StartMode),
	)

	client := backend.NewClient(cfg.Server.BaseURL).
		WithTimeout(cfg.Server.Timeout.Duration).
		WithLogger(logger)
	cat := catalog.New(client, cfg.Catalog.TTL.Duration, logger)

	sel := selector.New(nil)
	if mode, err := selector.ParseMode(cfg.UI.StartMode); err == nil {
		sel.SetMode(mode)
	}
	ctrl := dispatch.NewController(sel, model.NewLog(cfg.History.MaxTurns), logger)

	return &Session{
		Config:     cfg,
		Logger:     logger,
		Client:     client,
		Catalog:    cat,
		Controller: ctrl,
		Theme:      styles.NewTheme(cfg.UI.Theme),
		flush:      flush,
	}, nil
}

// Close releases the transient sheet copy and flushes the logger.
func (s *Session) Close() {
	if res := s.Controller.Sheet(); res != nil {
		if err := res.Release(); err != nil {
			s.Logger.Debug("release sheet", zap.Error(err))
		}
	}
	s.Logger.Info("session end")
	if s.flush != nil {
		s.flush()
	}
}

// =============================================================================
// DOCUMENT SELECTION
// =============================================================================

// loadCatalog fills the selector from the backend. Failures leave GLOBAL
// mode usable and are returned for display.
func (s *Session) loadCatalog(ctx context.Context, refresh bool) ([]string, error) {
	var docs []string
	var err error
	if refresh {
		docs, err = s.Catalog.Refresh(ctx)
	} else {
		docs, err = s.Catalog.Documents(ctx)
	}
	if err != nil {
		s.Logger.Warn("catalog unavailable", zap.Error(err))
		return nil, err
	}
	s.Controller.Selector().SetCatalog(docs)
	return docs, nil
}

// selectDocuments toggles on each named document. Names are matched against
// the catalog by ID, then by label, then by a unique label fragment.
func (s *Session) selectDocuments(names []string) error {
	sel := s.Controller.Selector()
	if len(names) == 0 {
		return nil
	}
	sel.SetMode(selector.ModePrecis)
	for _, name := range names {
		id, err := resolveDocument(sel.Catalog(), name)
		if err != nil {
			return err
		}
		if !sel.IsChosen(id) {
			sel.Toggle(id)
		}
	}
	return nil
}

// resolveDocument maps a user-supplied name to a catalog ID. With an empty
// catalog the name is taken as an ID.
func resolveDocument(catalog []string, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", usagef("nom de cours vide")
	}
	if len(catalog) == 0 {
		return name, nil
	}

	for _, id := range catalog {
		if id == name {
			return id, nil
		}
	}
	for _, id := range catalog {
		if util.Fold(selector.Label(id)) == util.Fold(name) || util.Fold(id) == util.Fold(name) {
			return id, nil
		}
	}

	var matches []string
	for _, id := range catalog {
		if util.FoldContains(selector.Label(id), name) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", usagef("cours inconnu : %q (voir polly docs)", name)
	default:
		return "", usagef("%q désigne plusieurs cours : %s", name, strings.Join(matches, ", "))
	}
}

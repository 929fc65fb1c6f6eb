// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/polly-tui/internal/dispatch"
	"github.com/jeranaias/polly-tui/internal/model"
)

func newAskCommand(f *GlobalFlags) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Pose une question (ou demande un QCM) et affiche la réponse",
		Example: `  polly ask "Qu'est-ce que la séparation des pouvoirs ?"
  polly ask -d Droit_Constitutionnel "Fais-moi un QCM sur le chapitre 2"
  polly ask --json "Résume le cours" | jq .answer`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, f, strings.Join(args, " "), jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the answer or the quiz as JSON")
	return cmd
}

// askResult is the --json output.
type askResult struct {
	Route     string      `json:"route"`
	Question  string      `json:"question"`
	Selection string      `json:"selection"`
	Documents []string    `json:"documents,omitempty"`
	Answer    string      `json:"answer,omitempty"`
	Quiz      *model.Quiz `json:"quiz,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// interruptible cancels ctx on SIGINT.
func interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

func runAsk(cmd *cobra.Command, f *GlobalFlags, question string, jsonOut bool) error {
	s, err := openSession(cmd, f)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := interruptible(cmd.Context())
	defer stop()

	if len(f.Docs) > 0 {
		_, _ = s.loadCatalog(ctx, false)
		if err := s.selectDocuments(f.Docs); err != nil {
			return err
		}
	}

	ctrl := s.Controller
	p := newPrinter(cmd.OutOrStdout(), s, false)

	pending, err := ctrl.Submit(question)
	if errors.Is(err, dispatch.ErrEmptyInput) {
		return usagef("question vide")
	}
	if err != nil {
		// Shown as a warning notice, e.g. no document selected.
		p.flush(ctrl.Log())
		return reported(err)
	}

	out := dispatch.Execute(ctx, s.Client, *pending)
	ctrl.Resolve(out)

	if jsonOut {
		res := askResult{
			Route:     pending.Route.String(),
			Question:  pending.Question,
			Selection: pending.Selection.Kind().String(),
			Documents: pending.Selection.IDs(),
			Answer:    out.Answer,
			Quiz:      out.Quiz,
		}
		if out.Err != nil {
			res.Error = dispatch.UserMessage(out.Err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(res); err != nil {
			return err
		}
		// The failure is in the JSON object; keep the chain for the exit code.
		return reported(out.Err)
	}

	p.flush(ctrl.Log())
	if out.Err != nil {
		return reported(out.Err)
	}
	if pending.Route == dispatch.RouteQuiz {
		p.quiz(ctrl.Board())
	}
	return nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/polly-tui/internal/backend"
	"github.com/jeranaias/polly-tui/internal/backendtest"
	"github.com/jeranaias/polly-tui/internal/catalog"
	"github.com/jeranaias/polly-tui/internal/config"
	"github.com/jeranaias/polly-tui/internal/dispatch"
	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/selector"
	"github.com/jeranaias/polly-tui/internal/ui/styles"
)

// scriptReader feeds canned lines to the REPL, then reports end of input.
type scriptReader struct {
	lines   []string
	prompts []string
}

func (s *scriptReader) ReadInput(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptReader) Close() {}

type replHarness struct {
	srv    *backendtest.Server
	s      *Session
	in     *scriptReader
	out    *bytes.Buffer
	r      *repl
	opened []string
}

func newREPLHarness(t *testing.T) *replHarness {
	t.Helper()
	srv := backendtest.New(t)
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Server.BaseURL = srv.URL
	cfg.Downloads.Dir = filepath.Join(dir, "downloads")
	cfg.Export.Dir = filepath.Join(dir, "exports")
	cfg.UI.Markdown = false

	client := backend.NewClient(srv.URL).WithTimeout(5 * time.Second)
	s := &Session{
		Config:     cfg,
		Logger:     zap.NewNop(),
		Client:     client,
		Catalog:    catalog.New(client, time.Minute, nil),
		Controller: dispatch.NewController(selector.New(nil), model.NewLog(0), nil),
		Theme:      styles.NewTheme("dark"),
	}
	t.Cleanup(s.Close)

	h := &replHarness{srv: srv, s: s, in: &scriptReader{}, out: &bytes.Buffer{}}
	h.r = newREPL(s, h.in, h.out)
	h.r.open = func(path string) error {
		h.opened = append(h.opened, path)
		return nil
	}
	return h
}

// play runs the REPL over lines until end of input.
func (h *replHarness) play(t *testing.T, lines ...string) string {
	t.Helper()
	h.in.lines = lines
	require.NoError(t, h.r.run(context.Background(), nil))
	return h.out.String()
}

func TestREPL_AskThenQuit(t *testing.T) {
	h := newREPLHarness(t)

	out := h.play(t, "Bonjour", "/quit", "jamais lu")
	assert.Contains(t, out, "3 cours disponibles")
	assert.Contains(t, out, "Mode global")
	assert.Contains(t, out, "Réponse à : Bonjour")
	assert.Contains(t, out, "À bientôt ! 2 message(s)")
	assert.Equal(t, []string{"jamais lu"}, h.in.lines, "input after /quit is not read")
	assert.Equal(t, 1, h.srv.Count(backendtest.PathAsk))
}

func TestREPL_EndOfInputExits(t *testing.T) {
	h := newREPLHarness(t)

	out := h.play(t)
	assert.Contains(t, out, "À bientôt")
}

func TestREPL_ChooseAndAsk(t *testing.T) {
	h := newREPLHarness(t)

	out := h.play(t, "/precis", "/docs", "/choisir 2", "Bonjour")
	assert.Contains(t, out, "Aucun cours sélectionné", "PRECIS with nothing chosen warns")
	assert.Contains(t, out, "[x] Droit_Constitutionnel")

	req, ok := h.srv.Last(backendtest.PathAsk)
	require.True(t, ok)
	assert.Equal(t, "Droit_Constitutionnel.pdf", req.Document)
	assert.Contains(t, h.in.prompts, "polly[1 cours]> ")
}

func TestREPL_ChooseByNameAndFilter(t *testing.T) {
	h := newREPLHarness(t)

	out := h.play(t, "/precis", "/filtre relations", "/choisir 1", "/choisir intro", "/filtre")
	assert.Contains(t, out, `Filtre : "relations" (1 résultat(s))`)
	assert.Equal(t, []string{"Relations_Internationales.pdf", "Introduction_Science_Politique.pdf"},
		h.s.Controller.Selector().Chosen())
}

func TestREPL_ChooseRequiresPrecis(t *testing.T) {
	h := newREPLHarness(t)

	out := h.play(t, "/choisir 1", "/choisir 9")
	assert.Contains(t, out, msgNeedPrecis)
	assert.Empty(t, h.s.Controller.Selector().Chosen())
}

func TestREPL_NoSelectionSendsNothing(t *testing.T) {
	h := newREPLHarness(t)

	out := h.play(t, "/precis", "Bonjour")
	assert.Contains(t, out, dispatch.MsgNoSelection)
	assert.NotContains(t, out, dispatch.MsgLoading)
	assert.Zero(t, h.srv.Count(backendtest.PathAsk))
}

func TestREPL_UnknownSlashWordIsAQuestion(t *testing.T) {
	h := newREPLHarness(t)

	h.play(t, "/bonjour polly")
	req, ok := h.srv.Last(backendtest.PathAsk)
	require.True(t, ok)
	assert.Equal(t, "/bonjour polly", req.Question)
}

func TestREPL_QuizAnswering(t *testing.T) {
	h := newREPLHarness(t)

	out := h.play(t,
		"/rep 1 a",
		"Un QCM sur la géographie",
		"/rep 1 b",
		"/rep 1 a",
		"/rep 2 z",
		"/rep 2 a",
		"/qcm",
		"/fermer",
		"/qcm",
	)
	assert.Contains(t, out, msgNoQuiz)
	assert.Contains(t, out, msgQuizHint)
	assert.Contains(t, out, "📝 QCM de test\n─", "title underlined")
	assert.Contains(t, out, "✔ b) Paris")
	assert.Contains(t, out, "✅ Bonne réponse")
	assert.Contains(t, out, "Paris est la capitale.")
	assert.Contains(t, out, "la question 1 a déjà une réponse")
	assert.Contains(t, out, "choix invalide : z")
	assert.Contains(t, out, "✘ a) 3")
	assert.Contains(t, out, "❌ Mauvaise réponse.")
	assert.Contains(t, out, "QCM terminé : 2/2 répondues")
	assert.Nil(t, h.s.Controller.Board())
	assert.Zero(t, h.srv.Count(backendtest.PathAsk), "quiz requests never hit /ask")
}

func TestREPL_SheetFlow(t *testing.T) {
	h := newREPLHarness(t)

	out := h.play(t, "/fiche", "/precis", "/choisir droit", "/fiche", "/ouvrir", "/telecharger")
	assert.Contains(t, out, dispatch.MsgSheetNeedsDocs)
	assert.Contains(t, out, dispatch.MsgSheetReady)
	assert.Equal(t, 1, h.srv.Count(backendtest.PathSheet))

	require.Len(t, h.opened, 1)
	_, err := os.Stat(h.opened[0])
	assert.NoError(t, err, "the preview copy exists")

	files, _ := filepath.Glob(filepath.Join(h.s.Config.DownloadsDir(), "*.pdf"))
	require.Len(t, files, 1)
	assert.Contains(t, out, msgSheetSaved+files[0])
}

func TestREPL_SheetActionsWithoutSheet(t *testing.T) {
	h := newREPLHarness(t)

	out := h.play(t, "/ouvrir", "/telecharger")
	assert.Equal(t, 2, strings.Count(out, msgNoSheet))
	assert.Empty(t, h.opened)
}

func TestREPL_Export(t *testing.T) {
	h := newREPLHarness(t)

	out := h.play(t, "/export", "Bonjour", "/export json", "/export pdf")
	assert.Contains(t, out, "Rien à exporter")
	assert.Contains(t, out, msgExported)
	assert.Contains(t, out, "[Erreur]")

	files, _ := filepath.Glob(filepath.Join(h.s.Config.ExportDir(), "*.json"))
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Réponse à : Bonjour")
}

func TestREPL_InterruptCancelsRequestInFlight(t *testing.T) {
	h := newREPLHarness(t)
	h.srv.Block()

	assert.False(t, h.r.interrupt(), "nothing to cancel at the prompt")

	go func() {
		for h.srv.Count(backendtest.PathAsk) == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		h.r.interrupt()
	}()

	h.r.ask(context.Background(), "Bonjour")
	assert.Contains(t, h.out.String(), dispatch.MsgCancelled)
	assert.Zero(t, h.s.Controller.InFlight())
	assert.False(t, h.r.interrupt())
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/polly-tui/internal/config"
	"github.com/jeranaias/polly-tui/internal/dispatch"
	"github.com/jeranaias/polly-tui/internal/export"
	"github.com/jeranaias/polly-tui/internal/selector"
	"github.com/jeranaias/polly-tui/internal/sheet"
	"github.com/jeranaias/polly-tui/internal/view"
)

func newChatCommand(f *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "chat",
		Aliases: []string{"repl"},
		Short:   "Conversation en mode ligne (historique, commandes /)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, f)
		},
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one line of user input. io.EOF or liner.ErrPromptAborted
// end the session.
type lineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads the saved history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// repl is the line-based conversation loop. Requests run synchronously;
// SIGINT cancels the one in flight.
type repl struct {
	s    *Session
	in   lineReader
	out  io.Writer
	p    *printer
	open func(path string) error

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newREPL(s *Session, in lineReader, out io.Writer) *repl {
	return &repl{
		s:    s,
		in:   in,
		out:  out,
		p:    newPrinter(out, s, false),
		open: sheet.Open,
	}
}

func runChat(cmd *cobra.Command, f *GlobalFlags) error {
	if err := requireTTY(); err != nil {
		return err
	}
	s, err := openSession(cmd, f)
	if err != nil {
		return err
	}
	defer s.Close()

	in := NewChatCLI()
	defer in.Close()
	r := newREPL(s, in, cmd.OutOrStdout())

	// Ctrl+C at the prompt is handled by liner; during a request it arrives
	// as a signal and cancels that request only.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()
	go func() {
		for range sigChan {
			r.interrupt()
		}
	}()

	return r.run(cmd.Context(), f.Docs)
}

// interrupt cancels the request in flight. It reports whether there was one.
func (r *repl) interrupt() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	r.cancel = nil
	return true
}

// begin derives the context of one request.
func (r *repl) begin(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	return ctx, func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}
}

// run loops until /quit, Ctrl+C at the prompt or end of input.
func (r *repl) run(ctx context.Context, docs []string) error {
	if err := r.welcome(ctx, docs); err != nil {
		return err
	}

	for {
		input, err := r.in.ReadInput(r.prompt())
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
				r.s.Logger.Warn("read input", zap.Error(err))
			}
			fmt.Fprintln(r.out)
			r.goodbye()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		handled, quit, err := r.handleSlashCommand(ctx, input)
		if err != nil {
			fmt.Fprintf(r.out, "%s %v\n", ErrorStyle.Render("[Erreur]"), err)
		}
		if quit {
			r.goodbye()
			return nil
		}
		if handled {
			continue
		}

		r.ask(ctx, input)
	}
}

func (r *repl) prompt() string {
	sel := r.s.Controller.Selector()
	if sel.Mode() == selector.ModeGlobal {
		return "polly[global]> "
	}
	return fmt.Sprintf("polly[%d cours]> ", len(sel.Chosen()))
}

func (r *repl) welcome(ctx context.Context, docs []string) error {
	fmt.Fprintln(r.out, TitleStyle.Render("🦜 Polly")+" "+DimStyle.Render(r.s.Config.Server.BaseURL))

	if list, err := r.s.loadCatalog(ctx, false); err != nil {
		fmt.Fprintln(r.out, WarningStyle.Render(msgCatalogFailed))
	} else {
		fmt.Fprintln(r.out, InfoStyle.Render(fmt.Sprintf(msgCatalogLoaded, len(list))))
	}
	if err := r.s.selectDocuments(docs); err != nil {
		return err
	}
	r.status()
	fmt.Fprintln(r.out, DimStyle.Render("Tapez /aide pour la liste des commandes, Ctrl+D pour quitter."))
	fmt.Fprintln(r.out)
	return nil
}

func (r *repl) goodbye() {
	fmt.Fprintf(r.out, "%s\n", DimStyle.Render(fmt.Sprintf("À bientôt ! %d message(s) échangé(s).", r.s.Controller.Log().TurnCount())))
}

func (r *repl) status() {
	st := r.s.Controller.Selector().Status()
	if st.Warning {
		fmt.Fprintln(r.out, WarningStyle.Render(st.Text))
		return
	}
	fmt.Fprintln(r.out, InfoStyle.Render(st.Text))
}

// ask submits one question or quiz request and prints the outcome.
func (r *repl) ask(parent context.Context, input string) {
	ctrl := r.s.Controller
	p, err := ctrl.Submit(input)
	if err != nil {
		r.p.flush(ctrl.Log())
		return
	}
	r.p.skip(ctrl.Log())
	fmt.Fprintln(r.out, DimStyle.Render(dispatch.MsgLoading))

	ctx, done := r.begin(parent)
	out := dispatch.Execute(ctx, r.s.Client, *p)
	done()

	ctrl.Resolve(out)
	r.p.flush(ctrl.Log())
	if out.Err == nil && p.Route == dispatch.RouteQuiz {
		r.p.quiz(ctrl.Board())
		fmt.Fprintln(r.out, DimStyle.Render(msgQuizHint))
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// User-visible texts owned by the CLI.
const (
	msgCatalogFailed = "⚠️ Impossible de charger la liste des cours. Le mode global reste disponible."
	msgCatalogLoaded = "📚 %d cours disponibles."
	msgQuizHint      = "Répondez avec /rep <question> <lettre>, par exemple /rep 1 b."
	msgNoQuiz        = "Aucun QCM en cours. Demandez un « QCM » pour vous entraîner."
	msgNoSheet       = "Aucune fiche de révision pour l'instant (/fiche pour en générer une)."
	msgSheetSaved    = "📥 Fiche enregistrée : "
	msgSheetOpened   = "Fiche ouverte : "
	msgExported      = "💾 Conversation exportée : "
	msgExportEmpty   = "Rien à exporter : la conversation est vide."
	msgNeedPrecis    = "passez en mode précis avec /precis pour choisir des cours"
)

const replHelp = `Commandes :
  /docs [refresh]        liste les cours (refresh : recharge depuis le serveur)
  /filtre [texte]        filtre la liste des cours
  /global, /precis       change le mode de sélection
  /choisir <n|nom>...    coche ou décoche des cours (mode précis)
  /fiche                 génère la fiche de révision des cours choisis
  /ouvrir, /telecharger  ouvre ou enregistre la dernière fiche
  /qcm                   réaffiche le QCM en cours
  /rep <n> <lettre>      répond à la question n du QCM
  /fermer                ferme le QCM
  /export [md|json]      exporte la conversation
  /quit                  quitte
Demandez un « QCM », un « quiz » ou un « test » pour vous entraîner.`

// handleSlashCommand runs input if it names a known command. Anything else,
// including an unknown "/word", is sent as a question.
func (r *repl) handleSlashCommand(ctx context.Context, input string) (handled, quit bool, err error) {
	if !strings.HasPrefix(input, "/") {
		return false, false, nil
	}
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/", "/help", "/aide", "/h", "/?":
		fmt.Fprintln(r.out, replHelp)
	case "/docs", "/cours":
		refresh := len(args) > 0 && (strings.EqualFold(args[0], "refresh") || strings.EqualFold(args[0], "recharger"))
		err = r.listDocuments(ctx, refresh)
	case "/filtre", "/filter":
		r.s.Controller.Selector().SetFilter(strings.Join(args, " "))
		err = r.listDocuments(ctx, false)
	case "/global":
		r.s.Controller.Selector().SetMode(selector.ModeGlobal)
		r.status()
	case "/precis", "/précis":
		r.s.Controller.Selector().SetMode(selector.ModePrecis)
		r.status()
	case "/choisir", "/doc":
		err = r.choose(args)
	case "/fiche", "/sheet":
		r.generateSheet(ctx)
	case "/ouvrir", "/open":
		err = r.openSheet()
	case "/telecharger", "/télécharger", "/enregistrer", "/save":
		err = r.saveSheet()
	case "/qcm", "/quiz":
		if r.s.Controller.Board() == nil {
			fmt.Fprintln(r.out, DimStyle.Render(msgNoQuiz))
		} else {
			r.p.quiz(r.s.Controller.Board())
		}
	case "/rep", "/r", "/answer":
		err = r.answer(args)
	case "/fermer", "/close":
		r.s.Controller.CloseQuiz()
	case "/export":
		err = r.export(args)
	case "/quit", "/quitter", "/exit", "/q":
		return true, true, nil
	default:
		return false, false, nil
	}
	return true, false, err
}

func (r *repl) listDocuments(ctx context.Context, refresh bool) error {
	if _, err := r.s.loadCatalog(ctx, refresh); err != nil {
		fmt.Fprintln(r.out, WarningStyle.Render(msgCatalogFailed))
		return nil
	}
	sel := r.s.Controller.Selector()
	items := sel.Visible()
	fmt.Fprintln(r.out, InfoStyle.Render(fmt.Sprintf(msgCatalogLoaded, len(sel.Catalog()))))
	if q := sel.Filter(); q != "" {
		fmt.Fprintln(r.out, DimStyle.Render(fmt.Sprintf("Filtre : %q (%d résultat(s))", q, len(items))))
	}
	for i, it := range items {
		fmt.Fprintf(r.out, "  %2d. %s %s\n", i+1, RenderMark(it.Chosen), it.Label)
	}
	r.status()
	return nil
}

// choose toggles documents given by number in the listed order or by name.
func (r *repl) choose(args []string) error {
	sel := r.s.Controller.Selector()
	if sel.Mode() != selector.ModePrecis {
		return errors.New(msgNeedPrecis)
	}
	if len(args) == 0 {
		return usagef("usage : /choisir <numéro|nom>...")
	}

	items := sel.Visible()
	for _, arg := range args {
		var id string
		if n, err := strconv.Atoi(arg); err == nil {
			if n < 1 || n > len(items) {
				return usagef("numéro hors liste : %d (voir /docs)", n)
			}
			id = items[n-1].ID
		} else {
			resolved, err := resolveDocument(sel.Catalog(), arg)
			if err != nil {
				return err
			}
			id = resolved
		}
		sel.Toggle(id)
		fmt.Fprintf(r.out, "  %s %s\n", RenderMark(sel.IsChosen(id)), selector.Label(id))
	}
	r.status()
	return nil
}

// generateSheet runs one revision sheet request. The trigger is re-enabled
// whatever happens to the request.
func (r *repl) generateSheet(parent context.Context) {
	ctrl := r.s.Controller
	req, err := ctrl.BeginSheet()
	if err != nil {
		r.p.flush(ctrl.Log())
		return
	}
	r.p.skip(ctrl.Log())
	fmt.Fprintln(r.out, DimStyle.Render(dispatch.MsgSheetLoading))

	ctx, done := r.begin(parent)
	out := dispatch.SheetOutcome{Request: *req, Err: context.Canceled}
	func() {
		defer func() {
			done()
			ctrl.FinishSheet(out)
		}()
		out = dispatch.ExecuteSheet(ctx, r.s.Client, *req)
	}()

	r.p.flush(ctrl.Log())
	if out.Err == nil {
		fmt.Fprintln(r.out, DimStyle.Render("/ouvrir pour la consulter, /telecharger pour l'enregistrer."))
	}
}

func (r *repl) openSheet() error {
	res := r.s.Controller.Sheet()
	if res == nil {
		return errors.New(msgNoSheet)
	}
	path, err := res.Materialize("")
	if err != nil {
		return err
	}
	if err := r.open(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintln(r.out, InfoStyle.Render(msgSheetOpened+path))
	return nil
}

func (r *repl) saveSheet() error {
	res := r.s.Controller.Sheet()
	if res == nil {
		return errors.New(msgNoSheet)
	}
	path, err := res.Save(r.s.Config.DownloadsDir())
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, SuccessStyle.Render(msgSheetSaved)+path)
	return nil
}

// answer grades "/rep <question> <choice>".
func (r *repl) answer(args []string) error {
	ctrl := r.s.Controller
	board := ctrl.Board()
	if board == nil {
		return errors.New(msgNoQuiz)
	}
	if len(args) != 2 {
		return usagef("usage : /rep <question> <lettre>, par exemple /rep 1 b")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > board.Len() {
		return usagef("question invalide : %s (1 à %d)", args[0], board.Len())
	}
	k := view.ChoiceIndex(args[1])

	if _, ok := ctrl.Answer(n-1, k); !ok {
		if board.Feedback(n - 1).Locked() {
			return usagef("la question %d a déjà une réponse", n)
		}
		return usagef("choix invalide : %s", args[1])
	}
	q := view.QuizPanel(board, n-1)
	r.p.question(q.Questions[n-1])
	if len(q.Open) == 0 {
		fmt.Fprintln(r.out, SuccessStyle.Render("QCM terminé : "+q.Progress()))
	}
	return nil
}

func (r *repl) export(args []string) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}
	t := export.NewTranscript(r.s.Controller.Log().History(), r.s.Controller.Selector().Selection())
	opts := &export.Options{
		OutputDir:         r.s.Config.ExportDir(),
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
	path, err := export.ExportToFile(t, export.NewExporter(format, opts), opts)
	if errors.Is(err, export.ErrEmptyTranscript) {
		return errors.New(msgExportEmpty)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, SuccessStyle.Render(msgExported)+path)
	return nil
}

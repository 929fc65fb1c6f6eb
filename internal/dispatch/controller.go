// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/polly-tui/internal/backend"
	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/quiz"
	"github.com/jeranaias/polly-tui/internal/selector"
	"github.com/jeranaias/polly-tui/internal/sheet"
)

// =============================================================================
// STATE
// =============================================================================

// State is the dispatcher state.
type State int

const (
	StateIdle State = iota
	StateAwaitingSelection
	StateSubmitting
	StateRenderAnswer
	StateRenderQuiz
	StateRenderError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAwaitingSelection:
		return "AWAITING_SELECTION"
	case StateSubmitting:
		return "SUBMITTING"
	case StateRenderAnswer:
		return "RENDER_ANSWER"
	case StateRenderQuiz:
		return "RENDER_QUIZ"
	case StateRenderError:
		return "RENDER_ERROR"
	default:
		return "UNKNOWN"
	}
}

// =============================================================================
// ERRORS AND MESSAGES
// =============================================================================

// Precondition violations. None of them issues a network call.
var (
	ErrEmptyInput      = errors.New("empty input")
	ErrNoSelection     = errors.New("no document selected")
	ErrGlobalSelection = errors.New("revision sheet requires specific documents")
	ErrSheetBusy       = errors.New("revision sheet already in progress")
)

// User-visible texts.
const (
	MsgLoading        = "⏳ Chargement..."
	MsgNoSelection    = "⚠️ Veuillez sélectionner un cours dans la liste avant de poser votre question."
	MsgConnection     = "❌ Erreur de connexion au serveur."
	MsgCancelled      = "⏹ Requête annulée."
	MsgQuizReady      = "📝 QCM généré !"
	MsgSheetNeedsDocs = "⚠️ Choisissez un ou plusieurs cours précis (mode PRECIS) pour générer une fiche de révision."
	MsgSheetLoading   = "⏳ Génération de la fiche de révision..."
	MsgSheetReady     = "📄 Fiche de révision prête : "
)

// UserMessage maps a request error to the notice shown in the conversation.
// Transport and malformed-response failures share one generic message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return MsgCancelled
	}
	if be, ok := backend.AsBackendError(err); ok {
		return "❌ " + be.Message
	}
	return MsgConnection
}

// failureKind names the error class for the log.
func failureKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case backend.IsTransport(err):
		return "transport"
	case backend.IsMalformed(err):
		return "malformed"
	}
	if _, ok := backend.AsBackendError(err); ok {
		return "backend"
	}
	return "other"
}

// =============================================================================
// BACKEND CONTRACT
// =============================================================================

// Backend is the subset of the HTTP client the dispatcher needs.
type Backend interface {
	Ask(ctx context.Context, question string, history []model.Turn, sel model.Selection) (string, error)
	GenerateQuiz(ctx context.Context, question string, sel model.Selection) (*model.Quiz, error)
	RevisionSheet(ctx context.Context, sel model.Selection) (*sheet.Resource, error)
}

// Pending is a submitted chat request awaiting its response. It is an
// immutable snapshot: Execute reads nothing else.
type Pending struct {
	ID            string
	Route         Route
	Question      string
	History       []model.Turn
	Selection     model.Selection
	PlaceholderID string
	Started       time.Time
}

// Outcome is the result of executing a Pending request.
type Outcome struct {
	Pending Pending
	Answer  string
	Quiz    *model.Quiz
	Err     error
}

// Execute performs the network call for p. It touches no controller state
// and may run on any goroutine.
func Execute(ctx context.Context, b Backend, p Pending) Outcome {
	out := Outcome{Pending: p}
	switch p.Route {
	case RouteQuiz:
		out.Quiz, out.Err = b.GenerateQuiz(ctx, p.Question, p.Selection)
	default:
		out.Answer, out.Err = b.Ask(ctx, p.Question, p.History, p.Selection)
	}
	return out
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the session. It is not safe for concurrent use.
type Controller struct {
	selector *selector.Selector
	log      *model.Log
	board    *quiz.Board

	state   State
	pending map[string]Pending

	sheetBusy bool
	sheet     *sheet.Resource

	logger *zap.Logger
}

// NewController creates a controller over sel and log. A nil logger
// disables logging.
func NewController(sel *selector.Selector, log *model.Log, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		selector: sel,
		log:      log,
		state:    StateIdle,
		pending:  make(map[string]Pending),
		logger:   logger.Named("dispatch"),
	}
}

// Selector returns the document selector.
func (c *Controller) Selector() *selector.Selector { return c.selector }

// Log returns the conversation log.
func (c *Controller) Log() *model.Log { return c.log }

// Board returns the current quiz board, or nil when no quiz is shown.
func (c *Controller) Board() *quiz.Board { return c.board }

// State returns the current dispatcher state.
func (c *Controller) State() State { return c.state }

// InFlight returns the number of chat requests awaiting a response.
func (c *Controller) InFlight() int { return len(c.pending) }

func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	c.logger.Debug("state", zap.Stringer("from", from), zap.Stringer("to", to))
}

// settle returns to IDLE, or stays SUBMITTING while requests are pending.
func (c *Controller) settle() {
	if len(c.pending) > 0 {
		c.transition(StateSubmitting)
		return
	}
	c.transition(StateIdle)
}

// Submit validates input against the current selection and, if accepted,
// appends the user Turn and a loading placeholder, then returns the request
// to execute.
//
// Empty input returns ErrEmptyInput and changes nothing. With no document
// selected exactly one warning notice is appended and ErrNoSelection is
// returned. An accepted quiz request discards the current quiz.
func (c *Controller) Submit(input string) (*Pending, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, ErrEmptyInput
	}

	sel := c.selector.Selection()
	if sel.IsNone() {
		c.transition(StateAwaitingSelection)
		c.log.AppendNotice(model.NoticeWarning, MsgNoSelection)
		c.logger.Info("submission rejected", zap.String("reason", "no selection"))
		c.settle()
		return nil, ErrNoSelection
	}

	route := Classify(text)
	if route == RouteQuiz {
		// The previous quiz is hidden as soon as a new one is requested.
		c.board = nil
	}
	c.log.AppendTurn(model.RoleUser, text)
	placeholder := c.log.AppendNotice(model.NoticeLoading, MsgLoading)

	p := Pending{
		ID:            uuid.NewString(),
		Route:         route,
		Question:      text,
		History:       c.log.History(),
		Selection:     sel,
		PlaceholderID: placeholder.ID,
		Started:       time.Now(),
	}
	c.pending[p.ID] = p
	c.transition(StateSubmitting)
	c.logger.Info("submitted",
		zap.String("request", p.ID),
		zap.Stringer("route", route),
		zap.Stringer("selection", sel),
		zap.Int("history", len(p.History)),
	)
	return &p, nil
}

// Resolve applies an Outcome: the placeholder is removed, then an assistant
// Turn (answer), a quiz board plus confirmation (quiz), or an error notice in
// the placeholder's slot is shown. Outcomes for unknown requests are
// ignored.
func (c *Controller) Resolve(out Outcome) {
	p, ok := c.pending[out.Pending.ID]
	if !ok {
		return
	}
	delete(c.pending, p.ID)
	elapsed := time.Since(p.Started)

	if out.Err != nil {
		c.transition(StateRenderError)
		c.log.ReplaceNotice(p.PlaceholderID, model.NoticeError, UserMessage(out.Err))
		c.logger.Warn("request failed",
			zap.String("request", p.ID),
			zap.Stringer("route", p.Route),
			zap.String("kind", failureKind(out.Err)),
			zap.Duration("elapsed", elapsed),
			zap.Error(out.Err),
		)
		c.settle()
		return
	}

	c.log.RemoveNotice(p.PlaceholderID)
	switch p.Route {
	case RouteQuiz:
		c.transition(StateRenderQuiz)
		if out.Quiz != nil {
			c.board = quiz.NewBoard(*out.Quiz)
		}
		c.log.AppendNotice(model.NoticeInfo, MsgQuizReady)
	default:
		c.transition(StateRenderAnswer)
		c.log.AppendTurn(model.RoleAssistant, out.Answer)
	}
	c.logger.Info("request completed",
		zap.String("request", p.ID),
		zap.Stringer("route", p.Route),
		zap.Duration("elapsed", elapsed),
	)
	c.settle()
}

// Run submits input, executes it and resolves it in one call. Precondition
// errors and request errors are returned; either way the log already shows
// the corresponding notice (except for empty input).
func (c *Controller) Run(ctx context.Context, b Backend, input string) error {
	p, err := c.Submit(input)
	if err != nil {
		return err
	}
	out := Execute(ctx, b, *p)
	c.Resolve(out)
	return out.Err
}

// =============================================================================
// QUIZ GRADING
// =============================================================================

// Answer grades choice k of question i on the current quiz. It returns false
// when there is no quiz, the indices are invalid, or the question is locked.
func (c *Controller) Answer(i, k int) (quiz.Feedback, bool) {
	if c.board == nil {
		return quiz.Feedback{Question: i, Chosen: -1}, false
	}
	fb, ok := c.board.Select(i, k)
	if ok {
		c.logger.Debug("quiz answer", zap.Int("question", i), zap.Int("choice", k), zap.Stringer("outcome", fb.Outcome))
	}
	return fb, ok
}

// CloseQuiz discards the current quiz.
func (c *Controller) CloseQuiz() {
	c.board = nil
}

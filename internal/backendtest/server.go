// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backendtest runs an in-process fake of the tutoring backend.
//
// The fake answers the four endpoints with canned but realistic payloads and
// records every request it receives, so tests can assert both what was sent
// and that nothing was sent at all.
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jeranaias/polly-tui/internal/model"
)

// Paths served by the fake.
const (
	PathDocuments = "/documents"
	PathAsk       = "/ask"
	PathQuiz      = "/generate-qcm"
	PathSheet     = "/generate-revision-sheet"
)

// DefaultDocuments is the catalog served unless SetDocuments is called.
var DefaultDocuments = []string{
	"Introduction_Science_Politique.pdf",
	"Droit_Constitutionnel.pdf",
	"Relations_Internationales.pdf",
}

// DefaultQuiz is the quiz body served by /generate-qcm.
const DefaultQuiz = `{
  "title": "QCM de test",
  "questions": [
    {"question": "Capitale de la France ?", "choices": ["Lyon", "Paris", "Marseille"], "correct": 1, "explanation": "Paris est la capitale."},
    {"question": "2 + 2 ?", "choices": ["3", "4"], "correct": 1, "explanation": "Arithmétique."}
  ]
}`

// SheetBytes is the fake PDF served by /generate-revision-sheet.
var SheetBytes = []byte("%PDF-1.4\n% polly test sheet\n")

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	// Question and Document hold the form fields, or the JSON members for /ask.
	Question string
	Document string
	// RawDocument is the undecoded JSON "document" member of /ask.
	RawDocument json.RawMessage
	History     []model.Turn
}

// Response overrides an endpoint.
type Response struct {
	Status      int
	ContentType string
	Header      map[string]string
	Body        string
}

// Server is the fake backend.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []Request
	documents []string
	overrides map[string]Response
	answer    func(question string, history []model.Turn) string
	block     chan struct{}
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		documents: append([]string(nil), DefaultDocuments...),
		overrides: make(map[string]Response),
		answer: func(question string, _ []model.Turn) string {
			return "Réponse à : " + question
		},
	}

	r := chi.NewRouter()
	r.Get(PathDocuments, s.handleDocuments)
	r.Post(PathAsk, s.handleAsk)
	r.Post(PathQuiz, s.handleQuiz)
	r.Post(PathSheet, s.handleSheet)

	s.Server = httptest.NewServer(r)
	t.Cleanup(func() {
		s.Unblock()
		s.Close()
	})
	return s
}

// SetDocuments replaces the served catalog.
func (s *Server) SetDocuments(docs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append([]string(nil), docs...)
}

// SetAnswer replaces the /ask responder.
func (s *Server) SetAnswer(fn func(question string, history []model.Turn) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answer = fn
}

// Override makes path return resp verbatim.
func (s *Server) Override(path string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = resp
}

// Block makes every handler wait until Unblock is called, after recording
// the request.
func (s *Server) Block() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.block == nil {
		s.block = make(chan struct{})
	}
}

// Unblock releases blocked handlers.
func (s *Server) Unblock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.block != nil {
		close(s.block)
		s.block = nil
	}
}

// Requests returns a copy of the recorded calls.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many calls hit path.
func (s *Server) Count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent call to path.
func (s *Server) Last(path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	s.record(Request{Method: r.Method, Path: PathDocuments})
	if s.writeOverride(w, PathDocuments) {
		return
	}
	s.mu.Lock()
	docs := append([]string(nil), s.documents...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string          `json:"question"`
		History  []model.Turn    `json:"history"`
		Document json.RawMessage `json:"document"`
	}
	raw, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "bad request", "details": err.Error()})
		return
	}

	var doc string
	if err := json.Unmarshal(body.Document, &doc); err != nil {
		var ids []string
		if json.Unmarshal(body.Document, &ids) == nil {
			doc = strings.Join(ids, ",")
		}
	}
	s.record(Request{
		Method:      r.Method,
		Path:        PathAsk,
		Question:    body.Question,
		Document:    doc,
		RawDocument: body.Document,
		History:     body.History,
	})
	if s.writeOverride(w, PathAsk) {
		return
	}

	s.mu.Lock()
	answer := s.answer
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer(body.Question, body.History)})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "formulaire invalide"})
		return
	}
	s.record(Request{
		Method:   r.Method,
		Path:     PathQuiz,
		Question: r.FormValue("question"),
		Document: r.FormValue("document"),
	})
	if s.writeOverride(w, PathQuiz) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, DefaultQuiz)
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "formulaire invalide"})
		return
	}
	doc := r.FormValue("document")
	s.record(Request{Method: r.Method, Path: PathSheet, Document: doc})
	if s.writeOverride(w, PathSheet) {
		return
	}

	first := strings.TrimSpace(strings.Split(doc, ",")[0])
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=Fiche_%s.pdf", strings.ReplaceAll(first, " ", "_")))
	w.WriteHeader(http.StatusOK)
	w.Write(SheetBytes)
}

// record stores the request, then waits while the server is blocked.
func (s *Server) record(req Request) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
}

func (s *Server) writeOverride(w http.ResponseWriter, path string) bool {
	s.mu.Lock()
	resp, ok := s.overrides[path]
	s.mu.Unlock()
	if !ok {
		return false
	}
	for k, v := range resp.Header {
		w.Header().Set(k, v)
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	io.WriteString(w, resp.Body)
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

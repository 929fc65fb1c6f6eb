// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/quiz"
	"github.com/jeranaias/polly-tui/internal/sheet"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is where the backend listens in development.
	DefaultBaseURL = "http://localhost:8000"

	// MaxResponseSize caps JSON bodies.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024

	// MaxSheetSize caps revision sheet downloads.
	MaxSheetSize = 64 * 1024 * 1024

	// GlobalDocument is the wire sentinel for the all-documents scope.
	GlobalDocument = "GLOBAL"

	// snippetSize bounds how much of a bad body goes into the log.
	snippetSize = 200
)

// Operation names used in errors and logs.
const (
	OpDocuments     = "documents"
	OpAsk           = "ask"
	OpGenerateQuiz  = "generate-qcm"
	OpRevisionSheet = "generate-revision-sheet"
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Every Client shares one transport; timeouts are per Client.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// Client talks to the tutoring backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for baseURL with no request timeout.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: sharedTransport},
		logger:     zap.NewNop(),
	}
}

// WithTimeout bounds each request. Zero means no timeout; cancellation then
// only comes from the caller's context.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient = &http.Client{Transport: c.httpClient.Transport, Timeout: timeout}
	return c
}

// WithLogger sets the logger. A nil logger disables logging.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger.Named("backend")
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Documents fetches the document catalog.
func (c *Client) Documents(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", OpDocuments, err)
	}
	req.Header.Set("Accept", "application/json")

	status, body, _, err := c.do(OpDocuments, req, MaxResponseSize)
	if err != nil {
		return nil, err
	}
	if err := checkJSON(OpDocuments, status, body); err != nil {
		return nil, err
	}

	docs := gjson.GetBytes(body, "documents")
	if !docs.IsArray() {
		return nil, malformed(OpDocuments, status, body, fmt.Errorf("missing documents array"))
	}
	out := make([]string, 0, len(docs.Array()))
	for _, d := range docs.Array() {
		if d.Type == gjson.String && d.Str != "" {
			out = append(out, d.Str)
		}
	}
	return out, nil
}

// askRequest is the JSON body of POST /ask.
type askRequest struct {
	Question string       `json:"question"`
	History  []model.Turn `json:"history"`
	Document any          `json:"document"`
}

// Ask sends a question with the full history and returns the answer text.
func (c *Client) Ask(ctx context.Context, question string, history []model.Turn, sel model.Selection) (string, error) {
	doc, err := documentField(sel)
	if err != nil {
		return "", fmt.Errorf("%s: %w", OpAsk, err)
	}
	if history == nil {
		history = []model.Turn{}
	}

	payload, err := json.Marshal(askRequest{Question: question, History: history, Document: doc})
	if err != nil {
		return "", fmt.Errorf("%s: marshal request: %w", OpAsk, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", OpAsk, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, _, err := c.do(OpAsk, req, MaxResponseSize)
	if err != nil {
		return "", err
	}
	if err := checkJSON(OpAsk, status, body); err != nil {
		return "", err
	}

	answer := gjson.GetBytes(body, "answer")
	if answer.Type != gjson.String || strings.TrimSpace(answer.Str) == "" {
		return "", malformed(OpAsk, status, body, fmt.Errorf("missing answer field"))
	}
	return answer.Str, nil
}

// GenerateQuiz asks the backend for a quiz on question over sel.
func (c *Client) GenerateQuiz(ctx context.Context, question string, sel model.Selection) (*model.Quiz, error) {
	doc, err := joinedDocuments(sel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpGenerateQuiz, err)
	}

	req, err := c.newFormRequest(ctx, "/generate-qcm", map[string]string{
		"question": question,
		"document": doc,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpGenerateQuiz, err)
	}

	status, body, _, err := c.do(OpGenerateQuiz, req, MaxResponseSize)
	if err != nil {
		return nil, err
	}
	// The generator sometimes wraps its JSON; only reject on status or
	// {"error"} here and let quiz.Decode repair the rest.
	if gjson.ValidBytes(body) {
		if err := checkJSON(OpGenerateQuiz, status, body); err != nil {
			return nil, err
		}
	} else if status < 200 || status > 299 {
		return nil, &BackendError{Op: OpGenerateQuiz, Status: status, Message: http.StatusText(status)}
	}

	q, err := quiz.Decode(body)
	if err != nil {
		return nil, malformed(OpGenerateQuiz, status, body, err)
	}
	return q, nil
}

// RevisionSheet downloads the revision sheet for a specific selection.
func (c *Client) RevisionSheet(ctx context.Context, sel model.Selection) (*sheet.Resource, error) {
	if sel.IsGlobal() {
		return nil, fmt.Errorf("%s: %w", OpRevisionSheet, ErrGlobalSelection)
	}
	doc, err := joinedDocuments(sel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpRevisionSheet, err)
	}

	req, err := c.newFormRequest(ctx, "/generate-revision-sheet", map[string]string{"document": doc})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpRevisionSheet, err)
	}

	status, body, header, err := c.do(OpRevisionSheet, req, MaxSheetSize)
	if err != nil {
		return nil, err
	}

	contentType := header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if status < 200 || status > 299 || mediaType == "application/json" {
		if gjson.ValidBytes(body) {
			if err := checkJSON(OpRevisionSheet, status, body); err != nil {
				return nil, err
			}
		}
		if status < 200 || status > 299 {
			return nil, &BackendError{Op: OpRevisionSheet, Status: status, Message: http.StatusText(status)}
		}
		return nil, malformed(OpRevisionSheet, status, body, fmt.Errorf("expected a document, got JSON"))
	}
	if len(body) == 0 {
		return nil, malformed(OpRevisionSheet, status, body, sheet.ErrEmpty)
	}

	return sheet.NewResource(filenameFrom(header), mediaType, body, sel.IDs()), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// do sends req and reads at most limit bytes of the body. Any failure before
// the body is fully read is a *TransportError.
func (c *Client) do(op string, req *http.Request, limit int64) (int, []byte, http.Header, error) {
	start := time.Now()
	// CLOUD: Secure logging - path and method only, never the question text
	c.logger.Debug("request", zap.String("op", op), zap.String("method", req.Method), zap.String("path", req.URL.Path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return 0, nil, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, limit)
	if err != nil {
		c.logger.Warn("read failed", zap.String("op", op), zap.Int("status", resp.StatusCode), zap.Error(err))
		return 0, nil, nil, &TransportError{Op: op, Err: err}
	}

	c.logger.Info("response",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.StatusCode, body, resp.Header, nil
}

// readLimited reads the body with a size cap.
// SECURITY: Response size limit prevents memory exhaustion.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", limit)
	}
	return body, nil
}

// checkJSON turns an invalid body, an {"error"} payload, or a non-2xx status
// into a typed error.
func checkJSON(op string, status int, body []byte) error {
	if !gjson.ValidBytes(body) {
		if status < 200 || status > 299 {
			return &BackendError{Op: op, Status: status, Message: http.StatusText(status)}
		}
		return malformed(op, status, body, fmt.Errorf("body is not JSON"))
	}
	if msg := gjson.GetBytes(body, "error"); msg.Exists() && msg.String() != "" {
		return &BackendError{
			Op:      op,
			Status:  status,
			Message: msg.String(),
			Details: gjson.GetBytes(body, "details").String(),
		}
	}
	if status < 200 || status > 299 {
		return &BackendError{Op: op, Status: status, Message: http.StatusText(status)}
	}
	return nil
}

func malformed(op string, status int, body []byte, err error) *MalformedResponseError {
	snippet := string(body)
	if len(snippet) > snippetSize {
		snippet = snippet[:snippetSize]
	}
	return &MalformedResponseError{Op: op, Status: status, Snippet: snippet, Err: err}
}

// newFormRequest builds a multipart/form-data POST, as a browser FormData
// submission would.
func (c *Client) newFormRequest(ctx context.Context, path string, fields map[string]string) (*http.Request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	// Stable field order keeps request bodies reproducible in tests
	for _, name := range []string{"question", "document"} {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, nil
}

// filenameFrom extracts the attachment file name, if any.
func filenameFrom(h http.Header) string {
	cd := h.Get("Content-Disposition")
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	return params["filename"]
}

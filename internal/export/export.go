// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/util"
)

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("transcript has no turns")

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the exported view of a session.
type Transcript struct {
	Title     string
	Selection model.Selection
	Turns     []model.Turn
	Exported  time.Time
}

// NewTranscript copies turns so later appends to the log do not leak into
// the export. The title is taken from the first user question.
func NewTranscript(turns []model.Turn, sel model.Selection) *Transcript {
	t := &Transcript{
		Selection: sel,
		Turns:     append([]model.Turn(nil), turns...),
		Exported:  time.Now(),
	}
	for _, turn := range t.Turns {
		if turn.Role == model.RoleUser {
			t.Title = firstLine(turn.Content)
			break
		}
	}
	if t.Title == "" {
		t.Title = "Conversation Polly"
	}
	return t
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return util.TruncateWidth(s, 60)
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a transcript to one file format.
type Exporter interface {
	Export(t *Transcript) ([]byte, error)

	// FileExtension includes the dot (".md").
	FileExtension() string

	MimeType() string
}

// Format names an export format on the command line.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// ParseFormat accepts "md", "markdown" and "json". An empty string means
// Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use md or json)", s)
	}
}

// NewExporter returns the exporter for f.
func NewExporter(f Format, opts *Options) Exporter {
	if f == FormatJSON {
		return NewJSONExporter(opts)
	}
	return NewMarkdownExporter(opts)
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// IncludeMetadata adds the front matter and the selection summary.
	IncludeMetadata bool

	// IncludeTimestamps adds a time to each turn heading.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile writes t to a new file in opts.OutputDir and returns its path.
// An existing file is never overwritten.
func ExportToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if t == nil || len(t.Turns) == 0 {
		return "", ErrEmptyTranscript
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("polly_%s_%s%s",
		util.SanitizeFilename(t.Title),
		t.Exported.Format("20060102_150405"),
		exporter.FileExtension(),
	)
	path := util.UniquePath(filepath.Join(opts.OutputDir, filename))
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}

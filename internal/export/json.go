// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts to JSON. Timestamps are always included.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type jsonTranscript struct {
	Title     string     `json:"title"`
	Selection string     `json:"selection,omitempty"`
	Documents []string   `json:"documents,omitempty"`
	Exported  time.Time  `json:"exported"`
	Turns     []jsonTurn `json:"turns"`
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil || len(t.Turns) == 0 {
		return nil, ErrEmptyTranscript
	}

	out := jsonTranscript{
		Title:    t.Title,
		Exported: t.Exported,
		Turns:    make([]jsonTurn, len(t.Turns)),
	}
	if e.options.IncludeMetadata {
		out.Selection = t.Selection.Kind().String()
		out.Documents = t.Selection.IDs()
	}
	for i, turn := range t.Turns {
		out.Turns[i] = jsonTurn{
			Role:      turn.Role.String(),
			Content:   turn.Content,
			Timestamp: turn.Timestamp,
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}

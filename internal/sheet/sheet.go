// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sheet

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/polly-tui/internal/util"
)

// DefaultContentType is assumed when the backend sends none.
const DefaultContentType = "application/pdf"

// ErrEmpty is returned when saving a resource without data.
var ErrEmpty = errors.New("revision sheet is empty")

// Resource is a generated revision sheet.
type Resource struct {
	Name        string
	ContentType string
	Data        []byte
	Documents   []string
	CreatedAt   time.Time

	mu        sync.Mutex
	transient string
}

// NewResource builds a Resource. An empty name is derived from the first
// document ("Fiche_<doc>.pdf"), an empty content type defaults to PDF.
func NewResource(name, contentType string, data []byte, documents []string) *Resource {
	if strings.TrimSpace(name) == "" {
		name = DefaultName(documents)
	}
	if contentType == "" {
		contentType = DefaultContentType
	}
	docs := make([]string, len(documents))
	copy(docs, documents)
	return &Resource{
		Name:        util.SanitizeFilename(filepath.Base(name)),
		ContentType: contentType,
		Data:        data,
		Documents:   docs,
		CreatedAt:   time.Now(),
	}
}

// DefaultName returns the file name the backend uses for a sheet over docs.
func DefaultName(docs []string) string {
	first := "document"
	if len(docs) > 0 && strings.TrimSpace(docs[0]) != "" {
		first = docs[0]
	}
	return "Fiche_" + strings.ReplaceAll(strings.TrimSpace(first), " ", "_") + ".pdf"
}

// Size returns the payload size in bytes.
func (r *Resource) Size() int {
	return len(r.Data)
}

// HumanSize formats the payload size for display.
func (r *Resource) HumanSize() string {
	n := float64(len(r.Data))
	switch {
	case n < 1024:
		return fmt.Sprintf("%d o", len(r.Data))
	case n < 1024*1024:
		return fmt.Sprintf("%.1f Ko", n/1024)
	default:
		return fmt.Sprintf("%.1f Mo", n/(1024*1024))
	}
}

// Materialize writes the transient copy used for preview, once, and returns
// its path. Later calls return the same path. dir may be empty to use the
// OS temp directory.
func (r *Resource) Materialize(dir string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.transient != "" {
		if _, err := os.Stat(r.transient); err == nil {
			return r.transient, nil
		}
	}
	if len(r.Data) == 0 {
		return "", ErrEmpty
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "polly")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create preview directory: %w", err)
	}

	ext := filepath.Ext(r.Name)
	f, err := os.CreateTemp(dir, strings.TrimSuffix(r.Name, ext)+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create preview file: %w", err)
	}
	if _, err := f.Write(r.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write preview file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close preview file: %w", err)
	}

	r.transient = f.Name()
	return r.transient, nil
}

// Save writes a durable copy into dir and returns its path. An existing file
// with the same name is never overwritten.
func (r *Resource) Save(dir string) (string, error) {
	if len(r.Data) == 0 {
		return "", ErrEmpty
	}
	if dir == "" {
		dir = "."
	}
	path := util.UniquePath(filepath.Join(dir, r.Name))
	if err := util.AtomicWriteFile(path, r.Data, 0644); err != nil {
		return "", fmt.Errorf("save revision sheet: %w", err)
	}
	return path, nil
}

// Release removes the transient preview file, if any.
func (r *Resource) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transient == "" {
		return nil
	}
	err := os.Remove(r.transient)
	r.transient = ""
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open hands path to the platform's default viewer without waiting for it.
func Open(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		// Empty quoted title so start treats path as the target
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

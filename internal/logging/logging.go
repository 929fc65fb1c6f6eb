// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger polly writes to.
//
// The TUI owns the terminal, so records go to a rotating JSON file. The REPL
// may add a console core on stderr.
package logging

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// File is the log path. Empty disables the file core.
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	// Console, when non-nil, receives human-readable records too.
	Console io.Writer
}

// New returns a logger and a flush function to call before exit.
func New(opts Options) (*zap.Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var cores []zapcore.Core
	var rotator *lumberjack.Logger

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     30,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderConfig()),
			zapcore.AddSync(rotator),
			level,
		))
	}

	if opts.Console != nil {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(enc),
			zapcore.Lock(zapcore.AddSync(opts.Console)),
			level,
		))
	}

	if len(cores) == 0 {
		return zap.NewNop(), func() {}, nil
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	flush := func() {
		_ = logger.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
	return logger.Named("polly"), flush, nil
}

// ParseLevel accepts debug, info, warn and error. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// =============================================================================
// READING
// =============================================================================

// Entry is one decoded line of the log file. Fields holds every key except
// the fixed ones and the caller.
type Entry struct {
	Timestamp string
	Level     string
	Logger    string
	Message   string
	Fields    map[string]any
}

var fixedKeys = map[string]bool{
	"timestamp": true,
	"level":     true,
	"logger":    true,
	"message":   true,
	"caller":    true,
}

// parseEntry decodes one JSON record. ok is false for anything that is not a
// JSON object, such as a line cut short by rotation.
func parseEntry(line []byte) (e Entry, ok bool) {
	if !gjson.ValidBytes(line) {
		return Entry{}, false
	}
	rec := gjson.ParseBytes(line)
	if !rec.IsObject() {
		return Entry{}, false
	}
	e = Entry{
		Timestamp: rec.Get("timestamp").String(),
		Level:     rec.Get("level").String(),
		Logger:    rec.Get("logger").String(),
		Message:   rec.Get("message").String(),
		Fields:    map[string]any{},
	}
	rec.ForEach(func(key, value gjson.Result) bool {
		if !fixedKeys[key.String()] {
			e.Fields[key.String()] = value.Value()
		}
		return true
	})
	return e, true
}

// Tail returns the last limit entries of the log file at path, newest first,
// optionally restricted to level (e.g. "WARN"). A missing file yields no
// entries.
func Tail(path, level string, limit int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	level = strings.ToUpper(level)
	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		e, ok := parseEntry(scanner.Bytes())
		if !ok {
			continue
		}
		if level != "" && e.Level != level {
			continue
		}
		entries = append(entries, e)
		if limit > 0 && len(entries) > limit {
			entries = entries[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

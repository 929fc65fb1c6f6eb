// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/sheet"
)

// =============================================================================
// REVISION SHEETS
// =============================================================================

// SheetRequest is an accepted revision sheet request.
type SheetRequest struct {
	ID            string
	Selection     model.Selection
	PlaceholderID string
	Started       time.Time
}

// SheetOutcome is the result of executing a SheetRequest.
type SheetOutcome struct {
	Request  SheetRequest
	Resource *sheet.Resource
	Err      error
}

// ExecuteSheet performs the network call for req. It touches no controller
// state and may run on any goroutine.
func ExecuteSheet(ctx context.Context, b Backend, req SheetRequest) SheetOutcome {
	res, err := b.RevisionSheet(ctx, req.Selection)
	return SheetOutcome{Request: req, Resource: res, Err: err}
}

// SheetBusy reports whether a revision sheet request is in flight. The
// trigger must be disabled while it is true.
func (c *Controller) SheetBusy() bool {
	return c.sheetBusy
}

// Sheet returns the last generated revision sheet, if any.
func (c *Controller) Sheet() *sheet.Resource {
	return c.sheet
}

// BeginSheet checks the preconditions and marks the trigger busy.
//
// A GLOBAL or empty selection appends one warning notice and returns
// ErrGlobalSelection or ErrNoSelection. A second call while busy returns
// ErrSheetBusy without touching the log. Every successful BeginSheet must be
// paired with FinishSheet.
func (c *Controller) BeginSheet() (*SheetRequest, error) {
	if c.sheetBusy {
		return nil, ErrSheetBusy
	}

	sel := c.selector.Selection()
	if sel.Kind() != model.SelectionDocuments {
		c.log.AppendNotice(model.NoticeWarning, MsgSheetNeedsDocs)
		c.logger.Info("revision sheet rejected", zap.Stringer("selection", sel))
		if sel.IsGlobal() {
			return nil, ErrGlobalSelection
		}
		return nil, ErrNoSelection
	}

	c.sheetBusy = true
	placeholder := c.log.AppendNotice(model.NoticeLoading, MsgSheetLoading)
	req := &SheetRequest{
		ID:            uuid.NewString(),
		Selection:     sel,
		PlaceholderID: placeholder.ID,
		Started:       time.Now(),
	}
	c.logger.Info("revision sheet requested", zap.String("request", req.ID), zap.Stringer("selection", sel))
	return req, nil
}

// FinishSheet re-enables the trigger and shows the outcome. It must run
// whatever happened to the request, so callers defer it.
func (c *Controller) FinishSheet(out SheetOutcome) {
	c.sheetBusy = false

	if out.Err != nil || out.Resource == nil {
		err := out.Err
		if err == nil {
			err = sheet.ErrEmpty
		}
		c.log.ReplaceNotice(out.Request.PlaceholderID, model.NoticeError, UserMessage(err))
		c.logger.Warn("revision sheet failed",
			zap.String("request", out.Request.ID),
			zap.String("kind", failureKind(err)),
			zap.Error(err),
		)
		return
	}

	if c.sheet != nil && c.sheet != out.Resource {
		if err := c.sheet.Release(); err != nil {
			c.logger.Debug("release previous sheet", zap.Error(err))
		}
	}
	c.sheet = out.Resource
	c.log.ReplaceNotice(out.Request.PlaceholderID, model.NoticeInfo,
		MsgSheetReady+out.Resource.Name+" ("+out.Resource.HumanSize()+")")
	c.logger.Info("revision sheet ready",
		zap.String("request", out.Request.ID),
		zap.String("name", out.Resource.Name),
		zap.Int("bytes", out.Resource.Size()),
		zap.Duration("elapsed", time.Since(out.Request.Started)),
	)
}

// GenerateSheet runs a whole revision sheet request synchronously. The
// trigger is re-enabled on every path out, panics included.
func (c *Controller) GenerateSheet(ctx context.Context, b Backend) (*sheet.Resource, error) {
	req, err := c.BeginSheet()
	if err != nil {
		return nil, err
	}

	out := SheetOutcome{Request: *req, Err: context.Canceled}
	defer func() { c.FinishSheet(out) }()

	out = ExecuteSheet(ctx, b, *req)
	return out.Resource, out.Err
}

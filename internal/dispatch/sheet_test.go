// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/polly-tui/internal/backendtest"
	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/selector"
	"github.com/jeranaias/polly-tui/internal/sheet"
)

// panicBackend blows up inside the request.
type panicBackend struct{}

func (panicBackend) Ask(context.Context, string, []model.Turn, model.Selection) (string, error) {
	panic("ask")
}

func (panicBackend) GenerateQuiz(context.Context, string, model.Selection) (*model.Quiz, error) {
	panic("quiz")
}

func (panicBackend) RevisionSheet(context.Context, model.Selection) (*sheet.Resource, error) {
	panic("sheet")
}

func TestGenerateSheet_RejectsWithoutSpecificDocuments(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(h *harness)
		wantErr error
	}{
		{
			name:    "global",
			setup:   func(h *harness) {},
			wantErr: ErrGlobalSelection,
		},
		{
			name:    "none",
			setup:   func(h *harness) { h.precis() },
			wantErr: ErrNoSelection,
		},
		{
			name: "global with documents still marked",
			setup: func(h *harness) {
				h.precis(backendtest.DefaultDocuments[0])
				h.ctrl.Selector().SetMode(selector.ModeGlobal)
			},
			wantErr: ErrGlobalSelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			res, err := h.ctrl.GenerateSheet(context.Background(), h.client)

			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, h.srv.Count(backendtest.PathSheet))
			assert.False(t, h.ctrl.SheetBusy())
			warnings := notices(h.ctrl.Log(), model.NoticeWarning)
			require.Len(t, warnings, 1)
			assert.Equal(t, MsgSheetNeedsDocs, warnings[0].Text)
		})
	}
}

func TestGenerateSheet_Success(t *testing.T) {
	h := newHarness(t)
	h.precis(backendtest.DefaultDocuments[2], backendtest.DefaultDocuments[0])

	res, err := h.ctrl.GenerateSheet(context.Background(), h.client)
	require.NoError(t, err)

	assert.Equal(t, 1, h.srv.Count(backendtest.PathSheet))
	req, _ := h.srv.Last(backendtest.PathSheet)
	assert.Equal(t, backendtest.DefaultDocuments[2]+","+backendtest.DefaultDocuments[0], req.Document)

	assert.False(t, h.ctrl.SheetBusy())
	assert.Same(t, res, h.ctrl.Sheet())
	assert.Equal(t, "Fiche_Relations_Internationales.pdf.pdf", res.Name)
	assert.Equal(t, backendtest.SheetBytes, res.Data)

	assert.Empty(t, notices(h.ctrl.Log(), model.NoticeLoading))
	info := notices(h.ctrl.Log(), model.NoticeInfo)
	require.Len(t, info, 1)
	assert.True(t, strings.HasPrefix(info[0].Text, MsgSheetReady))
	assert.Contains(t, info[0].Text, res.Name)
	assert.Zero(t, h.ctrl.Log().TurnCount(), "sheets stay out of the history")
}

func TestGenerateSheet_FailureReenables(t *testing.T) {
	tests := []struct {
		name    string
		resp    backendtest.Response
		wantMsg string
	}{
		{
			name:    "backend error",
			resp:    backendtest.Response{Status: http.StatusNotFound, ContentType: "application/json", Body: `{"error": "Aucun contenu trouvé."}`},
			wantMsg: "❌ Aucun contenu trouvé.",
		},
		{
			name:    "empty body",
			resp:    backendtest.Response{ContentType: "application/pdf"},
			wantMsg: MsgConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.precis(backendtest.DefaultDocuments[0])
			h.srv.Override(backendtest.PathSheet, tt.resp)

			_, err := h.ctrl.GenerateSheet(context.Background(), h.client)
			require.Error(t, err)

			assert.Equal(t, 1, h.srv.Count(backendtest.PathSheet))
			assert.False(t, h.ctrl.SheetBusy())
			assert.Nil(t, h.ctrl.Sheet())
			errs := notices(h.ctrl.Log(), model.NoticeError)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantMsg, errs[0].Text)

			// The trigger works again.
			h.srv.Override(backendtest.PathSheet, backendtest.Response{
				ContentType: "application/pdf",
				Body:        string(backendtest.SheetBytes),
			})
			_, err = h.ctrl.GenerateSheet(context.Background(), h.client)
			require.NoError(t, err)
			assert.Equal(t, 2, h.srv.Count(backendtest.PathSheet))
		})
	}
}

func TestGenerateSheet_TransportFailure(t *testing.T) {
	h := newHarness(t)
	h.precis(backendtest.DefaultDocuments[0])
	h.srv.Close()

	_, err := h.ctrl.GenerateSheet(context.Background(), h.client)
	require.Error(t, err)
	assert.False(t, h.ctrl.SheetBusy())
	assert.Equal(t, MsgConnection, notices(h.ctrl.Log(), model.NoticeError)[0].Text)
}

func TestGenerateSheet_ReenabledAfterPanic(t *testing.T) {
	h := newHarness(t)
	h.precis(backendtest.DefaultDocuments[0])

	assert.Panics(t, func() {
		h.ctrl.GenerateSheet(context.Background(), panicBackend{})
	})
	assert.False(t, h.ctrl.SheetBusy())
	assert.Empty(t, notices(h.ctrl.Log(), model.NoticeLoading))
}

func TestBeginSheet_BusyGuard(t *testing.T) {
	h := newHarness(t)
	h.precis(backendtest.DefaultDocuments[0])

	req, err := h.ctrl.BeginSheet()
	require.NoError(t, err)
	assert.True(t, h.ctrl.SheetBusy())
	before := h.ctrl.Log().Len()

	_, err = h.ctrl.BeginSheet()
	assert.ErrorIs(t, err, ErrSheetBusy)
	assert.Equal(t, before, h.ctrl.Log().Len(), "a rejected duplicate leaves the log alone")

	h.ctrl.FinishSheet(ExecuteSheet(context.Background(), h.client, *req))
	assert.False(t, h.ctrl.SheetBusy())
	assert.Equal(t, 1, h.srv.Count(backendtest.PathSheet))
}

func TestFinishSheet_ReleasesPrevious(t *testing.T) {
	h := newHarness(t)
	h.precis(backendtest.DefaultDocuments[0])

	first, err := h.ctrl.GenerateSheet(context.Background(), h.client)
	require.NoError(t, err)
	path, err := first.Materialize(t.TempDir())
	require.NoError(t, err)
	require.FileExists(t, path)

	second, err := h.ctrl.GenerateSheet(context.Background(), h.client)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Same(t, second, h.ctrl.Sheet())
	assert.NoFileExists(t, path)
}

func TestGenerateSheet_DoesNotDisturbChat(t *testing.T) {
	h := newHarness(t)
	h.precis(backendtest.DefaultDocuments[1])

	p, err := h.ctrl.Submit("Explique la Ve République")
	require.NoError(t, err)

	_, err = h.ctrl.GenerateSheet(context.Background(), h.client)
	require.NoError(t, err)
	assert.Equal(t, StateSubmitting, h.ctrl.State())

	h.ctrl.Resolve(Execute(context.Background(), h.client, *p))
	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.Equal(t, 2, h.ctrl.Log().TurnCount())
}

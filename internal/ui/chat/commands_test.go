// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/polly-tui/internal/backendtest"
	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/selector"
)

func TestCommand_Help(t *testing.T) {
	m, f := newTestModel(t)

	m, cmd := send(m, "/aide")

	assert.Nil(t, cmd)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, []string{helpText}, notices(m, model.NoticeInfo))
	assert.Zero(t, m.ctrl.Log().TurnCount(), "commands are not questions")
	assert.Zero(t, f.srv.Count(backendtest.PathAsk))
}

func TestCommand_Modes(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(m, "/precis")
	assert.Equal(t, selector.ModePrecis, m.ctrl.Selector().Mode())

	m, _ = send(m, "/GLOBAL")
	assert.Equal(t, selector.ModeGlobal, m.ctrl.Selector().Mode())
}

func TestCommand_Docs(t *testing.T) {
	m, f := newTestModel(t)
	m.ctrl.Selector().SetMode(selector.ModePrecis)
	m.ctrl.Selector().Toggle(backendtest.DefaultDocuments[0])

	m, _ = send(m, "/docs")
	info := notices(m, model.NoticeInfo)
	require.Len(t, info, 1)
	assert.Contains(t, info[0], "📚 3 cours disponibles.")
	assert.Contains(t, info[0], "[x] Introduction_Science_Politique")
	assert.Contains(t, info[0], "[ ] Droit_Constitutionnel")

	m, cmd := send(m, "/docs refresh")
	drive(m, cmd)
	assert.Equal(t, 2, f.srv.Count(backendtest.PathDocuments))
}

func TestCommand_UnknownIsAQuestion(t *testing.T) {
	m, f := newTestModel(t)

	m, cmd := send(m, "/etc/passwd ?")
	m = drive(m, cmd)

	assert.Equal(t, 1, f.srv.Count(backendtest.PathAsk))
	assert.Equal(t, "/etc/passwd ?", m.ctrl.Log().History()[0].Content)
}

func TestCommand_Export(t *testing.T) {
	m, f := newTestModel(t)

	m, cmd := send(m, "/export")
	m = drive(m, cmd)
	assert.Equal(t, []string{msgExportEmpty}, notices(m, model.NoticeWarning))

	m, cmd = send(m, "Qu'est-ce que l'ONU ?")
	m = drive(m, cmd)

	m, cmd = send(m, "/export json")
	m = drive(m, cmd)

	var exported string
	for _, text := range notices(m, model.NoticeInfo) {
		if strings.HasPrefix(text, msgExported) {
			exported = strings.TrimPrefix(text, msgExported)
		}
	}
	require.NotEmpty(t, exported)
	assert.Equal(t, f.exports, filepath.Dir(exported))

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	var doc struct {
		Turns []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Turns, 2)
	assert.Equal(t, "Qu'est-ce que l'ONU ?", doc.Turns[0].Content)
}

func TestCommand_ExportBadFormat(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := send(m, "/export pdf")

	assert.Nil(t, cmd)
	errs := notices(m, model.NoticeError)
	require.Len(t, errs, 1)
	assert.True(t, strings.HasPrefix(errs[0], msgExportFailed))
}

func TestCommand_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := send(m, "/quit")

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCancelManager(t *testing.T) {
	cm := newCancelManager()
	a := cm.add(context.Background(), "a")
	b := cm.add(context.Background(), "b")
	assert.Equal(t, 2, cm.len())

	cm.done("a")
	cm.done("unknown")
	assert.ErrorIs(t, a.Err(), context.Canceled)
	assert.NoError(t, b.Err())
	assert.Equal(t, 1, cm.len())

	assert.Equal(t, 1, cm.cancelAll())
	assert.ErrorIs(t, b.Err(), context.Canceled)
	assert.Zero(t, cm.cancelAll())
}

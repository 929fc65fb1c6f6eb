// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package selector

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/polly-tui/internal/model"
)

var testCatalog = []string{
	"Introduction_Science_Politique.pdf",
	"Droit_Constitutionnel.pdf",
	"Économie_Publique.pdf",
	"Relations_Internationales.pdf",
}

func TestNew_StartsGlobal(t *testing.T) {
	s := New(testCatalog)

	assert.Equal(t, ModeGlobal, s.Mode())
	assert.True(t, s.Selection().IsGlobal())
	assert.False(t, s.ListShown())
	assert.False(t, s.Status().Warning)
	assert.Contains(t, s.Status().Text, "global")
}

func TestSetMode_PrecisWithNothingChosenWarns(t *testing.T) {
	s := New(testCatalog)
	s.SetMode(ModePrecis)

	assert.True(t, s.ListShown())
	assert.True(t, s.Selection().IsNone())
	assert.True(t, s.Status().Warning)
	assert.Contains(t, s.Status().Text, "Aucun cours")
}

func TestToggle_IgnoredInGlobalMode(t *testing.T) {
	s := New(testCatalog)

	assert.False(t, s.Toggle(testCatalog[0]))
	assert.False(t, s.IsChosen(testCatalog[0]))
	assert.True(t, s.Selection().IsGlobal())
}

func TestToggle_AddAndRemove(t *testing.T) {
	s := New(testCatalog)
	s.SetMode(ModePrecis)

	require.True(t, s.Toggle(testCatalog[1]))
	assert.Equal(t, model.DocumentsSelection(testCatalog[1]), s.Selection())
	assert.Equal(t, "📘 Cours sélectionné : Droit_Constitutionnel", s.Status().Text)

	require.True(t, s.Toggle(testCatalog[2]))
	assert.Equal(t, []string{testCatalog[1], testCatalog[2]}, s.Selection().IDs())
	assert.Equal(t, "📘 2 cours sélectionnés", s.Status().Text)
	assert.Equal(t, 2, s.Status().Count)

	require.True(t, s.Toggle(testCatalog[1]))
	require.True(t, s.Toggle(testCatalog[2]))
	assert.True(t, s.Selection().IsNone())
	assert.True(t, s.Status().Warning)
}

func TestGlobalPreservesChosenSet(t *testing.T) {
	s := New(testCatalog)
	s.SetMode(ModePrecis)
	s.Toggle(testCatalog[0])
	s.Toggle(testCatalog[3])

	s.SetMode(ModeGlobal)
	assert.True(t, s.Selection().IsGlobal())
	assert.Equal(t, []string{testCatalog[0], testCatalog[3]}, s.Chosen())

	s.SetMode(ModePrecis)
	assert.Equal(t, []string{testCatalog[0], testCatalog[3]}, s.Selection().IDs())
}

// Any toggle sequence leaves exactly the IDs toggled an odd number of times.
func TestToggle_OddCountProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		s := New(testCatalog)
		s.SetMode(ModePrecis)
		counts := make(map[string]int)

		steps := rng.Intn(20)
		for i := 0; i < steps; i++ {
			id := testCatalog[rng.Intn(len(testCatalog))]
			s.Toggle(id)
			counts[id]++
		}

		var want []string
		for id, n := range counts {
			if n%2 == 1 {
				want = append(want, id)
			}
		}

		sel := s.Selection()
		if len(want) == 0 {
			require.True(t, sel.IsNone(), "run %d", run)
			continue
		}
		got := sel.IDs()
		sort.Strings(got)
		sort.Strings(want)
		require.Equal(t, want, got, "run %d", run)
	}
}

func TestFilter_OnlyChangesVisibility(t *testing.T) {
	s := New(testCatalog)
	s.SetMode(ModePrecis)
	s.Toggle(testCatalog[0])

	s.SetFilter("ÉCONOMIE")
	visible := s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, testCatalog[2], visible[0].ID)
	assert.Equal(t, "Économie_Publique", visible[0].Label)
	assert.False(t, visible[0].Chosen)

	// The hidden chosen document is still selected.
	assert.Equal(t, []string{testCatalog[0]}, s.Selection().IDs())

	s.SetFilter("")
	assert.Len(t, s.Visible(), len(testCatalog))
	assert.True(t, s.Visible()[0].Chosen)
}

func TestFilter_MatchesLabelNotExtension(t *testing.T) {
	s := New(testCatalog)
	s.SetFilter("pdf")
	assert.Empty(t, s.Visible())

	s.SetFilter("  droit ")
	assert.Len(t, s.Visible(), 1)
}

func TestSetCatalog_KeepsChosen(t *testing.T) {
	s := New(testCatalog)
	s.SetMode(ModePrecis)
	s.Toggle("ancien_cours.pdf")

	s.SetCatalog([]string{"a.pdf", "a.pdf", "", "b.pdf"})

	assert.Equal(t, []string{"a.pdf", "b.pdf"}, s.Catalog())
	assert.Equal(t, []string{"ancien_cours.pdf"}, s.Selection().IDs())
}

func TestSnapshot(t *testing.T) {
	s := New(testCatalog)
	s.SetMode(ModePrecis)
	s.Toggle(testCatalog[1])
	s.SetFilter("droit")

	snap := s.Snapshot()
	assert.Equal(t, ModePrecis, snap.Mode)
	assert.True(t, snap.ListShown)
	assert.Equal(t, "droit", snap.Filter)
	assert.Equal(t, len(testCatalog), snap.Total)
	require.Len(t, snap.Items, 1)
	assert.True(t, snap.Items[0].Chosen)
	assert.Equal(t, s.Status(), snap.Status)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"global", ModeGlobal, false},
		{"GLOBAL", ModeGlobal, false},
		{"precis", ModePrecis, false},
		{"Précis", ModePrecis, false},
		{"bogus", ModeGlobal, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Route
	}{
		{"qcm_uppercase", "Fais-moi un QCM sur les dérivées", RouteQuiz},
		{"quiz_lowercase", "un petit quiz sur la Ve République ?", RouteQuiz},
		{"test_prefix", "Teste mes connaissances", RouteQuiz},
		{"test_word", "Je veux un TEST", RouteQuiz},
		{"substring_match", "une attestation de réussite", RouteQuiz},
		{"mixed_case", "QuIz", RouteQuiz},
		{"plain_question", "Explique les dérivées", RouteAnswer},
		{"empty", "", RouteAnswer},
		{"accents_only", "Qu'est-ce que l'État de droit ?", RouteAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.input); got != tt.expected {
				t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRoute_String(t *testing.T) {
	if RouteQuiz.String() != "quiz" || RouteAnswer.String() != "answer" {
		t.Errorf("unexpected route names: %s %s", RouteQuiz, RouteAnswer)
	}
}

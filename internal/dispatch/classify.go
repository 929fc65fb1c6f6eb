// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"strings"

	"github.com/jeranaias/polly-tui/internal/util"
)

// Route is the backend operation an input is sent to.
type Route int

const (
	// RouteAnswer asks for a plain answer (/ask).
	RouteAnswer Route = iota
	// RouteQuiz asks for a generated quiz (/generate-qcm).
	RouteQuiz
)

// String returns the route name.
func (r Route) String() string {
	if r == RouteQuiz {
		return "quiz"
	}
	return "answer"
}

// quizKeywords trigger quiz generation anywhere in the input.
var quizKeywords = []string{"qcm", "quiz", "test"}

// Classify routes text by keyword. Any occurrence of "qcm", "quiz" or "test"
// (ignoring case, inside words too) selects RouteQuiz. This is a heuristic:
// "attestation" goes to the quiz path and nobody treats that as an error.
func Classify(text string) Route {
	folded := util.Fold(text)
	for _, kw := range quizKeywords {
		if strings.Contains(folded, kw) {
			return RouteQuiz
		}
	}
	return RouteAnswer
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// QUIZ TYPES
// =============================================================================

// Quiz is a generated multiple-choice quiz. It lives in the quiz panel only
// and is never added to the conversation history.
type Quiz struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizQuestion is one question of a Quiz. Correct is the index into Choices
// of the right answer; -1 when the backend omitted it.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// Answerable reports whether the question has choices to pick from.
func (q QuizQuestion) Answerable() bool {
	return len(q.Choices) > 0
}

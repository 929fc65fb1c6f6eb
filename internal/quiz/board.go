// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package quiz

import "github.com/jeranaias/polly-tui/internal/model"

// Outcome is the grading state of one question.
type Outcome int

const (
	Unanswered Outcome = iota
	Correct
	Incorrect
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unanswered"
	}
}

// Feedback is what a question shows after grading.
type Feedback struct {
	// Question is the 0-based question index.
	Question int
	// Chosen is the picked choice index, -1 while unanswered.
	Chosen  int
	Outcome Outcome
	// Explanation is revealed only once the question is locked.
	Explanation string
}

// Locked reports whether the question has been answered.
func (f Feedback) Locked() bool {
	return f.Outcome != Unanswered
}

// Message returns the feedback line shown under the question.
func (f Feedback) Message() string {
	switch f.Outcome {
	case Correct:
		return "✅ Bonne réponse"
	case Incorrect:
		return "❌ Mauvaise réponse."
	default:
		return ""
	}
}

// Board holds one quiz and the per-question answers. It is not safe for
// concurrent use.
type Board struct {
	quiz    model.Quiz
	answers []int
}

// NewBoard starts grading q with every question unanswered.
func NewBoard(q model.Quiz) *Board {
	questions := make([]model.QuizQuestion, len(q.Questions))
	for i, question := range q.Questions {
		choices := make([]string, len(question.Choices))
		copy(choices, question.Choices)
		question.Choices = choices
		questions[i] = question
	}

	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = -1
	}
	return &Board{
		quiz:    model.Quiz{Title: q.Title, Questions: questions},
		answers: answers,
	}
}

// Title returns the quiz title.
func (b *Board) Title() string {
	return b.quiz.Title
}

// Len returns the number of questions.
func (b *Board) Len() int {
	return len(b.quiz.Questions)
}

// Question returns question i.
func (b *Board) Question(i int) model.QuizQuestion {
	return b.quiz.Questions[i]
}

// Select records choice k for question i. The first valid pick locks the
// question; any later pick, an out-of-range index, or a question without
// choices leaves the board unchanged and returns false.
func (b *Board) Select(i, k int) (Feedback, bool) {
	if i < 0 || i >= len(b.quiz.Questions) {
		return Feedback{Question: i, Chosen: -1}, false
	}
	q := b.quiz.Questions[i]
	if b.answers[i] >= 0 || k < 0 || k >= len(q.Choices) {
		return b.Feedback(i), false
	}
	b.answers[i] = k
	return b.Feedback(i), true
}

// Feedback returns the current grading state of question i.
func (b *Board) Feedback(i int) Feedback {
	if i < 0 || i >= len(b.quiz.Questions) {
		return Feedback{Question: i, Chosen: -1}
	}
	fb := Feedback{Question: i, Chosen: b.answers[i]}
	if fb.Chosen < 0 {
		return fb
	}
	q := b.quiz.Questions[i]
	if fb.Chosen == q.Correct {
		fb.Outcome = Correct
	} else {
		fb.Outcome = Incorrect
	}
	fb.Explanation = q.Explanation
	return fb
}

// Answered returns how many questions are locked.
func (b *Board) Answered() int {
	n := 0
	for _, a := range b.answers {
		if a >= 0 {
			n++
		}
	}
	return n
}

// Unanswered returns the 1-based numbers of answerable questions still open.
func (b *Board) Unanswered() []int {
	var open []int
	for i, a := range b.answers {
		if a < 0 && b.quiz.Questions[i].Answerable() {
			open = append(open, i+1)
		}
	}
	return open
}

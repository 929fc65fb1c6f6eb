// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package quiz

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jeranaias/polly-tui/internal/model"
)

// Placeholder texts for fields the generator left out.
const (
	DefaultTitle    = "QCM"
	MissingQuestion = "Question manquante"
)

var (
	// ErrNotJSON means no JSON object could be recovered from the body.
	ErrNotJSON = errors.New("quiz body is not a JSON object")
	// ErrNoQuestions means the object has no usable questions array.
	ErrNoQuestions = errors.New("quiz has no questions")
)

var (
	fencePattern         = regexp.MustCompile("```(?:json)?")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	curlyQuotes          = strings.NewReplacer("“", `"`, "”", `"`)
)

// Normalize cleans up the usual LLM artifacts around a JSON object: code
// fences, typographic double quotes, trailing commas, and prose before the
// first '{' or after the last '}'.
func Normalize(raw string) string {
	text := fencePattern.ReplaceAllString(raw, "")
	text = curlyQuotes.Replace(text)
	text = trailingCommaPattern.ReplaceAllString(text, "$1")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// Decode parses a quiz body. Missing titles and question texts get
// placeholders, a missing or unparseable correct index becomes -1 (nothing
// is ever graded correct), and choices that are not an array are dropped so
// the question renders as unanswerable.
func Decode(body []byte) (*model.Quiz, error) {
	text := string(body)
	if !gjson.Valid(text) {
		text = Normalize(text)
		if !gjson.Valid(text) {
			return nil, ErrNotJSON
		}
	}

	root := gjson.Parse(text)
	if !root.IsObject() {
		return nil, ErrNotJSON
	}

	questions := root.Get("questions")
	if !questions.IsArray() || len(questions.Array()) == 0 {
		return nil, ErrNoQuestions
	}

	quiz := &model.Quiz{Title: strings.TrimSpace(root.Get("title").String())}
	if quiz.Title == "" {
		quiz.Title = DefaultTitle
	}

	for _, q := range questions.Array() {
		quiz.Questions = append(quiz.Questions, decodeQuestion(q))
	}
	return quiz, nil
}

func decodeQuestion(q gjson.Result) model.QuizQuestion {
	out := model.QuizQuestion{
		Question:    strings.TrimSpace(q.Get("question").String()),
		Explanation: strings.TrimSpace(q.Get("explanation").String()),
		Correct:     decodeIndex(q.Get("correct")),
	}
	if out.Question == "" {
		out.Question = MissingQuestion
	}

	if choices := q.Get("choices"); choices.IsArray() {
		for _, c := range choices.Array() {
			out.Choices = append(out.Choices, c.String())
		}
	}
	if out.Correct < 0 || out.Correct >= len(out.Choices) {
		out.Correct = -1
	}
	return out
}

// decodeIndex accepts 2, 2.0 and "2".
func decodeIndex(r gjson.Result) int {
	switch r.Type {
	case gjson.Number:
		if r.Num != float64(int(r.Num)) {
			return -1
		}
		return int(r.Num)
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil {
			return -1
		}
		return n
	default:
		return -1
	}
}

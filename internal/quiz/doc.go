// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quiz decodes generated quizzes and grades answers locally.
//
// Grading never talks to the backend. Each question locks on its first
// answer: the chosen choice is marked correct or incorrect against the
// stored index and the explanation is revealed. Later picks on a locked
// question are ignored. There is no aggregate score.
package quiz

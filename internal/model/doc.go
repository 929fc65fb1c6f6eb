// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the conversation client.
//
// # Key Types
//
//   - Turn: one immutable user or assistant message, sent back as history
//   - Notice: a display-only line (loading placeholder, warning, error, info)
//   - Log: the ordered, append-only transcript of Turns and Notices
//   - Selection: tagged document scope (none, global, or explicit documents)
//   - Quiz / QuizQuestion: a generated multiple-choice quiz
//
// # Usage
//
//	log := model.NewLog(0) // 0 = keep every turn
//	log.AppendTurn(model.RoleUser, "Explique les dérivées")
//	placeholder := log.AppendNotice(model.NoticeLoading, "Chargement...")
//	...
//	log.RemoveNotice(placeholder.ID)
//	log.AppendTurn(model.RoleAssistant, answer)
//	history := log.History()
package model

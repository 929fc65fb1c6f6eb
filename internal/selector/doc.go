// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package selector tracks which course documents are in scope for the next
// request.
//
// The selector has two mutually exclusive modes. In GLOBAL mode every
// document is searched and the document list is hidden. In PRECIS mode the
// user toggles documents on and off; the selection is the chosen set, or
// "none" when the set is empty. Switching back to GLOBAL keeps the chosen
// set so that returning to PRECIS restores it.
//
// The search filter only narrows which documents are listed. It never
// changes what is chosen.
//
// # Usage
//
//	sel := selector.New(catalogIDs)
//	sel.SetMode(selector.ModePrecis)
//	sel.Toggle("cours_droit.pdf")
//	scope := sel.Selection() // model.DocumentsSelection("cours_droit.pdf")
package selector

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sheet holds generated revision sheets.
//
// A Resource is the binary document returned by the backend. It offers two
// affordances over the same bytes: a preview, which materializes a transient
// file and hands it to the system viewer, and a download, which writes a
// durable copy into the downloads directory.
package sheet

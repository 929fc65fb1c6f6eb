// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
)

// =============================================================================
// CANCEL FUNCTION MANAGEMENT (THREAD-SAFE)
// =============================================================================

// cancelManager holds one cancel function per in-flight request.
// IMPORTANT: use it as a pointer in Model; Update returns model copies and
// the mutex must not be copied.
type cancelManager struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{cancels: make(map[string]context.CancelFunc)}
}

// add derives a cancellable context for request id.
func (cm *cancelManager) add(parent context.Context, id string) context.Context {
	ctx, cancel := context.WithCancel(parent)
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cancels[id] = cancel
	return ctx
}

// done releases the context of request id. Safe to call for unknown ids.
func (cm *cancelManager) done(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cancel, ok := cm.cancels[id]; ok {
		cancel()
		delete(cm.cancels, id)
	}
}

// cancelAll cancels every request and returns how many there were.
func (cm *cancelManager) cancelAll() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	n := len(cm.cancels)
	for id, cancel := range cm.cancels {
		cancel()
		delete(cm.cancels, id)
	}
	return n
}

func (cm *cancelManager) len() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.cancels)
}

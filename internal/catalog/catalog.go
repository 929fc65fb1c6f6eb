// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog caches the list of course documents served by the backend.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long a fetched catalog is trusted.
	DefaultTTL = 30 * time.Minute

	cacheKey        = "documents"
	cleanupInterval = 10 * time.Minute
)

// Lister fetches the catalog from the backend.
type Lister interface {
	Documents(ctx context.Context) ([]string, error)
}

// Catalog serves the document list from cache, fetching it on first use and
// after expiry.
type Catalog struct {
	lister Lister
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a Catalog. A non-positive ttl uses DefaultTTL.
func New(lister Lister, ttl time.Duration, logger *zap.Logger) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		lister: lister,
		cache:  cache.New(ttl, cleanupInterval),
		ttl:    ttl,
		logger: logger.Named("catalog"),
	}
}

// Documents returns the cached catalog, fetching it if absent or expired.
func (c *Catalog) Documents(ctx context.Context) ([]string, error) {
	if cached, ok := c.cache.Get(cacheKey); ok {
		return clone(cached.([]string)), nil
	}
	return c.Refresh(ctx)
}

// Refresh fetches the catalog unconditionally and replaces the cached copy.
// On failure the previous copy, if any, is left untouched.
func (c *Catalog) Refresh(ctx context.Context) ([]string, error) {
	docs, err := c.lister.Documents(ctx)
	if err != nil {
		c.logger.Warn("catalog fetch failed", zap.Error(err))
		return nil, fmt.Errorf("load documents: %w", err)
	}
	c.cache.Set(cacheKey, clone(docs), c.ttl)
	c.logger.Info("catalog loaded", zap.Int("documents", len(docs)))
	return clone(docs), nil
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

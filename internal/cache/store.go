// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache holds the template cache used by the view layer and the
// read de-duplicator that sits in front of template sources.
//
// The default Store is a bounded in-memory LRU (L1). Deployments running
// several processes can put a Valkey-backed L2 behind it with NewTiered so
// resolution metadata and raw partial bodies are shared.
package cache

import (
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the number of entries kept when no size is configured.
const DefaultSize = 100

// Store is the template cache contract. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Clear()
}

// LRU is a fixed-capacity Store that evicts the least recently used entry.
type LRU struct {
	c *lru.Cache[string, any]
}

// NewLRU creates an LRU holding at most size entries. A size of zero or
// less falls back to DefaultSize.
func NewLRU(size int) *LRU {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.NewWithEvict[string, any](size, func(key string, _ any) {
		slog.Debug("template cache evicted", "key", key)
	})
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &LRU{c: c}
}

// Get implements Store.
func (l *LRU) Get(key string) (any, bool) {
	return l.c.Get(key)
}

// Set implements Store.
func (l *LRU) Set(key string, value any) {
	l.c.Add(key, value)
}

// Clear implements Store.
func (l *LRU) Clear() {
	l.c.Purge()
	slog.Debug("template cache fully cleared")
}

// Len returns the number of cached entries.
func (l *LRU) Len() int {
	return l.c.Len()
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces every L2 entry.
	keyPrefix = "view:"

	// DefaultTTL is how long an L2 entry lives.
	DefaultTTL = 10 * time.Minute

	// opTimeout bounds each round trip to Valkey.
	opTimeout = 500 * time.Millisecond

	// L2 value encoding. Only strings and booleans are shared; compiled
	// templates cannot leave the process.
	stringTag = "s:"
	boolTag   = "b:"
)

// Tiered is a Store with an in-process L1 and a Valkey L2. Reads try L1
// first and promote L2 hits. Valkey errors are logged and treated as misses
// so a cache outage never fails a render.
type Tiered struct {
	l1     Store
	client *redis.Client
	ttl    time.Duration
}

// NewTiered layers client behind l1. A zero ttl means DefaultTTL.
func NewTiered(l1 Store, client *redis.Client, ttl time.Duration) *Tiered {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Tiered{l1: l1, client: client, ttl: ttl}
}

// Get implements Store.
func (t *Tiered) Get(key string) (any, bool) {
	if v, ok := t.l1.Get(key); ok {
		return v, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, err := t.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("template cache l2 get error", "key", key, "error", err)
		return nil, false
	}

	v, ok := decode(raw)
	if !ok {
		return nil, false
	}
	t.l1.Set(key, v)
	slog.Debug("template cache l2 hit", "key", key)
	return v, true
}

// Set implements Store.
func (t *Tiered) Set(key string, value any) {
	t.l1.Set(key, value)

	raw, ok := encode(value)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := t.client.Set(ctx, keyPrefix+key, raw, t.ttl).Err(); err != nil {
		slog.Warn("template cache l2 set error", "key", key, "error", err)
	}
}

// Clear implements Store. It removes all L2 entries by scanning for the prefix.
func (t *Tiered) Clear() {
	t.l1.Clear()

	ctx, cancel := context.WithTimeout(context.Background(), 10*opTimeout)
	defer cancel()

	var cursor uint64
	var deleted int
	for {
		keys, next, err := t.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("template cache l2 scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := t.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("template cache l2 bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("template cache l2 cleared", "deleted", deleted)
	}
}

func encode(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return stringTag + x, true
	case bool:
		if x {
			return boolTag + "1", true
		}
		return boolTag + "0", true
	default:
		return "", false
	}
}

func decode(raw string) (any, bool) {
	switch {
	case strings.HasPrefix(raw, stringTag):
		return raw[len(stringTag):], true
	case strings.HasPrefix(raw, boolTag):
		return raw[len(boolTag):] == "1", true
	default:
		return nil, false
	}
}

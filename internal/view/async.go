// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package view

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// resolveDeferred returns a copy of data with every Deferred value replaced
// by its result. Deferred values run concurrently; the first error wins.
func resolveDeferred(ctx context.Context, data Map) (Map, error) {
	var pending []string
	for k, v := range data {
		switch v.(type) {
		case Deferred, func(context.Context) (any, error):
			pending = append(pending, k)
		}
	}
	if len(pending) == 0 {
		return data, nil
	}

	out := make(Map, len(data))
	for k, v := range data {
		out[k] = v
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, key := range pending {
		var fn Deferred
		switch f := data[key].(type) {
		case Deferred:
			fn = f
		case func(context.Context) (any, error):
			fn = f
		}
		g.Go(func() error {
			v, err := fn(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			out[key] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package plugin registers a view engine on a server.App: it validates the
// options, builds the adapter and decorates the app and its replies.
package plugin

import (
	"context"
	"fmt"
	"sort"

	"viewkit/internal/engines"
	"viewkit/internal/server"
	"viewkit/internal/view"
)

// Register binds the single engine named in o.Engine to app. The renderer
// is attached to the app under o.PropertyName, and two reply decorations
// are added: a ViewFunc under PropertyName and a ViewAsyncFunc under
// AsyncPropertyName.
func Register(ctx context.Context, app *server.App, o view.Options) (*view.Renderer, error) {
	name, instance, err := engine(o.Engine)
	if err != nil {
		return nil, err
	}
	factory, ok := engines.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q, supported: %v", view.ErrUnsupportedEngine, name, engines.Names())
	}

	o = o.WithDefaults()
	if o.PropertyName == o.AsyncPropertyName {
		return nil, fmt.Errorf("%w: %q used for both view and async view", view.ErrPropertyConflict, o.PropertyName)
	}
	for _, prop := range []string{o.PropertyName, o.AsyncPropertyName} {
		if app.HasDecorator(prop) || app.HasReplyDecorator(prop) {
			return nil, fmt.Errorf("%w: %q is already decorated", view.ErrPropertyConflict, prop)
		}
	}

	b, err := view.NewBinding(name, o)
	if err != nil {
		return nil, err
	}
	adapter, err := factory(b, instance)
	if err != nil {
		return nil, err
	}
	r, err := view.NewRenderer(ctx, b, adapter)
	if err != nil {
		return nil, err
	}

	if err := app.Decorate(o.PropertyName, r); err != nil {
		return nil, fmt.Errorf("%w: %w", view.ErrPropertyConflict, err)
	}
	sync := server.ViewFunc(func(rep *server.Reply, page view.Page, data view.Map, opts *view.CallOptions) {
		r.ReplyView(rep, page, data, opts)
	})
	async := server.ViewAsyncFunc(func(rep *server.Reply, page view.Page, data view.Map, opts *view.CallOptions) (string, error) {
		return r.ReplyViewAsync(rep, page, data, opts)
	})
	if err := app.DecorateReply(o.PropertyName, sync); err != nil {
		return nil, fmt.Errorf("%w: %w", view.ErrPropertyConflict, err)
	}
	if err := app.DecorateReply(o.AsyncPropertyName, async); err != nil {
		return nil, fmt.Errorf("%w: %w", view.ErrPropertyConflict, err)
	}

	o.Logger.Info("view engine bound",
		"engine", name,
		"property", o.PropertyName,
		"async_property", o.AsyncPropertyName,
		"production", b.Production(),
	)
	return r, nil
}

// engine returns the single configured engine.
func engine(m map[string]any) (string, any, error) {
	switch len(m) {
	case 0:
		return "", nil, view.ErrMissingEngine
	case 1:
		for name, instance := range m {
			return name, instance, nil
		}
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return "", nil, fmt.Errorf("%w, got %v", view.ErrTooManyEngines, names)
}

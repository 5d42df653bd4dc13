// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mustache renders Mustache pages.
package mustache

import (
	"context"
	"fmt"

	"github.com/cbroglie/mustache"

	"viewkit/internal/view"
)

// Name is the engine key.
const Name = "mustache"

// Engine is the Mustache adapter.
type Engine struct {
	b *view.Binding
}

// New creates the adapter. Mustache takes no instance configuration.
func New(b *view.Binding, instance any) (view.Adapter, error) {
	if instance != nil {
		return nil, fmt.Errorf("%w: mustache engine takes no instance, got %T", view.ErrConfig, instance)
	}
	return &Engine{b: b}, nil
}

func (e *Engine) Name() string        { return Name }
func (e *Engine) Ext() string         { return "mustache" }
func (e *Engine) SupportsAsync() bool { return true }

// LayoutBody returns the page output; layouts include it with {{{body}}}.
func (e *Engine) LayoutBody(html string) any { return html }

// Render implements view.Adapter.
func (e *Engine) Render(ctx context.Context, call *view.Call) (string, error) {
	var (
		tpl *mustache.Template
		err error
	)
	switch p := call.Page.(type) {
	case view.Precompiled:
		return p(ctx, call.Data)

	case view.Raw:
		var partials map[string]string
		partials, err = e.b.LoadPartials(ctx, view.Describe(p), call)
		if err != nil {
			return "", err
		}
		if len(partials) == 0 {
			tpl, err = view.LoadRaw(e.b, p.Source, compiler(nil))
		} else {
			tpl, err = compiler(partials)(p.Source)
		}

	case view.ByPath:
		file := e.b.ResolvePage(string(p), e.Ext())
		var partials map[string]string
		partials, err = e.b.LoadPartials(ctx, file, call)
		if err != nil {
			return "", err
		}
		full := e.b.Path(file)
		key := full
		if len(partials) > 0 {
			key = full + "#" + view.PartialsKey(file, e.b.PartialsFor(call), call.RoutePath)
		}
		tpl, err = view.LoadAs(ctx, e.b, key, full, compiler(partials))

	default:
		return "", fmt.Errorf("%w: %T", view.ErrUnknownPageShape, call.Page)
	}
	if err != nil {
		return "", err
	}

	out, err := tpl.Render(call.Data)
	if err != nil {
		return "", fmt.Errorf("execute mustache template: %w", err)
	}
	return out, nil
}

func compiler(partials map[string]string) func(string) (*mustache.Template, error) {
	return func(src string) (*mustache.Template, error) {
		tpl, err := mustache.ParseStringPartials(src, &mustache.StaticProvider{Partials: partials})
		if err != nil {
			return nil, fmt.Errorf("parse mustache template: %w", err)
		}
		return tpl, nil
	}
}

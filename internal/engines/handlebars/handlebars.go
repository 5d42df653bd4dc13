// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlebars renders Handlebars pages with raymond.
package handlebars

import (
	"context"
	"fmt"

	"github.com/aymerick/raymond"

	"viewkit/internal/view"
)

// Name is the engine key.
const Name = "handlebars"

// Engine is the Handlebars adapter. Helpers are registered per template so
// several registrations can coexist in one process.
type Engine struct {
	b       *view.Binding
	helpers map[string]any
}

// New creates the adapter. instance may be nil or a map of helper funcs.
func New(b *view.Binding, instance any) (view.Adapter, error) {
	e := &Engine{b: b}
	switch x := instance.(type) {
	case nil:
	case map[string]any:
		e.helpers = x
	default:
		return nil, fmt.Errorf("%w: handlebars engine expects a helper map, got %T", view.ErrConfig, instance)
	}
	b.Configure(e.helpers)
	return e, nil
}

func (e *Engine) Name() string        { return Name }
func (e *Engine) Ext() string         { return "hbs" }
func (e *Engine) SupportsAsync() bool { return true }

// LayoutBody keeps {{body}} from being escaped a second time.
func (e *Engine) LayoutBody(html string) any { return raymond.SafeString(html) }

// Prepare reads the global partials up front in production so a missing
// one fails the registration instead of the first request.
func (e *Engine) Prepare(ctx context.Context) error {
	if !e.b.Production() {
		return nil
	}
	for name, file := range e.b.EngineOptions().Partials {
		if _, err := e.b.ReadTemplate(ctx, file); err != nil {
			return fmt.Errorf("%w: %w %s (%s): %w", view.ErrConfig, view.ErrMissingPartial, name, file, err)
		}
	}
	return nil
}

// Render implements view.Adapter.
func (e *Engine) Render(ctx context.Context, call *view.Call) (string, error) {
	var (
		tpl *raymond.Template
		err error
	)
	switch p := call.Page.(type) {
	case view.Precompiled:
		return p(ctx, call.Data)

	case view.Raw:
		var (
			partials map[string]string
			key      string
		)
		partials, key, err = e.b.RawPartials(ctx, p, call)
		if err != nil {
			return "", err
		}
		compile := func(src string) (*raymond.Template, error) { return e.compile(src, partials) }
		if key != "" {
			tpl, err = view.LoadRawAs(e.b, key, p.Source, compile)
		} else {
			tpl, err = compile(p.Source)
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
		tpl, err = view.LoadAs(ctx, e.b, key, full, func(src string) (*raymond.Template, error) {
			return e.compile(src, partials)
		})

	default:
		return "", fmt.Errorf("%w: %T", view.ErrUnknownPageShape, call.Page)
	}
	if err != nil {
		return "", err
	}

	out, err := tpl.Exec(call.Data)
	if err != nil {
		return "", fmt.Errorf("execute handlebars template: %w", err)
	}
	return out, nil
}

func (e *Engine) compile(src string, partials map[string]string) (*raymond.Template, error) {
	tpl, err := raymond.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse handlebars template: %w", err)
	}
	if len(e.helpers) > 0 {
		tpl.RegisterHelpers(e.helpers)
	}
	if len(partials) > 0 {
		tpl.RegisterPartials(partials)
	}
	return tpl, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package view

import (
	"context"
	"fmt"
)

// bodyKey is the data key a layout receives the rendered page under.
const bodyKey = "body"

type renderFunc func(ctx context.Context, call *Call) (string, error)

// Renderer is the dispatch entry point of a registration.
type Renderer struct {
	b        *Binding
	a        Adapter
	layouter Layouter
}

// NewRenderer ties an adapter to its binding and runs the registration-time
// checks: a global layout needs a layout-capable engine and an existing
// layout file, and adapters with a Prepare step run it now.
func NewRenderer(ctx context.Context, b *Binding, a Adapter) (*Renderer, error) {
	r := &Renderer{b: b, a: a}
	r.layouter, _ = a.(Layouter)

	if b.layout != "" {
		if r.layouter == nil {
			return nil, fmt.Errorf("%w: %s", ErrLayoutUnsupported, a.Name())
		}
		if !b.LayoutExists(b.layout, a.Ext()) {
			return nil, fmt.Errorf("%w: %w %q", ErrConfig, ErrLayoutNotFound, b.layout)
		}
	}

	if p, ok := a.(Preparer); ok {
		if err := p.Prepare(ctx); err != nil {
			return nil, fmt.Errorf("prepare %s engine: %w", a.Name(), err)
		}
	}

	b.logger.Debug("view engine registered",
		"dirs", b.dirs,
		"production", b.production,
		"layout", b.layout,
	)
	return r, nil
}

// Binding returns the registration state.
func (r *Renderer) Binding() *Binding { return r.b }

// Adapter returns the engine adapter.
func (r *Renderer) Adapter() Adapter { return r.a }

// Render renders page outside of a request.
func (r *Renderer) Render(ctx context.Context, page Page, data Map, opts *CallOptions) (string, error) {
	return r.render(ctx, page, data, nil, "", opts)
}

// RenderCallback renders page on a new goroutine and passes the outcome to
// done.
func (r *Renderer) RenderCallback(ctx context.Context, page Page, data Map, opts *CallOptions, done func(html string, err error)) {
	go func() {
		done(r.Render(ctx, page, data, opts))
	}()
}

// ClearCache drops every entry of the template cache.
func (r *Renderer) ClearCache() {
	r.b.store.Clear()
	r.b.logger.Info("view cache cleared")
}

func (r *Renderer) render(ctx context.Context, page Page, data, locals Map, routePath string, opts *CallOptions) (string, error) {
	if missing(page) {
		return "", ErrMissingPage
	}
	if raw, ok := page.(*Raw); ok {
		page = *raw
	}

	var o CallOptions
	if opts != nil {
		o = *opts
	}

	layout := r.b.layout
	if o.Layout != "" {
		if layout != "" {
			return "", ErrLayoutConflict
		}
		if r.layouter == nil {
			return "", fmt.Errorf("%w: %s", ErrLayoutUnsupported, r.a.Name())
		}
		if !r.b.LayoutExists(o.Layout, r.a.Ext()) {
			return "", fmt.Errorf("%w %q", ErrLayoutNotFound, o.Layout)
		}
		layout = o.Layout
	}

	call := &Call{
		Page:       page,
		Data:       Merge(r.b.defaults, locals, data),
		CallerData: data,
		Locals:     locals,
		Options:    o,
		RoutePath:  routePath,
	}

	if r.async(o) {
		resolved, err := resolveDeferred(ctx, call.Data)
		if err != nil {
			return "", err
		}
		call.Data = resolved
	}

	if c, ok := r.a.(Configurer); ok {
		if err := c.Configure(); err != nil {
			return "", fmt.Errorf("configure %s engine: %w", r.a.Name(), err)
		}
	}

	fn := renderFunc(r.a.Render)
	if layout != "" {
		fn = r.withLayout(fn, layout)
	}

	html, err := fn(ctx, call)
	if err != nil {
		return "", err
	}
	return r.postprocess(html, routePath)
}

func (r *Renderer) async(o CallOptions) bool {
	ar, ok := r.a.(AsyncRenderer)
	if !ok || !ar.SupportsAsync() {
		return false
	}
	if o.Async != nil {
		return *o.Async
	}
	return r.b.opts.Async
}

// withLayout renders the page, then renders layout with the page output
// stored under "body".
func (r *Renderer) withLayout(base renderFunc, layout string) renderFunc {
	return func(ctx context.Context, call *Call) (string, error) {
		html, err := base(ctx, call)
		if err != nil {
			return "", err
		}

		data := make(Map, len(call.Data)+1)
		for k, v := range call.Data {
			data[k] = v
		}
		data[bodyKey] = r.layouter.LayoutBody(html)

		outer := *call
		outer.Page = ByPath(layout)
		outer.Data = data
		outer.Options.Layout = ""
		return r.a.Render(ctx, &outer)
	}
}

// postprocess runs the minifier unless routePath is excluded.
func (r *Renderer) postprocess(html, routePath string) (string, error) {
	m := r.b.opts.Minifier
	if m == nil {
		return html, nil
	}
	if _, skip := r.b.excluded[routePath]; skip {
		return html, nil
	}
	out, err := m.Minify(html, r.b.opts.MinifierOptions)
	if err != nil {
		return "", fmt.Errorf("minify: %w", err)
	}
	return out, nil
}

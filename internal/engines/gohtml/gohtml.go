// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gohtml renders html/template pages. Partials named in the
// partials mapping, and for raw pages those hinted under "partials", are
// parsed into the page as associated templates, so a page includes one
// with {{template "name" .}}.
package gohtml

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"viewkit/internal/view"
)

// Name is the engine key.
const Name = "html"

// Engine is the html/template adapter.
type Engine struct {
	b     *view.Binding
	funcs template.FuncMap
}

// New creates the adapter. instance may be nil or a template.FuncMap.
func New(b *view.Binding, instance any) (view.Adapter, error) {
	e := &Engine{b: b}
	switch x := instance.(type) {
	case nil:
	case template.FuncMap:
		e.funcs = x
	case map[string]any:
		e.funcs = x
	default:
		return nil, fmt.Errorf("%w: html engine expects a template.FuncMap, got %T", view.ErrConfig, instance)
	}
	b.Configure(e.funcs)
	return e, nil
}

func (e *Engine) Name() string        { return Name }
func (e *Engine) Ext() string         { return "html" }
func (e *Engine) SupportsAsync() bool { return true }

// LayoutBody marks the page output as safe so the layout does not escape it.
func (e *Engine) LayoutBody(html string) any { return template.HTML(html) }

// Render implements view.Adapter.
func (e *Engine) Render(ctx context.Context, call *view.Call) (string, error) {
	switch p := call.Page.(type) {
	case view.Precompiled:
		return p(ctx, call.Data)

	case view.Raw:
		name := view.Describe(p)
		partials, key, err := e.b.RawPartials(ctx, p, call)
		if err != nil {
			return "", err
		}
		compile := func(src string) (*template.Template, error) {
			return e.compile(name, src, partials)
		}
		var tpl *template.Template
		if key != "" {
			tpl, err = view.LoadRawAs(e.b, key, p.Source, compile)
		} else {
			tpl, err = compile(p.Source)
		}
		if err != nil {
			return "", err
		}
		return execute(tpl, call.Data)

	case view.ByPath:
		file := e.b.ResolvePage(string(p), e.Ext())
		partials, err := e.b.LoadPartials(ctx, file, call)
		if err != nil {
			return "", err
		}
		full := e.b.Path(file)
		key := full
		if len(partials) > 0 {
			key = full + "#" + view.PartialsKey(file, e.b.PartialsFor(call), call.RoutePath)
		}
		tpl, err := view.LoadAs(ctx, e.b, key, full, func(src string) (*template.Template, error) {
			return e.compile(file, src, partials)
		})
		if err != nil {
			return "", err
		}
		return execute(tpl, call.Data)

	default:
		return "", fmt.Errorf("%w: %T", view.ErrUnknownPageShape, call.Page)
	}
}

func (e *Engine) compile(name, src string, partials map[string]string) (*template.Template, error) {
	tpl, err := template.New(name).Funcs(e.funcs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	for pname, body := range partials {
		if _, err := tpl.New(pname).Parse(body); err != nil {
			return nil, fmt.Errorf("parse partial %s: %w", pname, err)
		}
	}
	return tpl, nil
}

func execute(tpl *template.Template, data view.Map) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gotext renders text/template pages. Output is not escaped.
package gotext

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"viewkit/internal/view"
)

// Name is the engine key.
const Name = "text"

// Engine is the text/template adapter.
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
		return nil, fmt.Errorf("%w: text engine expects a template.FuncMap, got %T", view.ErrConfig, instance)
	}
	b.Configure(e.funcs)
	return e, nil
}

func (e *Engine) Name() string               { return Name }
func (e *Engine) Ext() string                { return "tmpl" }
func (e *Engine) SupportsAsync() bool        { return true }
func (e *Engine) LayoutBody(html string) any { return html }

// Render implements view.Adapter.
func (e *Engine) Render(ctx context.Context, call *view.Call) (string, error) {
	var (
		tpl *template.Template
		err error
	)
	switch p := call.Page.(type) {
	case view.Precompiled:
		return p(ctx, call.Data)
	case view.Raw:
		tpl, err = view.LoadRaw(e.b, p.Source, e.compiler(view.Describe(p)))
	case view.ByPath:
		file := e.b.ResolvePage(string(p), e.Ext())
		tpl, err = view.Load(ctx, e.b, file, e.compiler(file))
	default:
		return "", fmt.Errorf("%w: %T", view.ErrUnknownPageShape, call.Page)
	}
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tpl.Execute(&sb, call.Data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", tpl.Name(), err)
	}
	return sb.String(), nil
}

func (e *Engine) compiler(name string) func(string) (*template.Template, error) {
	return func(src string) (*template.Template, error) {
		tpl, err := template.New(name).Funcs(e.funcs).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		return tpl, nil
	}
}

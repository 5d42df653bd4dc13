// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package amber renders Amber pages. Every .amber file under the templates
// directory is precompiled into html/template files at registration; pages
// are then served from the compiled output.
package amber

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path"
	"path/filepath"
	"strings"

	"github.com/eknkc/amber"

	"viewkit/internal/precompile"
	"viewkit/internal/source"
	"viewkit/internal/view"
)

// Name is the engine key.
const Name = "amber"

// Engine is the Amber adapter.
type Engine struct {
	b    *view.Binding
	fs   *source.FS
	dest string
}

// New creates the adapter. Amber takes no instance configuration. The
// templates must come from a filesystem source.
func New(b *view.Binding, instance any) (view.Adapter, error) {
	if instance != nil {
		return nil, fmt.Errorf("%w: amber engine takes no instance, got %T", view.ErrConfig, instance)
	}
	fsys, ok := b.Loader().(*source.FS)
	if !ok {
		return nil, fmt.Errorf("%w: amber engine needs a filesystem source, got %T", view.ErrConfig, b.Loader())
	}
	dest := b.EngineOptions().Destination
	if dest == "" {
		dest = filepath.Join(b.Dir(), "compiled")
	}
	return &Engine{b: b, fs: fsys, dest: dest}, nil
}

func (e *Engine) Name() string { return Name }
func (e *Engine) Ext() string  { return "amber" }

// Destination is the directory compiled templates are written to.
func (e *Engine) Destination() string { return e.dest }

// Prepare precompiles the templates directory.
func (e *Engine) Prepare(context.Context) error {
	_, err := precompile.Amber(e.fs.Fs(), e.b.Dir(), e.dest, e.b.Logger())
	return err
}

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
		tpl, err = view.LoadRaw(e.b, p.Source, compileSource)
	case view.ByPath:
		full := e.compiledPath(string(p))
		tpl, err = view.LoadAs(ctx, e.b, full, full, func(src string) (*template.Template, error) {
			return parseCompiled(full, src)
		})
	default:
		return "", fmt.Errorf("%w: %T", view.ErrUnknownPageShape, call.Page)
	}
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, call.Data); err != nil {
		return "", fmt.Errorf("execute amber template: %w", err)
	}
	return buf.String(), nil
}

// compiledPath maps a page name to its file in the destination directory.
func (e *Engine) compiledPath(page string) string {
	file := e.b.ResolvePage(page, e.Ext())
	file = strings.TrimSuffix(file, path.Ext(file)) + precompile.OutputExt
	return filepath.Join(e.dest, file)
}

func parseCompiled(name, src string) (*template.Template, error) {
	tpl, err := template.New(name).Funcs(amber.FuncMap).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse compiled amber template %s: %w", name, err)
	}
	return tpl, nil
}

func compileSource(src string) (*template.Template, error) {
	c := amber.New()
	if err := c.Parse(src); err != nil {
		return nil, fmt.Errorf("parse amber template: %w", err)
	}
	tpl, err := c.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile amber template: %w", err)
	}
	return tpl, nil
}

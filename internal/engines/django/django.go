// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package django renders Django-style pages with pongo2.
package django

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/flosch/pongo2/v6"

	"viewkit/internal/view"
)

// Name is the engine key.
const Name = "django"

// Engine is the pongo2 adapter. The template set has one loader per
// templates directory; pongo2's own template cache is not used.
type Engine struct {
	b   *view.Binding
	set *pongo2.TemplateSet
}

// New creates the adapter. instance may be nil or a pongo2.Context of
// globals shared by every page.
func New(b *view.Binding, instance any) (view.Adapter, error) {
	ls := make([]pongo2.TemplateLoader, 0, len(b.Dirs()))
	for _, dir := range b.Dirs() {
		ls = append(ls, &dirLoader{b: b, dir: dir})
	}
	set := pongo2.NewSet(Name+"-"+b.Dir(), ls...)
	set.Debug = !b.Production()

	switch x := instance.(type) {
	case nil:
	case pongo2.Context:
		set.Globals.Update(x)
	case map[string]any:
		set.Globals.Update(pongo2.Context(x))
	default:
		return nil, fmt.Errorf("%w: django engine expects pongo2.Context globals, got %T", view.ErrConfig, instance)
	}
	b.Configure(set)
	return &Engine{b: b, set: set}, nil
}

func (e *Engine) Name() string        { return Name }
func (e *Engine) Ext() string         { return "django" }
func (e *Engine) SupportsAsync() bool { return true }

// Render implements view.Adapter.
func (e *Engine) Render(ctx context.Context, call *view.Call) (string, error) {
	var (
		tpl      *pongo2.Template
		settings view.Map
		err      error
	)
	switch p := call.Page.(type) {
	case view.Precompiled:
		return p(ctx, call.Data)
	case view.Raw:
		if settings, err = rawSettings(p); err != nil {
			return "", err
		}
		tpl, err = view.LoadRaw(e.b, p.Source, func(src string) (*pongo2.Template, error) {
			return e.set.FromString(src)
		})
	case view.ByPath:
		file := e.b.ResolvePage(string(p), e.Ext())
		tpl, err = view.LoadWith(e.b, Name+":"+file, func() (*pongo2.Template, error) {
			return e.set.FromFile(file)
		})
	default:
		return "", fmt.Errorf("%w: %T", view.ErrUnknownPageShape, call.Page)
	}
	if err != nil {
		return "", fmt.Errorf("compile django template: %w", err)
	}

	data := pongo2.Context(call.Data)
	if len(settings) > 0 {
		data = pongo2.Context{}
		data.Update(pongo2.Context(settings))
		data.Update(pongo2.Context(call.Data))
	}
	out, err := tpl.Execute(data)
	if err != nil {
		return "", fmt.Errorf("execute django template: %w", err)
	}
	return out, nil
}

// rawSettings reads the "settings" hint of a raw page: values placed under
// the call data, so data keys win.
func rawSettings(p view.Raw) (view.Map, error) {
	if c, ok := p.Hints["settings"].(pongo2.Context); ok {
		return view.Map(c), nil
	}
	return p.MapHint("settings")
}

// dirLoader resolves names inside one templates directory and reads
// through the binding's de-duplicator.
type dirLoader struct {
	b   *view.Binding
	dir string
}

func (l *dirLoader) Abs(_, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.dir, name)
}

func (l *dirLoader) Get(path string) (io.Reader, error) {
	src, err := l.b.Reader().ReadOnce(context.Background(), path)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(src), nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package jet renders Jet pages.
//
// Layouts receive the page output as a plain string; print it with
// {{ body | raw }}.
package jet

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/CloudyKit/jet/v6"
	"github.com/CloudyKit/jet/v6/loaders/multi"

	"viewkit/internal/view"
)

// Name is the engine key.
const Name = "jet"

// Engine is the Jet adapter. A jet.Cache supplied as Settings["cache"] is
// shared with code outside the adapter, so the set is rebuilt around it
// before every render.
type Engine struct {
	b       *view.Binding
	globals map[string]any
	cache   jet.Cache

	mu  sync.RWMutex
	set *jet.Set
}

// New creates the adapter. instance may be nil or a map of globals.
func New(b *view.Binding, instance any) (view.Adapter, error) {
	e := &Engine{b: b}
	switch x := instance.(type) {
	case nil:
	case map[string]any:
		e.globals = x
	default:
		return nil, fmt.Errorf("%w: jet engine expects a globals map, got %T", view.ErrConfig, instance)
	}
	if v, ok := b.Setting("cache"); ok {
		c, ok := v.(jet.Cache)
		if !ok {
			return nil, fmt.Errorf("%w: jet cache setting must implement jet.Cache, got %T", view.ErrConfig, v)
		}
		e.cache = c
	}
	e.set = e.newSet()
	b.Configure(e.set)
	return e, nil
}

// newSet builds the jet set. Without a custom cache the set never serves
// templates from jet's own cache: production trust is applied by the binding,
// so ClearCache reaches every compiled template. A custom cache is owned by
// the caller and consulted in production.
func (e *Engine) newSet() *jet.Set {
	return e.newSetWith(&dirsLoader{b: e.b})
}

// importSet builds a throwaway set whose loader serves the hinted imports
// ahead of the templates directories. It is configured like the shared set.
func (e *Engine) importSet(imports map[string]string) *jet.Set {
	mem := jet.NewInMemLoader()
	for name, src := range imports {
		mem.Set(name, src)
	}
	set := jet.NewSet(multi.NewLoader(mem, &dirsLoader{b: e.b}), jet.InDevelopmentMode())
	for k, v := range e.globals {
		set.AddGlobal(k, v)
	}
	e.b.Configure(set)
	return set
}

func (e *Engine) newSetWith(loader jet.Loader) *jet.Set {
	var opts []jet.Option
	switch {
	case e.cache == nil:
		opts = append(opts, jet.InDevelopmentMode())
	case !e.b.Production():
		opts = append(opts, jet.InDevelopmentMode(), jet.WithCache(e.cache))
	default:
		opts = append(opts, jet.WithCache(e.cache))
	}
	set := jet.NewSet(loader, opts...)
	for k, v := range e.globals {
		set.AddGlobal(k, v)
	}
	return set
}

func (e *Engine) Name() string               { return Name }
func (e *Engine) Ext() string                { return "jet" }
func (e *Engine) SupportsAsync() bool        { return true }
func (e *Engine) LayoutBody(html string) any { return html }

// Configure rebuilds the set around a custom cache. Without one the set
// built at registration is kept.
func (e *Engine) Configure() error {
	if e.cache == nil {
		return nil
	}
	set := e.newSet()
	e.mu.Lock()
	e.set = set
	e.mu.Unlock()
	return nil
}

func (e *Engine) current() *jet.Set {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.set
}

// Render implements view.Adapter.
func (e *Engine) Render(ctx context.Context, call *view.Call) (string, error) {
	set := e.current()
	var (
		tpl *jet.Template
		err error
	)
	switch p := call.Page.(type) {
	case view.Precompiled:
		return p(ctx, call.Data)
	case view.Raw:
		var imports map[string]string
		if imports, err = p.StringsHint("imports"); err != nil {
			return "", err
		}
		key := view.RawKey(p.Source, imports)
		tpl, err = view.LoadRawAs(e.b, key, p.Source, func(src string) (*jet.Template, error) {
			if len(imports) > 0 {
				return e.importSet(imports).Parse("/"+key, src)
			}
			return set.Parse("/"+key, src)
		})
	case view.ByPath:
		file := e.b.ResolvePage(string(p), e.Ext())
		tpl, err = view.LoadWith(e.b, Name+":"+file, func() (*jet.Template, error) {
			return set.GetTemplate("/" + filepath.ToSlash(file))
		})
	default:
		return "", fmt.Errorf("%w: %T", view.ErrUnknownPageShape, call.Page)
	}
	if err != nil {
		return "", fmt.Errorf("compile jet template: %w", err)
	}

	vars, data := e.variables(call)
	var sb strings.Builder
	if err := tpl.Execute(&sb, vars, data); err != nil {
		return "", fmt.Errorf("execute jet template: %w", err)
	}
	return sb.String(), nil
}

// variables splits call data between Jet variables and the dot context.
// With DataVariables only defaults and locals become variables and the
// caller's data is the context; otherwise every key is a variable.
func (e *Engine) variables(call *view.Call) (jet.VarMap, any) {
	src := call.Data
	if e.b.EngineOptions().DataVariables {
		src = e.b.Vars(call)
		if _, ok := call.Data["body"]; ok {
			src["body"] = call.Data["body"]
		}
	}
	vars := make(jet.VarMap, len(src))
	for k, v := range src {
		vars.Set(k, v)
	}
	if e.b.EngineOptions().DataVariables {
		return vars, call.CallerData
	}
	return vars, call.Data
}

// dirsLoader looks templates up in each templates directory in order.
type dirsLoader struct {
	b *view.Binding
}

func (l *dirsLoader) find(name string) (string, bool) {
	rel := filepath.FromSlash(strings.TrimPrefix(name, "/"))
	for _, dir := range l.b.Dirs() {
		full := filepath.Join(dir, rel)
		if l.b.Loader().Exists(full) {
			return full, true
		}
	}
	return "", false
}

func (l *dirsLoader) Exists(name string) bool {
	_, ok := l.find(name)
	return ok
}

func (l *dirsLoader) Open(name string) (io.ReadCloser, error) {
	full, ok := l.find(name)
	if !ok {
		return nil, fmt.Errorf("jet template %s not found in %v", name, l.b.Dirs())
	}
	src, err := l.b.Reader().ReadOnce(context.Background(), full)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(src)), nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package jinja renders Jinja pages with gonja. Templates are looked up in
// every templates directory, in order, which is what extends and include
// resolve against.
package jinja

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/config"
	"github.com/nikolalohinski/gonja/v2/exec"

	"viewkit/internal/view"
)

// Name is the engine key.
const Name = "jinja"

// Engine is the gonja adapter. The environment it was given, gonja's
// default one unless Settings["environment"] is set, is shared with the rest
// of the process; its filters and globals are captured at registration and
// every render runs against a fresh copy of that capture.
type Engine struct {
	b    *view.Binding
	base config.Config
	snap exec.Environment

	mu  sync.RWMutex
	cfg *config.Config
	env *exec.Environment
}

// New creates the adapter. instance may be nil or a *config.Config. An
// *exec.Environment can be supplied as Settings["environment"].
func New(b *view.Binding, instance any) (view.Adapter, error) {
	e := &Engine{b: b, base: *gonja.DefaultConfig}
	shared := gonja.DefaultEnvironment
	switch x := instance.(type) {
	case nil:
	case *config.Config:
		e.base = *x
	default:
		return nil, fmt.Errorf("%w: jinja engine expects a *config.Config, got %T", view.ErrConfig, instance)
	}
	if v, ok := b.Setting("environment"); ok {
		env, ok := v.(*exec.Environment)
		if !ok {
			return nil, fmt.Errorf("%w: jinja environment setting must be *exec.Environment, got %T", view.ErrConfig, v)
		}
		shared = env
	}
	e.snap = snapshot(shared)
	b.Configure(&e.base)
	if err := e.Configure(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Name() string        { return Name }
func (e *Engine) Ext() string         { return "j2" }
func (e *Engine) SupportsAsync() bool { return true }

// Configure re-applies the registration config and environment before a
// render, dropping anything changed on them since.
func (e *Engine) Configure() error {
	cfg := e.base
	env := snapshot(&e.snap)
	e.mu.Lock()
	e.cfg = &cfg
	e.env = &env
	e.mu.Unlock()
	return nil
}

func (e *Engine) state() (*config.Config, *exec.Environment) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.env
}

// snapshot copies env with its own filter set and global context. Tests,
// control structures and methods are shared.
func snapshot(env *exec.Environment) exec.Environment {
	out := *env
	if env.Filters != nil {
		out.Filters = exec.NewFilterSet(map[string]exec.FilterFunction{}).Update(env.Filters)
	}
	if env.Context != nil {
		out.Context = exec.NewContext(map[string]any{}).Update(env.Context)
	}
	return out
}

// Render implements view.Adapter.
func (e *Engine) Render(ctx context.Context, call *view.Call) (string, error) {
	var (
		tpl *exec.Template
		err error
	)
	switch p := call.Page.(type) {
	case view.Precompiled:
		return p(ctx, call.Data)

	case view.Raw:
		id := view.RawKey(p.Source)
		tpl, err = view.LoadRaw(e.b, p.Source, func(src string) (*exec.Template, error) {
			return e.compile(id, newLoader(ctx, e.b, map[string]string{id: src}))
		})

	case view.ByPath:
		file := e.b.ResolvePage(string(p), e.Ext())
		tpl, err = view.LoadWith(e.b, Name+":"+file, func() (*exec.Template, error) {
			return e.compile(file, newLoader(ctx, e.b, nil))
		})

	default:
		return "", fmt.Errorf("%w: %T", view.ErrUnknownPageShape, call.Page)
	}
	if err != nil {
		return "", err
	}

	out, err := tpl.ExecuteToString(exec.NewContext(call.Data))
	if err != nil {
		return "", fmt.Errorf("execute jinja template: %w", err)
	}
	return out, nil
}

func (e *Engine) compile(id string, l *loader) (*exec.Template, error) {
	cfg, env := e.state()
	tpl, err := exec.NewTemplate(id, cfg, l, env)
	if err != nil {
		return nil, fmt.Errorf("compile jinja template %s: %w", id, err)
	}
	return tpl, nil
}

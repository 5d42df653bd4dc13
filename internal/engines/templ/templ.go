// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package templ renders templ components. templ compiles templates to Go
// ahead of time, so only Precompiled pages are accepted; build them with
// Page or Component.
package templ

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"viewkit/internal/view"
)

// Name is the engine key.
const Name = "templ"

// Engine is the templ adapter.
type Engine struct{}

// New creates the adapter. templ takes no instance configuration.
func New(b *view.Binding, instance any) (view.Adapter, error) {
	if instance != nil {
		return nil, fmt.Errorf("%w: templ engine takes no instance, got %T", view.ErrConfig, instance)
	}
	return Engine{}, nil
}

func (Engine) Name() string        { return Name }
func (Engine) Ext() string         { return "templ" }
func (Engine) SupportsAsync() bool { return true }

// Render implements view.Adapter.
func (Engine) Render(ctx context.Context, call *view.Call) (string, error) {
	switch p := call.Page.(type) {
	case view.Precompiled:
		return p(ctx, call.Data)
	case view.ByPath, view.Raw:
		return "", fmt.Errorf("%w: templ renders compiled components only, got %s", view.ErrUnsupportedPage, view.Describe(p))
	default:
		return "", fmt.Errorf("%w: %T", view.ErrUnknownPageShape, call.Page)
	}
}

// Page adapts a component constructor to a page. fn receives the merged
// render data.
func Page(fn func(data view.Map) templ.Component) view.Precompiled {
	return func(ctx context.Context, data view.Map) (string, error) {
		return renderComponent(ctx, fn(data))
	}
}

// Component adapts a component that ignores render data.
func Component(c templ.Component) view.Precompiled {
	return func(ctx context.Context, _ view.Map) (string, error) {
		return renderComponent(ctx, c)
	}
}

func renderComponent(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", fmt.Errorf("render templ component: %w", err)
	}
	return sb.String(), nil
}

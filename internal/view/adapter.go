// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package view

import "context"

// Call is the state of one render. It is built at the start of a render
// and dropped at the end.
type Call struct {
	Page Page
	// Data is the merged template data.
	Data Map
	// CallerData is the data argument as given to the render call.
	CallerData Map
	// Locals are the per-request locals, nil outside a request.
	Locals Map
	// Options are the per-call options.
	Options CallOptions
	// RoutePath is the registered route pattern of the current request.
	RoutePath string
}

// Adapter renders pages with one template engine.
type Adapter interface {
	// Name is the engine key used in Options.Engine.
	Name() string
	// Ext is the canonical template file extension, without the dot.
	Ext() string
	// Render produces the HTML for call.Page. Engine errors are returned
	// wrapped, never swallowed.
	Render(ctx context.Context, call *Call) (string, error)
}

// Layouter is implemented by adapters that can render layouts. LayoutBody
// converts the rendered child into the value stored under the "body" key,
// for instance a type the engine will not escape.
type Layouter interface {
	LayoutBody(html string) any
}

// Preparer is implemented by adapters with work to do at registration,
// such as precompiling templates or loading partials eagerly.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Configurer is implemented by adapters whose shared engine state must be
// re-applied before every render.
type Configurer interface {
	Configure() error
}

// AsyncRenderer is implemented by adapters that accept Deferred data.
type AsyncRenderer interface {
	SupportsAsync() bool
}

// Factory builds an adapter for a binding from the native engine instance
// given in Options.Engine.
type Factory func(b *Binding, instance any) (Adapter, error)

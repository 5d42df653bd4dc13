// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package view

import (
	"context"
	"log/slog"
	"os"

	"viewkit/internal/cache"
	"viewkit/internal/source"
)

// Defaults applied by NewBinding and plugin registration.
const (
	DefaultCharset      = "utf-8"
	DefaultPropertyName = "view"
	DefaultMaxCache     = cache.DefaultSize
	asyncSuffix         = "Async"
)

// Minifier post-processes rendered HTML.
type Minifier interface {
	Minify(html string, opts Map) (string, error)
}

// MinifierFunc adapts a function to Minifier.
type MinifierFunc func(html string, opts Map) (string, error)

// Minify implements Minifier.
func (f MinifierFunc) Minify(html string, opts Map) (string, error) { return f(html, opts) }

// EngineOptions is passed largely untouched to the engine adapter. The
// fields with a meaning outside a single engine are named; everything else
// goes through Settings.
type EngineOptions struct {
	// Minifier, when set, runs over every rendered page.
	Minifier        Minifier
	MinifierOptions Map
	// PathsToExcludeMinifier lists route patterns whose output is left alone.
	PathsToExcludeMinifier []string

	// Partials maps a logical partial name to a path relative to the
	// templates directory.
	Partials map[string]string

	// Async resolves Deferred values in the data before rendering, for
	// engines that support it.
	Async bool

	// OnConfigure is called once with the engine's own configuration object
	// for engines that expose one.
	OnConfigure func(config any)

	// DataVariables makes the jet adapter pass defaults and locals as jet
	// variables instead of merging them into the context.
	DataVariables bool

	// Destination is where engines with an on-disk compile step write their
	// output. Defaults to a "compiled" directory next to the templates.
	Destination string

	// Settings holds engine-native knobs.
	Settings Map
}

// CallOptions are per-render options.
type CallOptions struct {
	// Layout wraps this render in a layout. It cannot be combined with a
	// globally configured layout.
	Layout string
	// Partials are merged over the global partials for this call.
	Partials map[string]string
	// Async overrides EngineOptions.Async for this call when set.
	Async *bool
}

// Options configures a registration.
type Options struct {
	// Engine holds exactly one entry: engine name to native engine instance.
	// The instance may be nil for engines that build their own.
	Engine map[string]any

	// Templates lists template directories. Most engines use only the first;
	// engines with multi-directory loaders use all of them in order.
	Templates []string
	// Root overrides Templates when set.
	Root string

	IncludeViewExtension bool
	ViewExt              string

	EngineOptions EngineOptions

	Charset        string
	DefaultContext Map
	Layout         string
	MaxCache       int

	// Production enables cache trust. Nil means APP_ENV == "production".
	Production *bool

	PropertyName      string
	AsyncPropertyName string

	// Cache replaces the default LRU. Supplying one opts out of the default
	// cache policy.
	Cache cache.Store
	// Loader replaces the OS filesystem as the template source.
	Loader source.Loader

	Logger *slog.Logger
}

// WithDefaults returns a copy of o with defaults filled in.
func (o Options) WithDefaults() Options {
	if o.Charset == "" {
		o.Charset = DefaultCharset
	}
	if o.MaxCache <= 0 {
		o.MaxCache = DefaultMaxCache
	}
	if o.Production == nil {
		prod := os.Getenv("APP_ENV") == "production"
		o.Production = &prod
	}
	if o.PropertyName == "" {
		o.PropertyName = DefaultPropertyName
	}
	if o.AsyncPropertyName == "" {
		o.AsyncPropertyName = o.PropertyName + asyncSuffix
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// TemplateDirs returns the configured template directories, Root first.
func (o Options) TemplateDirs() []string {
	if o.Root != "" {
		return []string{o.Root}
	}
	if len(o.Templates) > 0 {
		return o.Templates
	}
	return []string{"."}
}

// Deferred is a data value resolved before rendering when async rendering
// is enabled.
type Deferred func(ctx context.Context) (any, error)

// Bool returns a pointer to v, for optional fields.
func Bool(v bool) *bool { return &v }

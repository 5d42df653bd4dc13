// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package view

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/encoding/htmlindex"

	"viewkit/internal/cache"
	"viewkit/internal/source"
)

// Binding is the state shared by one registration: the configuration, the
// template cache and the read de-duplicator. It is created once and not
// modified afterwards, apart from the cache it owns.
type Binding struct {
	engine         string
	dirs           []string
	includeViewExt bool
	viewExt        string
	charset        string
	defaults       Map
	layout         string
	production     bool
	opts           EngineOptions
	excluded       map[string]struct{}

	store  cache.Store
	reader *cache.Reader
	loader source.Loader
	logger *slog.Logger
}

// NewBinding validates the engine-independent options and builds the shared
// state for engine.
func NewBinding(engine string, o Options) (*Binding, error) {
	o = o.WithDefaults()

	if _, err := htmlindex.Get(o.Charset); err != nil {
		return nil, fmt.Errorf("%w %q", ErrCharset, o.Charset)
	}

	store := o.Cache
	if store == nil {
		store = cache.NewLRU(o.MaxCache)
	}
	loader := o.Loader
	if loader == nil {
		loader = source.NewFS(nil)
	}

	logger := o.Logger.With("engine", engine)

	excluded := make(map[string]struct{}, len(o.EngineOptions.PathsToExcludeMinifier))
	for _, p := range o.EngineOptions.PathsToExcludeMinifier {
		excluded[p] = struct{}{}
	}

	return &Binding{
		engine:         engine,
		dirs:           o.TemplateDirs(),
		includeViewExt: o.IncludeViewExtension,
		viewExt:        strings.TrimPrefix(o.ViewExt, "."),
		charset:        o.Charset,
		defaults:       o.DefaultContext,
		layout:         o.Layout,
		production:     *o.Production,
		opts:           o.EngineOptions,
		excluded:       excluded,
		store:          store,
		reader:         cache.NewReader(loader, logger),
		loader:         loader,
		logger:         logger,
	}, nil
}

// Engine returns the registered engine name.
func (b *Binding) Engine() string { return b.engine }

// Dir returns the first templates directory, which relative names resolve
// against.
func (b *Binding) Dir() string { return b.dirs[0] }

// Dirs returns every configured templates directory.
func (b *Binding) Dirs() []string { return b.dirs }

// Production reports whether compiled templates are trusted from the cache.
func (b *Binding) Production() bool { return b.production }

// Charset returns the configured response charset.
func (b *Binding) Charset() string { return b.charset }

// Layout returns the default layout file, empty when layouts are off.
func (b *Binding) Layout() string { return b.layout }

// Defaults returns the registration-wide template context.
func (b *Binding) Defaults() Map { return b.defaults }

// EngineOptions returns the engine-specific options.
func (b *Binding) EngineOptions() EngineOptions { return b.opts }

// Store returns the template cache owned by the binding.
func (b *Binding) Store() cache.Store { return b.store }

// Reader returns the de-duplicating template reader.
func (b *Binding) Reader() *cache.Reader { return b.reader }

// Loader returns the source templates are read from.
func (b *Binding) Loader() source.Loader { return b.loader }

// Logger returns the binding's logger, tagged with the engine name.
func (b *Binding) Logger() *slog.Logger { return b.logger }

// ContentType is the default response content type.
func (b *Binding) ContentType() string {
	return "text/html; charset=" + b.charset
}

// Path joins name onto the first templates directory.
func (b *Binding) Path(name string) string {
	return filepath.Join(b.Dir(), name)
}

// Vars merges the defaults with the request locals, without caller data.
func (b *Binding) Vars(call *Call) Map {
	return Merge(b.defaults, call.Locals, nil)
}

// ResolvePage maps a logical page name to the file to load. The existing
// extension is replaced by, in order: the configured view extension; the
// engine extension when IncludeViewExtension is set; otherwise the page's own
// extension, or the engine extension if it had none. Results are cached.
func (b *Binding) ResolvePage(page, ext string) string {
	key := "getPage-" + page + "-" + ext
	if v, ok := b.store.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	base := path.Base(page)
	name := strings.TrimSuffix(base, path.Ext(base))
	resolved := path.Join(path.Dir(page), name+b.extension(page, ext))

	b.store.Set(key, resolved)
	return resolved
}

func (b *Binding) extension(page, ext string) string {
	own := path.Ext(page)
	if own == "" {
		own = "." + ext
	}
	switch {
	case b.viewExt != "":
		return "." + b.viewExt
	case b.includeViewExt:
		return "." + ext
	default:
		return own
	}
}

// LayoutExists resolves file like a page and reports whether it is present
// in the templates directory. The answer is cached.
func (b *Binding) LayoutExists(file, ext string) bool {
	key := "layout-" + file + "-" + ext
	if v, ok := b.store.Get(key); ok {
		if exists, ok := v.(bool); ok {
			return exists
		}
	}

	exists := b.loader.Exists(b.Path(b.ResolvePage(file, ext)))
	b.store.Set(key, exists)
	return exists
}

// ReadTemplate reads a template relative to the templates directory
// through the de-duplicator, bypassing the cache.
func (b *Binding) ReadTemplate(ctx context.Context, name string) (string, error) {
	return b.reader.ReadOnce(ctx, b.Path(name))
}

// Load returns the compiled form of file. In production the compiled value
// is stored under the file path and trusted as is on later calls; otherwise
// the file is read and compiled on every call and nothing is stored.
func Load[T any](ctx context.Context, b *Binding, file string, compile func(src string) (T, error)) (T, error) {
	full := b.Path(file)
	return LoadAs(ctx, b, full, full, compile)
}

// LoadAs is Load with an explicit cache key and an already joined path.
func LoadAs[T any](ctx context.Context, b *Binding, key, full string, compile func(src string) (T, error)) (T, error) {
	return LoadWith(b, key, func() (T, error) {
		src, err := b.reader.ReadOnce(ctx, full)
		if err != nil {
			var zero T
			return zero, err
		}
		return compile(src)
	})
}

// LoadWith applies the production trust rule to build, for engines that
// read templates through their own loader.
func LoadWith[T any](b *Binding, key string, build func() (T, error)) (T, error) {
	if b.production {
		if v, ok := b.store.Get(key); ok {
			if t, ok := v.(T); ok {
				return t, nil
			}
		}
	}

	t, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	if b.production {
		b.store.Set(key, t)
	}
	return t, nil
}

// LoadRaw is Load for in-memory sources. Compiled raw templates are cached
// by a hash of their source, in production only.
func LoadRaw[T any](b *Binding, src string, compile func(src string) (T, error)) (T, error) {
	return LoadRawAs(b, RawKey(src), src, compile)
}

// LoadRawAs is LoadRaw with an explicit cache key, for raw pages whose
// compiled form also depends on their hints.
func LoadRawAs[T any](b *Binding, key, src string, compile func(src string) (T, error)) (T, error) {
	if b.production {
		if v, ok := b.store.Get(key); ok {
			if t, ok := v.(T); ok {
				return t, nil
			}
		}
	}

	t, err := compile(src)
	if err != nil {
		var zero T
		return zero, err
	}
	if b.production {
		b.store.Set(key, t)
	}
	return t, nil
}

// RawKey is the cache key for a raw template source. Extra string maps,
// such as hinted imports or partials, are folded into the hash in name
// order.
func RawKey(src string, extra ...map[string]string) string {
	d := xxhash.New()
	_, _ = d.WriteString(src)
	for _, m := range extra {
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			_, _ = d.WriteString("\x00" + name + "\x00" + m[name])
		}
	}
	return "raw-" + strconv.FormatUint(d.Sum64(), 16)
}

// PartialsFor returns the partials that apply to call: the global mapping
// overlaid with the per-call one.
func (b *Binding) PartialsFor(call *Call) map[string]string {
	if len(b.opts.Partials) == 0 && len(call.Options.Partials) == 0 {
		return nil
	}
	out := make(map[string]string, len(b.opts.Partials)+len(call.Options.Partials))
	for k, v := range b.opts.Partials {
		out[k] = v
	}
	for k, v := range call.Options.Partials {
		out[k] = v
	}
	return out
}

// PartialsKey builds the cache key of a partial bundle. The route path is
// part of the key because routes can ask for different partials for the
// same page.
func PartialsKey(page string, partials map[string]string, routePath string) string {
	names := make([]string, 0, len(partials))
	for name := range partials {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names)+2)
	parts = append(parts, page)
	for _, name := range names {
		parts = append(parts, name+":"+partials[name])
	}
	parts = append(parts, routePath)
	return strings.Join(parts, "|") + "-Partials"
}

// LoadPartials reads every partial body for call. In production the bundle
// is cached under PartialsKey.
func (b *Binding) LoadPartials(ctx context.Context, page string, call *Call) (map[string]string, error) {
	partials := b.PartialsFor(call)
	if len(partials) == 0 {
		return nil, nil
	}

	key := PartialsKey(page, partials, call.RoutePath)
	if b.production {
		if v, ok := b.store.Get(key); ok {
			if bundle, ok := v.(map[string]string); ok {
				return bundle, nil
			}
		}
	}

	bundle := make(map[string]string, len(partials))
	for name, file := range partials {
		body, err := b.ReadTemplate(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("%w %s (%s): %w", ErrMissingPartial, name, file, err)
		}
		bundle[name] = body
	}

	if b.production {
		b.store.Set(key, bundle)
	}
	return bundle, nil
}

// RawPartials loads the partial bundle of a raw page: the configured
// partials overlaid with the sources hinted under "partials". The returned
// key caches the compiled page; it is empty when partial files are part of
// the bundle, and the page is then compiled on every call.
func (b *Binding) RawPartials(ctx context.Context, p Raw, call *Call) (map[string]string, string, error) {
	hinted, err := p.StringsHint("partials")
	if err != nil {
		return nil, "", err
	}
	files, err := b.LoadPartials(ctx, Describe(p), call)
	if err != nil {
		return nil, "", err
	}
	if len(files) > 0 {
		bundle := make(map[string]string, len(files)+len(hinted))
		for name, body := range files {
			bundle[name] = body
		}
		for name, body := range hinted {
			bundle[name] = body
		}
		return bundle, "", nil
	}
	return hinted, RawKey(p.Source, hinted), nil
}

// Configure runs the OnConfigure hook, if any, with an engine config object.
func (b *Binding) Configure(config any) {
	if b.opts.OnConfigure != nil {
		b.opts.OnConfigure(config)
	}
}

// Setting returns an engine-native setting.
func (b *Binding) Setting(key string) (any, bool) {
	v, ok := b.opts.Settings[key]
	return v, ok
}

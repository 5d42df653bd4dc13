// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package enginetest builds bindings over in-memory template trees for
// adapter tests.
package enginetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"viewkit/internal/source"
	"viewkit/internal/view"
)

// Dir is the templates directory files are written under.
const Dir = "views"

// FS writes files, keyed by path relative to Dir, into a new MemMapFs.
func FS(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	mem := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(mem, filepath.Join(Dir, name), []byte(body), 0o644))
	}
	return mem
}

// Options returns development-mode options reading from mem.
func Options(mem afero.Fs) view.Options {
	return view.Options{
		Root:       Dir,
		Loader:     source.NewFS(mem),
		Production: view.Bool(false),
	}
}

// Renderer builds an adapter with factory and ties it to a renderer.
func Renderer(t testing.TB, factory view.Factory, instance any, o view.Options) *view.Renderer {
	t.Helper()
	b, err := view.NewBinding("test", o)
	require.NoError(t, err)
	a, err := factory(b, instance)
	require.NoError(t, err)
	r, err := view.NewRenderer(context.Background(), b, a)
	require.NoError(t, err)
	return r
}

// Render renders page and fails the test on error.
func Render(t testing.TB, r *view.Renderer, page view.Page, data view.Map, opts *view.CallOptions) string {
	t.Helper()
	html, err := r.Render(context.Background(), page, data, opts)
	require.NoError(t, err)
	return html
}

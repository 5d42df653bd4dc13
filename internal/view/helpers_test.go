// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"viewkit/internal/source"
)

// expandAdapter substitutes $key references with data values. It is small
// enough to exercise the render pipeline without a real engine.
type expandAdapter struct {
	b        *Binding
	compiles int
}

func (a *expandAdapter) Name() string               { return "expand" }
func (a *expandAdapter) Ext() string                { return "html" }
func (a *expandAdapter) LayoutBody(html string) any { return html }
func (a *expandAdapter) SupportsAsync() bool        { return true }

func (a *expandAdapter) compile(src string) (string, error) {
	a.compiles++
	if strings.Contains(src, "$!") {
		return "", fmt.Errorf("bad template")
	}
	return src, nil
}

func (a *expandAdapter) Render(ctx context.Context, call *Call) (string, error) {
	var (
		src string
		err error
	)
	switch p := call.Page.(type) {
	case Precompiled:
		return p(ctx, call.Data)
	case Raw:
		src, err = LoadRaw(a.b, p.Source, a.compile)
	case ByPath:
		src, err = Load(ctx, a.b, a.b.ResolvePage(string(p), a.Ext()), a.compile)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownPageShape, call.Page)
	}
	if err != nil {
		return "", err
	}
	return os.Expand(src, func(key string) string {
		return fmt.Sprint(call.Data[key])
	}), nil
}

// plainAdapter is expandAdapter without layout support.
type plainAdapter struct{ inner *expandAdapter }

func (p plainAdapter) Name() string { return "plain" }
func (p plainAdapter) Ext() string  { return p.inner.Ext() }
func (p plainAdapter) Render(ctx context.Context, call *Call) (string, error) {
	return p.inner.Render(ctx, call)
}

// testFS returns an in-memory filesystem holding files under "views".
func testFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	mem := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(mem, "views/"+name, []byte(body), 0o644))
	}
	return mem
}

func testOptions(mem afero.Fs) Options {
	return Options{
		Root:       "views",
		Loader:     source.NewFS(mem),
		Production: Bool(false),
	}
}

func newTestRenderer(t *testing.T, o Options) (*Renderer, *expandAdapter) {
	t.Helper()
	b, err := NewBinding("expand", o)
	require.NoError(t, err)
	a := &expandAdapter{b: b}
	r, err := NewRenderer(context.Background(), b, a)
	require.NoError(t, err)
	return r, a
}

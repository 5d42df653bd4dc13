// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package jet

import (
	"context"
	"sync"
	"testing"

	"github.com/CloudyKit/jet/v6"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewkit/internal/engines/enginetest"
	"viewkit/internal/view"
)

func TestRenderPath(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"index.jet": "Hello {{ name }}"})
	r := enginetest.Renderer(t, New, nil, enginetest.Options(mem))

	assert.Equal(t, "Hello ada", enginetest.Render(t, r, view.ByPath("index"), view.Map{"name": "ada"}, nil))
}

func TestRawMatchesPath(t *testing.T) {
	const src = "{{ range items }}[{{ . }}]{{ end }}"
	mem := enginetest.FS(t, map[string]string{"list.jet": src})
	r := enginetest.Renderer(t, New, nil, enginetest.Options(mem))
	data := view.Map{"items": []string{"a", "b"}}

	assert.Equal(t, "[a][b]", enginetest.Render(t, r, view.ByPath("list"), data, nil))
	assert.Equal(t, "[a][b]", enginetest.Render(t, r, view.Raw{Source: src}, data, nil))
}

func TestClearCacheDropsCompiledTemplates(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"index.jet": "v1"})
	o := enginetest.Options(mem)
	o.Production = view.Bool(true)
	r := enginetest.Renderer(t, New, nil, o)

	assert.Equal(t, "v1", enginetest.Render(t, r, view.ByPath("index"), nil, nil))

	require.NoError(t, afero.WriteFile(mem, enginetest.Dir+"/index.jet", []byte("v2"), 0o644))
	assert.Equal(t, "v1", enginetest.Render(t, r, view.ByPath("index"), nil, nil), "production trusts the compiled template")

	r.ClearCache()
	assert.Equal(t, "v2", enginetest.Render(t, r, view.ByPath("index"), nil, nil))
}

func TestRawImportsHint(t *testing.T) {
	o := enginetest.Options(enginetest.FS(t, nil))
	o.Production = view.Bool(true)
	r := enginetest.Renderer(t, New, nil, o)
	const src = `{{ import "/macros.jet" }}{{ yield shout() }}!`

	page := func(body string) view.Raw {
		return view.Raw{Source: src, Hints: view.Map{
			"imports": map[string]string{"/macros.jet": "{{ block shout() }}" + body + "{{ end }}"},
		}}
	}

	assert.Equal(t, "HEY!", enginetest.Render(t, r, page("HEY"), nil, nil))
	assert.Equal(t, "HO!", enginetest.Render(t, r, page("HO"), nil, nil), "imports are part of the raw cache key")
}

func TestRawImportsHintShape(t *testing.T) {
	r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))

	_, err := r.Render(context.Background(), view.Raw{Source: "x", Hints: view.Map{"imports": 42}}, nil, nil)
	assert.ErrorIs(t, err, view.ErrConfig)
}

func TestLayout(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{
		"layout.jet": "<main>{{ body | raw }}</main>",
		"index.jet":  "<b>{{ title }}</b>",
	})
	o := enginetest.Options(mem)
	o.Layout = "layout"
	r := enginetest.Renderer(t, New, nil, o)

	assert.Equal(t, "<main><b>x</b></main>", enginetest.Render(t, r, view.ByPath("index"), view.Map{"title": "x"}, nil))
}

func TestDataVariables(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"index.jet": "{{ site }}:{{ .title }}"})
	o := enginetest.Options(mem)
	o.DefaultContext = view.Map{"site": "acme"}
	o.EngineOptions.DataVariables = true
	r := enginetest.Renderer(t, New, nil, o)

	assert.Equal(t, "acme:Home", enginetest.Render(t, r, view.ByPath("index"), view.Map{"title": "Home"}, nil))
}

func TestGlobals(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"index.jet": "{{ brand }}"})
	r := enginetest.Renderer(t, New, map[string]any{"brand": "acme"}, enginetest.Options(mem))

	assert.Equal(t, "acme", enginetest.Render(t, r, view.ByPath("index"), nil, nil))
}

// recordingCache is a jet.Cache that counts stores.
type recordingCache struct {
	mu   sync.Mutex
	m    map[string]*jet.Template
	puts int
}

func (c *recordingCache) Get(path string) *jet.Template {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[path]
}

func (c *recordingCache) Put(path string, t *jet.Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = make(map[string]*jet.Template)
	}
	c.m[path] = t
	c.puts++
}

func TestCustomCacheRebuildsSet(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"index.jet": "x"})
	o := enginetest.Options(mem)
	o.EngineOptions.Settings = view.Map{"cache": &recordingCache{}}

	b, err := view.NewBinding(Name, o)
	require.NoError(t, err)
	a, err := New(b, nil)
	require.NoError(t, err)
	e := a.(*Engine)

	first := e.current()
	require.NoError(t, e.Configure())
	assert.NotSame(t, first, e.current(), "a custom cache forces a fresh set")

	r, err := view.NewRenderer(context.Background(), b, a)
	require.NoError(t, err)
	html, err := r.Render(context.Background(), view.ByPath("index"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "x", html)
}

func TestConfigureKeepsSetWithoutCache(t *testing.T) {
	b, err := view.NewBinding(Name, enginetest.Options(enginetest.FS(t, nil)))
	require.NoError(t, err)
	a, err := New(b, nil)
	require.NoError(t, err)
	e := a.(*Engine)

	first := e.current()
	require.NoError(t, e.Configure())
	assert.Same(t, first, e.current())
}

func TestBadCacheSetting(t *testing.T) {
	o := enginetest.Options(enginetest.FS(t, nil))
	o.EngineOptions.Settings = view.Map{"cache": "nope"}
	b, err := view.NewBinding(Name, o)
	require.NoError(t, err)

	_, err = New(b, nil)
	assert.ErrorIs(t, err, view.ErrConfig)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"

	"viewkit/internal/engines/enginetest"
	"viewkit/internal/view"
)

func TestRenderInterpolatesThenConverts(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"post.md": "# Hello {{ .name }}\n\nSome *text*.\n"})
	r := enginetest.Renderer(t, New, nil, enginetest.Options(mem))

	html := enginetest.Render(t, r, view.ByPath("post"), view.Map{"name": "ada"}, nil)
	assert.Contains(t, html, `<h1 id="hello-ada">Hello ada</h1>`)
	assert.Contains(t, html, "<em>text</em>")
}

func TestRawPage(t *testing.T) {
	r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))

	html := enginetest.Render(t, r, view.Raw{Source: "- {{ .a }}\n- b\n"}, view.Map{"a": "x"}, nil)
	assert.Contains(t, html, "<li>x</li>")
	assert.Contains(t, html, "<li>b</li>")
}

func TestPrecompiledOutputIsConverted(t *testing.T) {
	r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))
	page := view.Precompiled(func(context.Context, view.Map) (string, error) { return "**bold**", nil })

	html := enginetest.Render(t, r, page, nil, nil)
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestFencedCodeHighlighting(t *testing.T) {
	src := "```go\nfunc main() {}\n```\n"

	t.Run("inline styles", func(t *testing.T) {
		r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))
		html := enginetest.Render(t, r, view.Raw{Source: src}, nil, nil)
		assert.Contains(t, html, "<pre")
		assert.Contains(t, html, "style=")
		assert.NotContains(t, html, `class="chroma"`)
	})

	t.Run("classes", func(t *testing.T) {
		o := enginetest.Options(enginetest.FS(t, nil))
		o.EngineOptions.Settings = view.Map{"classes": true}
		r := enginetest.Renderer(t, New, nil, o)
		html := enginetest.Render(t, r, view.Raw{Source: src}, nil, nil)
		assert.Contains(t, html, `class="chroma"`)
	})
}

func TestRawHTMLPassesThrough(t *testing.T) {
	r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))

	html := enginetest.Render(t, r, view.Raw{Source: "<div class=\"note\">hi</div>\n"}, nil, nil)
	assert.Contains(t, html, `<div class="note">hi</div>`)
}

func TestCustomInstance(t *testing.T) {
	var configured any
	o := enginetest.Options(enginetest.FS(t, nil))
	o.EngineOptions.OnConfigure = func(c any) { configured = c }
	md := goldmark.New()
	r := enginetest.Renderer(t, New, md, o)

	html := enginetest.Render(t, r, view.Raw{Source: "# Title\n"}, nil, nil)
	assert.Equal(t, "<h1>Title</h1>\n", html)
	assert.Same(t, md, configured)
}

func TestBadSettings(t *testing.T) {
	o := enginetest.Options(enginetest.FS(t, nil))
	o.EngineOptions.Settings = view.Map{"style": 3}
	b, err := view.NewBinding(Name, o)
	require.NoError(t, err)

	_, err = New(b, nil)
	assert.ErrorIs(t, err, view.ErrConfig)

	_, err = New(b, "nope")
	assert.ErrorIs(t, err, view.ErrConfig)
}

func TestTemplateError(t *testing.T) {
	r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))
	_, err := r.Render(context.Background(), view.Raw{Source: "{{ .a "}, nil, nil)
	assert.Error(t, err)
}

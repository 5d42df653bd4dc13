// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package django

import (
	"context"
	"testing"

	"github.com/flosch/pongo2/v6"
	"github.com/stretchr/testify/assert"

	"viewkit/internal/engines/enginetest"
	"viewkit/internal/view"
)

func TestRenderPathEscapes(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"index.django": "<p>{{ name }}</p>"})
	r := enginetest.Renderer(t, New, nil, enginetest.Options(mem))

	assert.Equal(t, "<p>&lt;ada&gt;</p>", enginetest.Render(t, r, view.ByPath("index"), view.Map{"name": "<ada>"}, nil))
}

func TestRawMatchesPath(t *testing.T) {
	const src = "{% for i in items %}[{{ i }}]{% endfor %}"
	mem := enginetest.FS(t, map[string]string{"list.django": src})
	r := enginetest.Renderer(t, New, nil, enginetest.Options(mem))
	data := view.Map{"items": []string{"a", "b"}}

	assert.Equal(t, "[a][b]", enginetest.Render(t, r, view.ByPath("list"), data, nil))
	assert.Equal(t, "[a][b]", enginetest.Render(t, r, view.Raw{Source: src}, data, nil))
}

func TestExtendsAcrossTemplateDirs(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{
		"page.django":           `{% extends "base.django" %}{% block c %}hi {{ name }}{% endblock %}`,
		"../shared/base.django": `<main>{% block c %}{% endblock %}</main>`,
	})
	o := enginetest.Options(mem)
	o.Root = ""
	o.Templates = []string{enginetest.Dir, "shared"}
	r := enginetest.Renderer(t, New, nil, o)

	assert.Equal(t, "<main>hi ada</main>", enginetest.Render(t, r, view.ByPath("page"), view.Map{"name": "ada"}, nil))
}

func TestGlobals(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"index.django": "{{ site }}/{{ page }}"})
	r := enginetest.Renderer(t, New, pongo2.Context{"site": "acme"}, enginetest.Options(mem))

	assert.Equal(t, "acme/home", enginetest.Render(t, r, view.ByPath("index"), view.Map{"page": "home"}, nil))
}

func TestRawSettingsHint(t *testing.T) {
	r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))
	page := view.Raw{
		Source: "{{ site }}/{{ page }}",
		Hints:  view.Map{"settings": pongo2.Context{"site": "acme", "page": "default"}},
	}

	assert.Equal(t, "acme/home", enginetest.Render(t, r, page, view.Map{"page": "home"}, nil))
	assert.Equal(t, "acme/default", enginetest.Render(t, r, page, nil, nil))
}

func TestRawSettingsHintShape(t *testing.T) {
	r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))

	_, err := r.Render(context.Background(), view.Raw{Source: "x", Hints: view.Map{"settings": "nope"}}, nil, nil)
	assert.ErrorIs(t, err, view.ErrConfig)
}

func TestMissingTemplate(t *testing.T) {
	r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))
	_, err := r.Render(context.Background(), view.ByPath("nope"), nil, nil)
	assert.Error(t, err)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlebars

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewkit/internal/engines/enginetest"
	"viewkit/internal/view"
)

func TestRenderPath(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"index.hbs": "<h1>{{title}}</h1>"})
	r := enginetest.Renderer(t, New, nil, enginetest.Options(mem))

	assert.Equal(t, "<h1>&lt;Hi&gt;</h1>", enginetest.Render(t, r, view.ByPath("index"), view.Map{"title": "<Hi>"}, nil))
}

func TestRawMatchesPath(t *testing.T) {
	const src = "{{#each items}}<i>{{this}}</i>{{/each}}"
	mem := enginetest.FS(t, map[string]string{"list.hbs": src})
	r := enginetest.Renderer(t, New, nil, enginetest.Options(mem))
	data := view.Map{"items": []string{"a", "b"}}

	fromPath := enginetest.Render(t, r, view.ByPath("list"), data, nil)
	assert.Equal(t, "<i>a</i><i>b</i>", fromPath)
	assert.Equal(t, fromPath, enginetest.Render(t, r, view.Raw{Source: src}, data, nil))
}

func TestHelpers(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"index.hbs": "{{upper name}}"})
	helpers := map[string]any{"upper": func(s string) string { return strings.ToUpper(s) }}
	r := enginetest.Renderer(t, New, helpers, enginetest.Options(mem))

	assert.Equal(t, "ADA", enginetest.Render(t, r, view.ByPath("index"), view.Map{"name": "ada"}, nil))
}

func TestPartials(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{
		"index.hbs":        "{{> header}}<p>{{msg}}</p>",
		"partials/hdr.hbs": "<header>{{brand}}</header>",
	})
	o := enginetest.Options(mem)
	o.EngineOptions.Partials = map[string]string{"header": "partials/hdr.hbs"}
	r := enginetest.Renderer(t, New, nil, o)

	assert.Equal(t, "<header>acme</header><p>hi</p>",
		enginetest.Render(t, r, view.ByPath("index"), view.Map{"brand": "acme", "msg": "hi"}, nil))
}

func TestRawPartialsHint(t *testing.T) {
	o := enginetest.Options(enginetest.FS(t, nil))
	o.Production = view.Bool(true)
	r := enginetest.Renderer(t, New, nil, o)

	page := func(header string) view.Raw {
		return view.Raw{Source: "{{> header}}<p>{{msg}}</p>", Hints: view.Map{
			"partials": map[string]string{"header": header},
		}}
	}

	assert.Equal(t, "<header>acme</header><p>hi</p>",
		enginetest.Render(t, r, page("<header>{{brand}}</header>"), view.Map{"brand": "acme", "msg": "hi"}, nil))
	assert.Equal(t, "<h1>other</h1><p>hi</p>",
		enginetest.Render(t, r, page("<h1>other</h1>"), view.Map{"msg": "hi"}, nil))
}

func TestRawPartialsHintShape(t *testing.T) {
	r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))

	page := view.Raw{Source: "{{> header}}", Hints: view.Map{"partials": view.Map{"header": 1}}}
	_, err := r.Render(context.Background(), page, nil, nil)
	assert.ErrorIs(t, err, view.ErrConfig)
}

func TestMissingPartialFailsRegistrationInProduction(t *testing.T) {
	o := enginetest.Options(enginetest.FS(t, nil))
	o.Production = view.Bool(true)
	o.EngineOptions.Partials = map[string]string{"header": "partials/hdr.hbs"}

	b, err := view.NewBinding(Name, o)
	require.NoError(t, err)
	a, err := New(b, nil)
	require.NoError(t, err)

	_, err = view.NewRenderer(context.Background(), b, a)
	assert.ErrorIs(t, err, view.ErrConfig)
	assert.ErrorIs(t, err, view.ErrMissingPartial)
}

func TestMissingPartialFailsRenderInDevelopment(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{"index.hbs": "x"})
	o := enginetest.Options(mem)
	o.EngineOptions.Partials = map[string]string{"header": "partials/hdr.hbs"}
	r := enginetest.Renderer(t, New, nil, o)

	_, err := r.Render(context.Background(), view.ByPath("index"), nil, nil)
	assert.ErrorIs(t, err, view.ErrMissingPartial)
}

func TestLayout(t *testing.T) {
	mem := enginetest.FS(t, map[string]string{
		"layout.hbs": "<main>{{body}}</main>",
		"index.hbs":  "<b>{{title}}</b>",
	})
	o := enginetest.Options(mem)
	o.Layout = "layout"
	r := enginetest.Renderer(t, New, nil, o)

	assert.Equal(t, "<main><b>x</b></main>", enginetest.Render(t, r, view.ByPath("index"), view.Map{"title": "x"}, nil))
}

func TestParseError(t *testing.T) {
	r := enginetest.Renderer(t, New, nil, enginetest.Options(enginetest.FS(t, nil)))

	_, err := r.Render(context.Background(), view.Raw{Source: "{{#if x}}"}, nil, nil)
	assert.Error(t, err)
}

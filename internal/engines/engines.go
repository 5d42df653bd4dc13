// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engines is the closed set of template engines the view layer
// can bind to.
package engines

import (
	"viewkit/internal/engines/amber"
	"viewkit/internal/engines/django"
	"viewkit/internal/engines/gohtml"
	"viewkit/internal/engines/gotext"
	"viewkit/internal/engines/handlebars"
	"viewkit/internal/engines/jet"
	"viewkit/internal/engines/jinja"
	"viewkit/internal/engines/markdown"
	"viewkit/internal/engines/mustache"
	"viewkit/internal/engines/templ"
	"viewkit/internal/view"
)

// Lookup returns the adapter factory for an engine name.
func Lookup(name string) (view.Factory, bool) {
	switch name {
	case gohtml.Name:
		return gohtml.New, true
	case gotext.Name:
		return gotext.New, true
	case handlebars.Name:
		return handlebars.New, true
	case mustache.Name:
		return mustache.New, true
	case jinja.Name:
		return jinja.New, true
	case django.Name:
		return django.New, true
	case jet.Name:
		return jet.New, true
	case markdown.Name:
		return markdown.New, true
	case amber.Name:
		return amber.New, true
	case templ.Name:
		return templ.New, true
	default:
		return nil, false
	}
}

// Names lists the supported engine names.
func Names() []string {
	return []string{
		gohtml.Name,
		gotext.Name,
		handlebars.Name,
		mustache.Name,
		jinja.Name,
		django.Name,
		jet.Name,
		markdown.Name,
		amber.Name,
		templ.Name,
	}
}

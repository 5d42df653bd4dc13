// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package minify is the HTML post-processor for rendered pages. Inline
// CSS, JavaScript, SVG and JSON are minified along with the markup.
package minify

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"

	"viewkit/internal/view"
)

// Option keys read from the minifier options map. Each takes a bool.
const (
	KeepComments        = "keepComments"
	KeepDefaultAttrVals = "keepDefaultAttrVals"
	KeepDocumentTags    = "keepDocumentTags"
	KeepEndTags         = "keepEndTags"
	KeepQuotes          = "keepQuotes"
	KeepWhitespace      = "keepWhitespace"
)

// HTML implements view.Minifier.
type HTML struct{}

var _ view.Minifier = HTML{}

// Minify implements view.Minifier.
func (HTML) Minify(src string, opts view.Map) (string, error) {
	m := minify.New()
	m.Add("text/html", htmlMinifier(opts))
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("application/json", json.Minify)

	out, err := m.String("text/html", src)
	if err != nil {
		return "", fmt.Errorf("minify html: %w", err)
	}
	return out, nil
}

func htmlMinifier(opts view.Map) *html.Minifier {
	return &html.Minifier{
		KeepComments:        flag(opts, KeepComments),
		KeepDefaultAttrVals: flag(opts, KeepDefaultAttrVals),
		KeepDocumentTags:    flag(opts, KeepDocumentTags),
		KeepEndTags:         flag(opts, KeepEndTags),
		KeepQuotes:          flag(opts, KeepQuotes),
		KeepWhitespace:      flag(opts, KeepWhitespace),
	}
}

func flag(opts view.Map, key string) bool {
	v, _ := opts[key].(bool)
	return v
}

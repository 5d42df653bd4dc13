// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown renders Markdown pages. The source is first executed
// as a text/template against the render data, then converted to HTML with
// goldmark. Raw HTML in the source is passed through unchanged.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"viewkit/internal/view"
)

// Name is the engine key.
const Name = "markdown"

// DefaultStyle is the chroma style for fenced code blocks.
const DefaultStyle = "monokai"

// Engine is the Markdown adapter.
type Engine struct {
	b  *view.Binding
	md goldmark.Markdown
}

// New creates the adapter. instance may be nil or a configured
// goldmark.Markdown. Settings["style"] picks the chroma style and
// Settings["classes"] emits CSS classes instead of inline styles.
func New(b *view.Binding, instance any) (view.Adapter, error) {
	e := &Engine{b: b}
	switch x := instance.(type) {
	case nil:
		md, err := newMarkdown(b)
		if err != nil {
			return nil, err
		}
		e.md = md
	case goldmark.Markdown:
		e.md = x
	default:
		return nil, fmt.Errorf("%w: markdown engine expects a goldmark.Markdown, got %T", view.ErrConfig, instance)
	}
	b.Configure(e.md)
	return e, nil
}

func newMarkdown(b *view.Binding) (goldmark.Markdown, error) {
	name := DefaultStyle
	if v, ok := b.Setting("style"); ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: markdown style must be a string, got %T", view.ErrConfig, v)
		}
		name = s
	}
	classes, _ := b.Setting("classes")
	withClasses, _ := classes.(bool)

	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithCustomStyle(styles.Get(name)),
				highlighting.WithFormatOptions(html.WithClasses(withClasses)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	), nil
}

func (e *Engine) Name() string        { return Name }
func (e *Engine) Ext() string         { return "md" }
func (e *Engine) SupportsAsync() bool { return true }

// Render implements view.Adapter.
func (e *Engine) Render(ctx context.Context, call *view.Call) (string, error) {
	var (
		tpl *template.Template
		err error
	)
	switch p := call.Page.(type) {
	case view.Precompiled:
		out, err := p(ctx, call.Data)
		if err != nil {
			return "", err
		}
		return e.Convert(out)
	case view.Raw:
		tpl, err = view.LoadRaw(e.b, p.Source, compiler(view.Describe(p)))
	case view.ByPath:
		file := e.b.ResolvePage(string(p), e.Ext())
		tpl, err = view.Load(ctx, e.b, file, compiler(file))
	default:
		return "", fmt.Errorf("%w: %T", view.ErrUnknownPageShape, call.Page)
	}
	if err != nil {
		return "", err
	}

	var src bytes.Buffer
	if err := tpl.Execute(&src, call.Data); err != nil {
		return "", fmt.Errorf("execute markdown template %s: %w", tpl.Name(), err)
	}
	return e.Convert(src.String())
}

// Convert turns Markdown source into HTML.
func (e *Engine) Convert(source string) (string, error) {
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

func compiler(name string) func(string) (*template.Template, error) {
	return func(src string) (*template.Template, error) {
		tpl, err := template.New(name).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse markdown template %s: %w", name, err)
		}
		return tpl, nil
	}
}

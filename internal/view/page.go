// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package view

import (
	"context"
	"fmt"
)

// Page is a reference to something that can be rendered. It is one of
// ByPath, Raw or Precompiled.
type Page interface {
	isPage()
}

// ByPath names a template file relative to the templates directory.
type ByPath string

// Raw is template source held in memory. It bypasses page resolution and the
// filesystem entirely.
type Raw struct {
	Source string
	// Name identifies the template in engine error messages. Optional.
	Name string
	// Hints carries engine-specific extras. The jet engine reads "imports",
	// django reads "settings", and the html and handlebars engines read
	// "partials". Other engines ignore them.
	Hints Map
}

// StringsHint returns the hint under key as a name to source map. A missing
// hint is nil; a hint of any other shape is a configuration error.
func (r Raw) StringsHint(key string) (map[string]string, error) {
	switch v := r.Hints[key].(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return v, nil
	case Map:
		out := make(map[string]string, len(v))
		for name, body := range v {
			s, ok := body.(string)
			if !ok {
				return nil, fmt.Errorf("%w: hint %q entry %q is %T, not a string", ErrConfig, key, name, body)
			}
			out[name] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: hint %q must be a string map, got %T", ErrConfig, key, v)
	}
}

// MapHint returns the hint under key as a Map. A missing hint is nil.
func (r Raw) MapHint(key string) (Map, error) {
	switch v := r.Hints[key].(type) {
	case nil:
		return nil, nil
	case Map:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: hint %q must be a map, got %T", ErrConfig, key, v)
	}
}

// Precompiled is a render function built ahead of time. Its result is the
// render outcome.
type Precompiled func(ctx context.Context, data Map) (string, error)

func (ByPath) isPage()      {}
func (Raw) isPage()         {}
func (Precompiled) isPage() {}

// PageOf converts a loosely typed page argument into a Page. It accepts a
// Page, a string path, or a render function.
func PageOf(v any) (Page, error) {
	switch p := v.(type) {
	case nil:
		return nil, ErrMissingPage
	case Page:
		if missing(p) {
			return nil, ErrMissingPage
		}
		return p, nil
	case string:
		if p == "" {
			return nil, ErrMissingPage
		}
		return ByPath(p), nil
	case func(context.Context, Map) (string, error):
		if p == nil {
			return nil, ErrMissingPage
		}
		return Precompiled(p), nil
	case func(Map) string:
		if p == nil {
			return nil, ErrMissingPage
		}
		return Precompiled(func(_ context.Context, data Map) (string, error) {
			return p(data), nil
		}), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownPageShape, v)
	}
}

// missing reports whether p is an empty page reference.
func missing(p Page) bool {
	switch x := p.(type) {
	case nil:
		return true
	case ByPath:
		return x == ""
	case Precompiled:
		return x == nil
	case *Raw:
		return x == nil
	default:
		return false
	}
}

// Describe returns a short label for p, used in log lines and errors.
func Describe(p Page) string {
	switch x := p.(type) {
	case ByPath:
		return string(x)
	case Raw:
		if x.Name != "" {
			return x.Name
		}
		return "raw"
	case *Raw:
		if x != nil && x.Name != "" {
			return x.Name
		}
		return "raw"
	case Precompiled:
		return "precompiled"
	default:
		return fmt.Sprintf("%T", p)
	}
}

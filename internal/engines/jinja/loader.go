// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package jinja

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nikolalohinski/gonja/v2/loaders"

	"viewkit/internal/source"
	"viewkit/internal/view"
)

// loader resolves template names against the ordered templates
// directories and reads through the binding's de-duplicator. overlay holds
// in-memory sources, keyed by identifier. Compiled templates keep their
// loader for includes, so the context is detached from cancellation.
type loader struct {
	ctx     context.Context
	b       *view.Binding
	overlay map[string]string
}

var _ loaders.Loader = (*loader)(nil)

func newLoader(ctx context.Context, b *view.Binding, overlay map[string]string) *loader {
	return &loader{ctx: context.WithoutCancel(ctx), b: b, overlay: overlay}
}

func (l *loader) Resolve(name string) (string, error) {
	if _, ok := l.overlay[name]; ok {
		return name, nil
	}
	if filepath.IsAbs(name) && l.b.Loader().Exists(name) {
		return name, nil
	}
	for _, dir := range l.b.Dirs() {
		full := filepath.Join(dir, name)
		if l.b.Loader().Exists(full) {
			return full, nil
		}
	}
	return "", fmt.Errorf("template %s not found in %v: %w", name, l.b.Dirs(), source.ErrNotFound)
}

func (l *loader) Read(name string) (io.Reader, error) {
	if src, ok := l.overlay[name]; ok {
		return strings.NewReader(src), nil
	}
	full, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}
	src, err := l.b.Reader().ReadOnce(l.ctx, full)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(src), nil
}

// Inherit keeps resolution rooted at the templates directories, so
// includes and extends are always relative to them.
func (l *loader) Inherit(string) (loaders.Loader, error) {
	return l, nil
}

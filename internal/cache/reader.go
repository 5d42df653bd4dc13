// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"viewkit/internal/source"
)

// Reader collapses concurrent reads of the same path into a single call to
// the underlying Loader. Every caller waiting on a path gets the same bytes
// or the same error. A finished read is forgotten immediately; Reader is not
// a cache.
type Reader struct {
	loader source.Loader
	logger *slog.Logger
	group  singleflight.Group
}

// NewReader creates a Reader in front of loader. A nil logger means
// slog.Default().
func NewReader(loader source.Loader, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{loader: loader, logger: logger}
}

// Loader returns the source the Reader reads from.
func (r *Reader) Loader() source.Loader {
	return r.loader
}

// ReadOnce returns the contents of path, sharing an in-flight read if one
// exists. The read keeps the values of the first caller's context but not
// its cancellation, since other callers may be waiting on it.
func (r *Reader) ReadOnce(ctx context.Context, path string) (string, error) {
	v, err, shared := r.group.Do(path, func() (any, error) {
		b, err := r.loader.ReadFile(context.WithoutCancel(ctx), path)
		if err != nil {
			return "", err
		}
		r.logger.Debug("template read", "path", path, "size", humanize.Bytes(uint64(len(b))))
		return string(b), nil
	})
	if shared {
		r.logger.Debug("template read shared", "path", path)
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package source provides the places template bodies are read from.
// The rendering layer never touches a filesystem or database directly; it
// goes through a Loader so tests and deployments can swap the backing store.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when a template does not exist in a source.
var ErrNotFound = fs.ErrNotExist

// Loader reads template bodies by path.
type Loader interface {
	// ReadFile returns the full contents of the named template.
	ReadFile(ctx context.Context, name string) ([]byte, error)
	// Exists reports whether the named template is present.
	Exists(name string) bool
}

// FS is a Loader backed by an afero filesystem. Use afero.NewOsFs for disk
// access and afero.NewMemMapFs in tests.
type FS struct {
	fs afero.Fs
}

// NewFS wraps an afero filesystem. A nil fs means the OS filesystem.
func NewFS(fsys afero.Fs) *FS {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FS{fs: fsys}
}

// Fs returns the underlying afero filesystem.
func (f *FS) Fs() afero.Fs {
	return f.fs
}

// ReadFile implements Loader.
func (f *FS) ReadFile(_ context.Context, name string) ([]byte, error) {
	b, err := afero.ReadFile(f.fs, name)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	return b, nil
}

// Exists implements Loader.
func (f *FS) Exists(name string) bool {
	ok, err := afero.Exists(f.fs, name)
	return err == nil && ok
}

// IsNotFound reports whether err means the template is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

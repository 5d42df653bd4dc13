// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package precompile turns Amber templates into html/template files ahead
// of serving.
package precompile

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/eknkc/amber"
	"github.com/natefinch/atomic"
	"github.com/spf13/afero"
)

// AmberExt is the source extension picked up by Amber.
const AmberExt = ".amber"

// OutputExt is the extension of compiled files.
const OutputExt = ".html"

// Amber compiles every .amber file under src into dest, keeping the
// relative layout. dest is created if absent and skipped while walking.
// Running it again overwrites the previous output. It returns the number
// of files written.
func Amber(fsys afero.Fs, src, dest string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := fsys.MkdirAll(dest, 0o755); err != nil {
		return 0, fmt.Errorf("create amber destination %s: %w", dest, err)
	}
	_, onDisk := fsys.(*afero.OsFs)

	count := 0
	err := afero.Walk(fsys, src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != src && filepath.Clean(path) == filepath.Clean(dest) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != AmberExt {
			return nil
		}

		out, err := compileAmber(fsys, path, onDisk)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		target := filepath.Join(dest, strings.TrimSuffix(rel, AmberExt)+OutputExt)
		if err := write(fsys, onDisk, target, out); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("precompile amber templates in %s: %w", src, err)
	}

	if count == 0 {
		logger.Warn("no amber templates found", "dir", src)
	} else {
		logger.Info("amber templates precompiled", "count", count, "dest", dest)
	}
	return count, nil
}

// compileAmber uses ParseFile on disk so extends and import resolve
// relative to the template; other filesystems parse the bare source.
func compileAmber(fsys afero.Fs, path string, onDisk bool) (string, error) {
	c := amber.New()
	if onDisk {
		if err := c.ParseFile(path); err != nil {
			return "", fmt.Errorf("parse amber template %s: %w", path, err)
		}
	} else {
		src, err := afero.ReadFile(fsys, path)
		if err != nil {
			return "", fmt.Errorf("read amber template %s: %w", path, err)
		}
		if err := c.ParseData(src, path); err != nil {
			return "", fmt.Errorf("parse amber template %s: %w", path, err)
		}
	}
	out, err := c.CompileString()
	if err != nil {
		return "", fmt.Errorf("compile amber template %s: %w", path, err)
	}
	return out, nil
}

func write(fsys afero.Fs, onDisk bool, target, out string) error {
	if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	if onDisk {
		if err := atomic.WriteFile(target, bytes.NewReader([]byte(out))); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		return nil
	}
	if err := afero.WriteFile(fsys, target, []byte(out), os.FileMode(0o644)); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

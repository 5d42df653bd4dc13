// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"time"
)

// Template is a template body stored in Postgres.
type Template struct {
	Path      string
	Body      string
	Version   int
	UpdatedAt time.Time
}

// DB is a Loader that keeps templates in the view_templates table. Paths are
// stored in slash form exactly as the resolver produces them.
type DB struct {
	db *sql.DB
}

// NewDB creates a DB source on an open connection pool.
func NewDB(db *sql.DB) *DB {
	return &DB{db: db}
}

// ReadFile implements Loader.
func (s *DB) ReadFile(ctx context.Context, name string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM view_templates WHERE path = $1
	`, clean(name)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read template %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	return []byte(body), nil
}

// Exists implements Loader.
func (s *DB) Exists(name string) bool {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM view_templates WHERE path = $1)
	`, clean(name)).Scan(&exists)
	return err == nil && exists
}

// Put inserts or replaces a template body and bumps its version.
func (s *DB) Put(ctx context.Context, name, body string) (*Template, error) {
	t := &Template{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO view_templates (path, body, version)
		VALUES ($1, $2, 1)
		ON CONFLICT (path) DO UPDATE SET
			body = EXCLUDED.body, version = view_templates.version + 1, updated_at = NOW()
		RETURNING path, body, version, updated_at
	`, clean(name), body).Scan(&t.Path, &t.Body, &t.Version, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("put template: %w", err)
	}
	return t, nil
}

// Delete removes a template. Deleting a missing template is not an error.
func (s *DB) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM view_templates WHERE path = $1`, clean(name)); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// List returns every stored template ordered by path.
func (s *DB) List(ctx context.Context) ([]Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, body, version, updated_at FROM view_templates ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.Path, &t.Body, &t.Version, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func clean(name string) string {
	return path.Clean("/" + name)[1:]
}

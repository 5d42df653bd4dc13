// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config loads the server and view configuration from environment
// variables, an optional config file and command-line flags, through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"viewkit/internal/view"
)

// Template sources.
const (
	SourceFS = "fs"
	SourceDB = "db"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheValkey = "valkey"
)

// Config holds all configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection, used when Source is "db"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey, used when Cache is "valkey"
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	CacheTTL       time.Duration

	// View settings
	Engine               string
	Templates            []string
	Root                 string
	Layout               string
	ViewExt              string
	IncludeViewExtension bool
	Charset              string
	MaxCache             int
	PropertyName         string
	AsyncPropertyName    string
	Minify               bool
	MinifyExclude        []string
	Async                bool
	Destination          string
	Source               string
	Cache                string
	Watch                bool
}

// env maps viper keys to the environment variables they are read from.
var env = map[string]string{
	"host":                "APP_HOST",
	"port":                "APP_PORT",
	"env":                 "APP_ENV",
	"postgres.host":       "POSTGRES_HOST",
	"postgres.port":       "POSTGRES_PORT",
	"postgres.user":       "POSTGRES_USER",
	"postgres.password":   "POSTGRES_PASSWORD",
	"postgres.db":         "POSTGRES_DB",
	"valkey.host":         "VALKEY_HOST",
	"valkey.port":         "VALKEY_PORT",
	"valkey.password":     "VALKEY_PASSWORD",
	"valkey.ttl":          "VIEWKIT_CACHE_TTL",
	"view.engine":         "VIEWKIT_ENGINE",
	"view.templates":      "VIEWKIT_TEMPLATES",
	"view.root":           "VIEWKIT_ROOT",
	"view.layout":         "VIEWKIT_LAYOUT",
	"view.ext":            "VIEWKIT_VIEW_EXT",
	"view.include_ext":    "VIEWKIT_INCLUDE_VIEW_EXT",
	"view.charset":        "VIEWKIT_CHARSET",
	"view.max_cache":      "VIEWKIT_MAX_CACHE",
	"view.property":       "VIEWKIT_PROPERTY",
	"view.async_property": "VIEWKIT_ASYNC_PROPERTY",
	"view.minify":         "VIEWKIT_MINIFY",
	"view.minify_exclude": "VIEWKIT_MINIFY_EXCLUDE",
	"view.async":          "VIEWKIT_ASYNC",
	"view.destination":    "VIEWKIT_DESTINATION",
	"view.source":         "VIEWKIT_SOURCE",
	"view.cache":          "VIEWKIT_CACHE",
	"view.watch":          "VIEWKIT_WATCH",
}

// SetDefaults registers the development defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "viewkit")
	v.SetDefault("postgres.password", "changeme")
	v.SetDefault("postgres.db", "viewkit")

	v.SetDefault("valkey.host", "localhost")
	v.SetDefault("valkey.port", "6379")
	v.SetDefault("valkey.ttl", "10m")

	v.SetDefault("view.engine", "html")
	v.SetDefault("view.templates", []string{"templates"})
	v.SetDefault("view.charset", view.DefaultCharset)
	v.SetDefault("view.max_cache", view.DefaultMaxCache)
	v.SetDefault("view.property", view.DefaultPropertyName)
	v.SetDefault("view.source", SourceFS)
	v.SetDefault("view.cache", CacheMemory)
}

// Load reads configuration from v. Environment variables are bound here;
// flags and config files are bound by the caller. Returns an error if a
// value is invalid or, in production, a critical value is missing.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	cfg := &Config{
		Host: v.GetString("host"),
		Port: v.GetString("port"),
		Env:  v.GetString("env"),

		DBHost:     v.GetString("postgres.host"),
		DBPort:     v.GetString("postgres.port"),
		DBUser:     v.GetString("postgres.user"),
		DBPassword: v.GetString("postgres.password"),
		DBName:     v.GetString("postgres.db"),

		ValkeyHost:     v.GetString("valkey.host"),
		ValkeyPort:     v.GetString("valkey.port"),
		ValkeyPassword: v.GetString("valkey.password"),
		CacheTTL:       v.GetDuration("valkey.ttl"),

		Engine:               v.GetString("view.engine"),
		Templates:            list(v, "view.templates"),
		Root:                 v.GetString("view.root"),
		Layout:               v.GetString("view.layout"),
		ViewExt:              v.GetString("view.ext"),
		IncludeViewExtension: v.GetBool("view.include_ext"),
		Charset:              v.GetString("view.charset"),
		MaxCache:             v.GetInt("view.max_cache"),
		PropertyName:         v.GetString("view.property"),
		AsyncPropertyName:    v.GetString("view.async_property"),
		Minify:               v.GetBool("view.minify"),
		MinifyExclude:        list(v, "view.minify_exclude"),
		Async:                v.GetBool("view.async"),
		Destination:          v.GetString("view.destination"),
		Source:               v.GetString("view.source"),
		Cache:                v.GetString("view.cache"),
		Watch:                v.GetBool("view.watch"),
	}

	switch cfg.Source {
	case SourceFS, SourceDB:
	default:
		return nil, fmt.Errorf("unknown template source %q", cfg.Source)
	}
	switch cfg.Cache {
	case CacheMemory, CacheValkey:
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache)
	}
	if cfg.MaxCache <= 0 {
		return nil, fmt.Errorf("view.max_cache must be positive, got %d", cfg.MaxCache)
	}
	if cfg.Env == "production" && cfg.Source == SourceDB && cfg.DBPassword == "changeme" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
	}

	return cfg, nil
}

// list reads a string slice. Values from the environment arrive as one
// string and are split on commas.
func list(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction reports whether templates are trusted once compiled.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ViewOptions converts the view settings into registration options. The
// engine is bound without a native instance; minifier, cache and loader
// seams are filled in by the caller.
func (c *Config) ViewOptions() view.Options {
	return view.Options{
		Engine:               map[string]any{c.Engine: nil},
		Templates:            c.Templates,
		Root:                 c.Root,
		IncludeViewExtension: c.IncludeViewExtension,
		ViewExt:              c.ViewExt,
		EngineOptions: view.EngineOptions{
			PathsToExcludeMinifier: c.MinifyExclude,
			Async:                  c.Async,
			Destination:            c.Destination,
		},
		Charset:           c.Charset,
		Layout:            c.Layout,
		MaxCache:          c.MaxCache,
		Production:        view.Bool(c.IsProduction()),
		PropertyName:      c.PropertyName,
		AsyncPropertyName: c.AsyncPropertyName,
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"viewkit/internal/cache"
	"viewkit/internal/config"
	"viewkit/internal/database"
	"viewkit/internal/minify"
	"viewkit/internal/plugin"
	"viewkit/internal/server"
	"viewkit/internal/source"
	"viewkit/internal/view"
	"viewkit/internal/watch"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve templates over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
	addViewFlags(cmd.Flags())
	return cmd
}

// deps are the services a configuration needs, closed on shutdown.
type deps struct {
	db     *sql.DB
	valkey *redis.Client
}

func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.valkey != nil {
		d.valkey.Close()
	}
}

// viewOptions builds registration options from cfg and connects to the
// services it names.
func viewOptions(cfg *config.Config) (view.Options, *deps, error) {
	d := &deps{}
	opts := cfg.ViewOptions()

	switch cfg.Source {
	case config.SourceDB:
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return opts, d, err
		}
		d.db = db
		if err := database.Migrate(db); err != nil {
			return opts, d, err
		}
		opts.Loader = source.NewDB(db)
	default:
		opts.Loader = source.NewFS(nil)
	}

	var store cache.Store = cache.NewLRU(cfg.MaxCache)
	if cfg.Cache == config.CacheValkey {
		client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return opts, d, err
		}
		d.valkey = client
		store = cache.NewTiered(store, client, cfg.CacheTTL)
	}
	opts.Cache = store

	if cfg.Minify {
		opts.EngineOptions.Minifier = minify.HTML{}
	}
	opts.DefaultContext = view.Map{"env": cfg.Env}
	return opts, d, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"engine", cfg.Engine,
		"source", cfg.Source,
		"cache", cfg.Cache,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, d, err := viewOptions(cfg)
	defer d.Close()
	if err != nil {
		return err
	}

	app := server.New()
	r, err := plugin.Register(ctx, app, opts)
	if err != nil {
		return fmt.Errorf("register view engine: %w", err)
	}
	routes(app, r, opts.WithDefaults().PropertyName)

	if cfg.Watch && cfg.Source == config.SourceFS {
		w, err := watch.New(r.Binding().Dirs(), watch.DefaultDelay, r.ClearCache, slog.Default())
		if err != nil {
			return err
		}
		go w.Run(ctx)
		slog.Info("watching templates", "dirs", r.Binding().Dirs())
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// routes serves each template by name and exposes cache maintenance.
func routes(app *server.App, r *view.Renderer, prop string) {
	app.Get("/", func(rep *server.Reply) error {
		return rep.View(prop, view.ByPath("index"), view.Map{"path": "/"}, nil)
	})
	app.Get("/{page:[a-zA-Z0-9_-]+}", func(rep *server.Reply) error {
		page := chi.URLParam(rep.Request(), "page")
		return rep.View(prop, view.ByPath(page), view.Map{"path": "/" + page}, nil)
	})
	app.Post("/_cache/clear", func(rep *server.Reply) error {
		r.ClearCache()
		rep.Header().Set("Content-Type", "application/json")
		return rep.Send(`{"cleared":true}`)
	})
}

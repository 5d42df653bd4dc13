// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"viewkit/internal/config"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "viewkit",
		Short:         "Render pages with a pluggable template engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogger(v.GetString("log-level"))
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
			slog.Debug("config file loaded", "path", v.ConfigFileUsed())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	v.BindPFlag("log-level", pf.Lookup("log-level"))

	root.AddCommand(
		newServeCmd(v),
		newPrecompileCmd(v),
		newTemplatesCmd(v),
	)
	return root
}

// viewFlags are shared by the commands that bind a view engine. Keys are
// the viper keys read by config.Load.
var viewFlags = map[string]string{
	"engine":    "view.engine",
	"templates": "view.templates",
	"root":      "view.root",
	"layout":    "view.layout",
	"minify":    "view.minify",
	"watch":     "view.watch",
	"source":    "view.source",
	"cache":     "view.cache",
	"env":       "env",
	"port":      "port",
}

func addViewFlags(fs *pflag.FlagSet) {
	fs.String("engine", "html", "template engine")
	fs.StringSlice("templates", []string{"templates"}, "template directories, searched in order")
	fs.String("root", "", "single template directory, overrides --templates")
	fs.String("layout", "", "global layout template")
	fs.Bool("minify", false, "minify rendered HTML")
	fs.Bool("watch", false, "clear the template cache when files change")
	fs.String("source", config.SourceFS, "template source (fs, db)")
	fs.String("cache", config.CacheMemory, "template cache (memory, valkey)")
	fs.String("env", "development", "environment (development, production)")
	fs.String("port", "8080", "listen port")
}

// bindFlags binds only flags that were set, so environment variables and
// the config file still apply otherwise.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := viewFlags[f.Name]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

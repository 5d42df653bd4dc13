// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"viewkit/internal/config"
	"viewkit/internal/database"
	"viewkit/internal/source"
)

func newTemplatesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage templates stored in PostgreSQL",
	}

	open := func() (*source.DB, func(), error) {
		cfg, err := config.Load(v)
		if err != nil {
			return nil, nil, err
		}
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return source.NewDB(db), func() { db.Close() }, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "put <path> <file>",
		Short: "Store a local file as a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			src, closeDB, err := open()
			if err != nil {
				return err
			}
			defer closeDB()
			t, err := src.Put(cmd.Context(), args[0], string(body))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%d (%s)\n", t.Path, t.Version, humanize.Bytes(uint64(len(t.Body))))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, closeDB, err := open()
			if err != nil {
				return err
			}
			defer closeDB()
			list, err := src.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tVERSION\tSIZE\tUPDATED")
			for _, t := range list {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", t.Path, t.Version, humanize.Bytes(uint64(len(t.Body))), humanize.Time(t.UpdatedAt))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, closeDB, err := open()
			if err != nil {
				return err
			}
			defer closeDB()
			return src.Delete(cmd.Context(), args[0])
		},
	})
	return cmd
}

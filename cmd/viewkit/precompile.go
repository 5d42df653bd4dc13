// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"viewkit/internal/precompile"
)

func newPrecompileCmd(v *viper.Viper) *cobra.Command {
	var src, dest string
	cmd := &cobra.Command{
		Use:   "precompile",
		Short: "Compile Amber templates to html/template files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if src == "" {
				src = v.GetString("view.root")
			}
			if src == "" {
				src = "templates"
			}
			if dest == "" {
				dest = filepath.Join(src, "compiled")
			}
			n, err := precompile.Amber(afero.NewOsFs(), src, dest, slog.Default())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d templates compiled into %s\n", n, dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&src, "src", "", "directory holding .amber templates")
	cmd.Flags().StringVar(&dest, "dest", "", "output directory (default <src>/compiled)")
	return cmd
}

package main

import (
	"fmt"

	"github.com/agenthands/geoparse/internal/app"
	"github.com/agenthands/geoparse/internal/render"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the built-in sample queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		p, err := withThreshold(cmd, a.Pipeline)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, d := range app.Demos {
			fmt.Fprintf(out, "Query %d: %s\n", i+1, d.Query)
			if err := runQuery(cmd, p, d.Query, format); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

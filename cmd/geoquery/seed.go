package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/agenthands/geoparse/internal/core/gazetteer"
	"github.com/agenthands/geoparse/internal/driver"
	"github.com/agenthands/geoparse/internal/logging"
	"github.com/spf13/cobra"
)

var resetGraph bool

var seedGraphCmd = &cobra.Command{
	Use:   "seed-graph",
	Short: "Copy the file gazetteer into Memgraph",
	Long: `Load the configured gazetteer file and write it to Memgraph as :Place nodes,
so servers can start with gazetteer.source = "memgraph".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, _, err := logging.New(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		ctx := cmd.Context()
		fileCfg := cfg.Gazetteer
		fileCfg.Source = "file"
		ix, err := gazetteer.Open(ctx, fileCfg, nil)
		if err != nil {
			return err
		}

		d, err := driver.Connect(ctx, cfg.Memgraph)
		if err != nil {
			return fmt.Errorf("failed to connect to Memgraph: %w", err)
		}
		defer d.Close(ctx)

		if resetGraph {
			if err := gazetteer.ResetGraph(ctx, d); err != nil {
				return err
			}
		}
		n, err := gazetteer.SeedGraph(ctx, d, ix)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d places to %s\n", n, cfg.Memgraph.URI)
		return nil
	},
}

func init() {
	seedGraphCmd.Flags().BoolVar(&resetGraph, "reset", false, "delete existing :Place nodes first")
}

package main

import (
	"fmt"
	"strings"

	"github.com/agenthands/geoparse/internal/core"
	"github.com/agenthands/geoparse/internal/render"
	"github.com/spf13/cobra"
)

var (
	outputFormat string
	threshold    float64
)

var queryCmd = &cobra.Command{
	Use:   "query <text...>",
	Short: "Resolve the places mentioned in one query",
	Long: `Resolve the places mentioned in one query.

Examples:
  geoquery query "Tell me about the climate in Mumbay and Deli"
  geoquery query --format detailed "Compare Mumbai, Delhi and Bangalore"
  geoquery query --threshold 75 "Weather in Deli"`,
	Args: cobra.MinimumNArgs(1),
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
		return runQuery(cmd, p, strings.Join(args, " "), format)
	},
}

func init() {
	for _, c := range []*cobra.Command{queryCmd, replCmd, demoCmd} {
		c.Flags().StringVarP(&outputFormat, "format", "f", "standard", "output format: standard, confidence, detailed, json or styled")
		c.Flags().Float64VarP(&threshold, "threshold", "t", 0, "fuzzy threshold override in [0, 100]")
	}
}

func withThreshold(cmd *cobra.Command, p *core.Pipeline) (*core.Pipeline, error) {
	if !cmd.Flags().Changed("threshold") {
		return p, nil
	}
	return p.WithThreshold(threshold)
}

func runQuery(cmd *cobra.Command, p *core.Pipeline, text string, format render.Format) error {
	result, err := p.ProcessQuery(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("failed to process query: %w", err)
	}
	out, err := render.Render(result, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

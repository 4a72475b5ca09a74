package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/agenthands/geoparse/internal/render"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Resolve queries read interactively from stdin",
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
		fmt.Fprintln(out, "Enter a query, or 'quit' to exit.")
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			switch strings.ToLower(line) {
			case "":
				continue
			case "quit", "exit", "q":
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			if err := runQuery(cmd, p, line, format); err != nil {
				return err
			}
		}
	},
}

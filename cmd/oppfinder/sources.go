package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured data sources and their request budgets",
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		format, err := parseFormat(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		c := cliCore(cmd)
		sources := c.orchestrator(nil).Sources(cmd.Context())
		if err := writeSources(os.Stdout, sources, format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	sourcesCmd.Flags().StringP("output", "o", formatTable, "Output format: table, json or yaml")
	rootCmd.AddCommand(sourcesCmd)
}

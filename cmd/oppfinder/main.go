package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "oppfinder",
	Short: "Discover, score and track business opportunities",
	Long: `oppfinder pulls signals from public sources (GitHub, Reddit, Hacker News,
Product Hunt, news feeds and insider posts), scores them for commercial relevance
and serves the results over HTTP.

Run without a subcommand to start the API server.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe(cmd)
	},
}

func init() {
	cfgPath := os.Getenv("OF_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	envOnly := false
	if raw := os.Getenv("OF_ENV_ONLY"); raw != "" {
		envOnly = strings.EqualFold(raw, "true") || raw == "1"
	}
	rootCmd.PersistentFlags().String("config", cfgPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().Bool("env-only", envOnly, "Read configuration from OF_* environment variables only")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

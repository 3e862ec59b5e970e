package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/psehrawa/opportunities-finder/internal/discovery"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run one discovery pass and print scored results",
	Long: `Run one discovery pass against the configured sources and print the scored
results. Nothing is written to the database.

Examples:
  oppfinder discover
  oppfinder discover --source github --since 24h --limit 20
  oppfinder discover --min-score 60 --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		source, _ := cmd.Flags().GetString("source")
		since, _ := cmd.Flags().GetDuration("since")
		limit, _ := cmd.Flags().GetInt("limit")
		minScore, _ := cmd.Flags().GetFloat64("min-score")
		explain, _ := cmd.Flags().GetBool("explain")
		output, _ := cmd.Flags().GetString("output")

		format, err := parseFormat(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		c := cliCore(cmd)
		if since <= 0 {
			since = c.cfg.Discovery.Since
		}
		if limit <= 0 {
			limit = c.cfg.Discovery.LimitPerSource
		}
		now := time.Now()
		req := discovery.Request{
			Countries: parseCountries(c.cfg.Discovery.Countries),
			Since:     now.Add(-since),
			Limit:     limit,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var items []models.Opportunity
		if source != "" {
			items, err = c.orchestrator(nil).DiscoverFromSource(ctx, source, req)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		} else {
			sink := &collectSink{}
			res := c.orchestrator(sink).DiscoverAll(ctx, req)
			printPassSummary(res)
			items = sink.Items()
		}

		rows := scoreRows(c.engine, items, now, minScore, explain)
		if err := writeRows(os.Stdout, rows, format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// printPassSummary reports per-source counts on stderr so stdout stays parseable.
func printPassSummary(res discovery.PassResult) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, s := range res.Sources {
		switch {
		case s.Panicked:
			fmt.Fprintf(os.Stderr, "%s %-14s failed\n", red("✗"), s.Source)
		case s.TimedOut:
			fmt.Fprintf(os.Stderr, "%s %-14s timed out after %s\n", yellow("!"), s.Source, s.Elapsed.Round(time.Millisecond))
		default:
			fmt.Fprintf(os.Stderr, "%s %-14s %d found in %s\n", green("✓"), s.Source, s.Discovered, s.Elapsed.Round(time.Millisecond))
		}
	}
	fmt.Fprintf(os.Stderr, "%d opportunities from %d sources\n", res.Discovered, len(res.Sources))
}

func init() {
	discoverCmd.Flags().StringP("source", "s", "", "Only query this source (e.g. github, reddit, hacker_news)")
	discoverCmd.Flags().Duration("since", 0, "Look back this far (default from discovery.since)")
	discoverCmd.Flags().IntP("limit", "n", 0, "Maximum records per source (default from discovery.limit_per_source)")
	discoverCmd.Flags().Float64("min-score", 0, "Hide results scoring below this")
	discoverCmd.Flags().Bool("explain", false, "Show the factors behind each score")
	discoverCmd.Flags().StringP("output", "o", formatTable, "Output format: table, json or yaml")
	rootCmd.AddCommand(discoverCmd)
}

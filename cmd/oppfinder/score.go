package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/psehrawa/opportunities-finder/internal/db"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/opportunity"
	gormrepository "github.com/psehrawa/opportunities-finder/internal/repository/gorm"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score unscored opportunities in the database",
	Long: `Run one scoring pass over records discovered within --hours that have no score
yet, exactly like the scheduled scoring job.

With --file the database is not touched: opportunities are read from a JSON array
("-" for stdin) and printed with their factor breakdown. Useful for tuning weights
against a saved sample:
  curl -s localhost:8080/api/v1/opportunities?limit=100 | jq .data > sample.json
  OF_SCORING_WEIGHTS_SOCIAL=0.25 OF_SCORING_WEIGHTS_FUNDING=0.15 oppfinder score --file sample.json`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if file != "" {
			scoreFile(cmd, file)
			return
		}
		hours, _ := cmd.Flags().GetInt("hours")
		scoreDatabase(cmd, time.Duration(hours)*time.Hour)
	},
}

func scoreDatabase(cmd *cobra.Command, lookback time.Duration) {
	c := cliCore(cmd)
	dbConn, err := db.Open(c.cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close(dbConn)

	manager := &opportunity.Manager{
		Repo:        gormrepository.New(dbConn.Gorm),
		Engine:      c.engine,
		Logger:      c.logger,
		Concurrency: c.cfg.Scoring.Concurrency,
	}
	if lookback <= 0 {
		lookback = c.cfg.Scoring.Lookback
	}
	res := manager.ScoreUnscored(cmd.Context(), lookback)

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	fmt.Printf("%d candidates, %s scored, %s failed in %s\n",
		res.Candidates, green(res.Scored), red(res.Failed), res.Elapsed.Round(time.Millisecond))
	if res.Failed > 0 {
		os.Exit(1)
	}
}

func scoreFile(cmd *cobra.Command, path string) {
	output, _ := cmd.Flags().GetString("output")
	minScore, _ := cmd.Flags().GetFloat64("min-score")

	format, err := parseFormat(output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	items, err := readOpportunities(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	c := cliCore(cmd)
	rows := scoreRows(c.engine, items, time.Now(), minScore, true)
	if err := writeRows(os.Stdout, rows, format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func readOpportunities(r io.Reader) ([]models.Opportunity, error) {
	var items []models.Opportunity
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode opportunities: %w", err)
	}
	return items, nil
}

func init() {
	scoreCmd.Flags().Int("hours", 0, "Score records discovered within this many hours (default from scoring.lookback)")
	scoreCmd.Flags().StringP("file", "f", "", "Score a JSON array of opportunities instead of the database")
	scoreCmd.Flags().Float64("min-score", 0, "With --file, hide results scoring below this")
	scoreCmd.Flags().StringP("output", "o", formatTable, "With --file, output format: table, json or yaml")
	rootCmd.AddCommand(scoreCmd)
}

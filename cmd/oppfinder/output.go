package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/psehrawa/opportunities-finder/internal/discovery"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/scoring"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"

	maxTitleWidth = 60
)

func parseFormat(raw string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(raw)); f {
	case "", formatTable:
		return formatTable, nil
	case formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", raw)
	}
}

type scoredRow struct {
	Source     models.DataSource      `json:"source" yaml:"source"`
	ExternalID string                 `json:"external_id" yaml:"external_id"`
	Title      string                 `json:"title" yaml:"title"`
	Type       models.OpportunityType `json:"type" yaml:"type"`
	Industry   models.Industry        `json:"industry,omitempty" yaml:"industry,omitempty"`
	Company    string                 `json:"company,omitempty" yaml:"company,omitempty"`
	URL        string                 `json:"url,omitempty" yaml:"url,omitempty"`
	Score      string                 `json:"score" yaml:"score"`
	Priority   scoring.Priority       `json:"priority" yaml:"priority"`
	Breakdown  *scoring.Breakdown     `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`

	score float64
}

// scoreRows scores items and orders them best first. Rows under minScore are dropped.
func scoreRows(engine *scoring.Engine, items []models.Opportunity, now time.Time, minScore float64, explain bool) []scoredRow {
	rows := make([]scoredRow, 0, len(items))
	for i := range items {
		item := &items[i]
		b := engine.Breakdown(item, now)
		s := b.Total.InexactFloat64()
		if s < minScore {
			continue
		}
		row := scoredRow{
			Source:     item.Source,
			ExternalID: item.ExternalID,
			Title:      item.Title,
			Type:       item.Type,
			Industry:   item.Industry,
			Company:    item.CompanyName,
			URL:        item.URL,
			Score:      b.Total.StringFixed(2),
			Priority:   engine.Priority(b.Total),
			score:      s,
		}
		if explain {
			bd := b
			row.Breakdown = &bd
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].score > rows[j].score })
	return rows
}

func writeRows(w io.Writer, rows []scoredRow, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, rows)
	case formatYAML:
		return writeYAML(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	explain := len(rows) > 0 && rows[0].Breakdown != nil
	if explain {
		fmt.Fprintln(tw, "SCORE\tSOURCE\tTYPE\tFUND\tSIZE\tIND\tSOC\tREC\tSRC\tTITLE\tPRIORITY")
	} else {
		fmt.Fprintln(tw, "SCORE\tSOURCE\tTYPE\tTITLE\tPRIORITY")
	}
	for _, r := range rows {
		if explain && r.Breakdown != nil {
			b := r.Breakdown
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%s\t%s\n",
				r.Score, r.Source, r.Type, b.Funding, b.Size, b.Industry, b.Social, b.Recency, b.Source,
				truncate(r.Title, maxTitleWidth), paintPriority(r.Priority))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Score, r.Source, r.Type, truncate(r.Title, maxTitleWidth), paintPriority(r.Priority))
	}
	return tw.Flush()
}

func writeSources(w io.Writer, sources []discovery.SourceInfo, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, sources)
	case formatYAML:
		return writeYAML(w, sources)
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOURCE\tFREE\tBUDGET\tNOTE\tENABLED")
	for _, s := range sources {
		enabled := green("yes")
		if !s.Enabled {
			enabled = red("no")
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%d/%d\t%s\t%s\n",
			s.Name, s.DisplayName, s.Free, s.Budget.Remaining, s.Budget.Limit, s.ConfigError, enabled)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func paintPriority(p scoring.Priority) string {
	switch p {
	case scoring.PriorityHigh:
		return color.New(color.FgGreen, color.Bold).Sprint(p)
	case scoring.PriorityMedium:
		return color.New(color.FgYellow).Sprint(p)
	case scoring.PriorityLow:
		return color.New(color.FgCyan).Sprint(p)
	default:
		return color.New(color.FgHiBlack).Sprint(p)
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

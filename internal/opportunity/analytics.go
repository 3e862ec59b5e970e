package opportunity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/repository"
)

var ErrAnalyticsUnavailable = errors.New("analytics repository is not configured")

const (
	defaultSeriesDays = 30
	maxSeriesDays     = 365
	topIndustryLimit  = 5
	highScoreWindow   = 7 * 24 * time.Hour
)

var highScoreThreshold = decimal.NewFromInt(80)

// funnelStages is the status workflow in conversion order.
var funnelStages = []models.OpportunityStatus{
	models.StatusDiscovered,
	models.StatusAnalyzed,
	models.StatusEngaged,
	models.StatusConverted,
}

type Growth struct {
	WeeklyPercent  float64 `json:"weekly_percent"`
	MonthlyPercent float64 `json:"monthly_percent"`
}

type Dashboard struct {
	Totals      repository.Totals           `json:"totals"`
	ByStatus    []repository.GroupCount     `json:"by_status"`
	BySource    []repository.GroupCount     `json:"by_source"`
	TopIndustry []repository.IndustryMetric `json:"top_industries"`
	Growth      Growth                      `json:"growth"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

type FunnelStage struct {
	Status models.OpportunityStatus `json:"status"`
	Count  int64                    `json:"count"`
	// Rate is this stage over the previous one, in percent. The first stage is 100.
	Rate float64 `json:"rate"`
}

type Funnel struct {
	Stages []FunnelStage `json:"stages"`
	// Overall is converted over discovered, in percent.
	Overall float64 `json:"overall"`
}

func (m *Manager) analytics() (repository.AnalyticsRepository, error) {
	if m == nil || m.Analytics == nil {
		return nil, ErrAnalyticsUnavailable
	}
	return m.Analytics, nil
}

func (m *Manager) Dashboard(ctx context.Context) (*Dashboard, error) {
	repo, err := m.analytics()
	if err != nil {
		return nil, err
	}
	now := m.clock()
	out := &Dashboard{GeneratedAt: now}

	if out.Totals, err = repo.OpportunityTotals(ctx, highScoreThreshold, now.Add(-highScoreWindow)); err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	if out.ByStatus, err = repo.CountAllBy(ctx, "status"); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	if out.BySource, err = repo.CountAllBy(ctx, "source"); err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}
	if out.TopIndustry, err = repo.TopIndustries(ctx, topIndustryLimit); err != nil {
		return nil, fmt.Errorf("top industries: %w", err)
	}
	if out.Growth.WeeklyPercent, err = m.growth(ctx, repo, now, 7*24*time.Hour); err != nil {
		return nil, err
	}
	if out.Growth.MonthlyPercent, err = m.growth(ctx, repo, now, 30*24*time.Hour); err != nil {
		return nil, err
	}
	return out, nil
}

// growth compares the last period with the one before it.
func (m *Manager) growth(ctx context.Context, repo repository.AnalyticsRepository, now time.Time, period time.Duration) (float64, error) {
	current, err := repo.CountDiscoveredBetween(ctx, now.Add(-period), time.Time{})
	if err != nil {
		return 0, fmt.Errorf("growth current %s: %w", period, err)
	}
	previous, err := repo.CountDiscoveredBetween(ctx, now.Add(-2*period), now.Add(-period))
	if err != nil {
		return 0, fmt.Errorf("growth previous %s: %w", period, err)
	}
	return growthPercent(current, previous), nil
}

func growthPercent(current, previous int64) float64 {
	switch {
	case previous == 0 && current == 0:
		return 0
	case previous == 0:
		return 100
	}
	return round2(float64(current-previous) / float64(previous) * 100)
}

// TimeSeries returns daily discovery counts for the last days days. days <= 0 means 30.
func (m *Manager) TimeSeries(ctx context.Context, days int) ([]repository.DailyCount, error) {
	repo, err := m.analytics()
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultSeriesDays
	}
	if days > maxSeriesDays {
		days = maxSeriesDays
	}
	since := m.clock().Add(-time.Duration(days) * 24 * time.Hour)
	rows, err := repo.DailyCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	if rows == nil {
		rows = []repository.DailyCount{}
	}
	return rows, nil
}

func (m *Manager) Funnel(ctx context.Context) (*Funnel, error) {
	repo, err := m.analytics()
	if err != nil {
		return nil, err
	}
	counts, err := repo.CountAllBy(ctx, "status")
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	byStatus := make(map[string]int64, len(counts))
	for _, c := range counts {
		byStatus[c.Key] = c.Count
	}

	out := &Funnel{Stages: make([]FunnelStage, 0, len(funnelStages))}
	for i, status := range funnelStages {
		stage := FunnelStage{Status: status, Count: byStatus[string(status)]}
		if i == 0 {
			stage.Rate = 100
		} else {
			stage.Rate = percent(stage.Count, out.Stages[i-1].Count)
		}
		out.Stages = append(out.Stages, stage)
	}
	out.Overall = percent(out.Stages[len(out.Stages)-1].Count, out.Stages[0].Count)
	return out, nil
}

// SourcePerformance returns per source aggregates with conversion rates filled in.
func (m *Manager) SourcePerformance(ctx context.Context) ([]repository.SourcePerformance, error) {
	repo, err := m.analytics()
	if err != nil {
		return nil, err
	}
	rows, err := repo.SourcePerformance(ctx)
	if err != nil {
		return nil, fmt.Errorf("source performance: %w", err)
	}
	if rows == nil {
		rows = []repository.SourcePerformance{}
	}
	for i := range rows {
		rows[i].ConversionRate = percent(rows[i].Conversions, rows[i].Total)
	}
	return rows, nil
}

// percent is 0 when the denominator is 0.
func percent(n, of int64) float64 {
	if of == 0 {
		return 0
	}
	return round2(float64(n) / float64(of) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

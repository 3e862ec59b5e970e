package opportunity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/repository"
)

type discoveredRange struct {
	from, to time.Time
}

type stubAnalytics struct {
	totals     repository.Totals
	statuses   []repository.GroupCount
	sources    []repository.GroupCount
	industries []repository.IndustryMetric
	perf       []repository.SourcePerformance
	days       []repository.DailyCount
	// discovered answers CountDiscoveredBetween keyed by the from offset in days.
	discovered map[int]int64
	err        error

	highSince time.Time
	since     time.Time
	ranges    []discoveredRange
}

func (s *stubAnalytics) OpportunityTotals(_ context.Context, _ decimal.Decimal, highSince time.Time) (repository.Totals, error) {
	s.highSince = highSince
	return s.totals, s.err
}

func (s *stubAnalytics) CountDiscoveredBetween(_ context.Context, from, to time.Time) (int64, error) {
	s.ranges = append(s.ranges, discoveredRange{from, to})
	days := int(fixedNow.Sub(from) / (24 * time.Hour))
	return s.discovered[days], s.err
}

func (s *stubAnalytics) DailyCounts(_ context.Context, since time.Time) ([]repository.DailyCount, error) {
	s.since = since
	return s.days, s.err
}

func (s *stubAnalytics) CountAllBy(_ context.Context, column string) ([]repository.GroupCount, error) {
	if column == "source" {
		return s.sources, s.err
	}
	return s.statuses, s.err
}

func (s *stubAnalytics) SourcePerformance(context.Context) ([]repository.SourcePerformance, error) {
	return s.perf, s.err
}

func (s *stubAnalytics) TopIndustries(_ context.Context, limit int) ([]repository.IndustryMetric, error) {
	if limit < len(s.industries) {
		return s.industries[:limit], s.err
	}
	return s.industries, s.err
}

func analyticsManager(repo repository.AnalyticsRepository) *Manager {
	return &Manager{Analytics: repo, now: func() time.Time { return fixedNow }}
}

func TestDashboard(t *testing.T) {
	repo := &stubAnalytics{
		totals:   repository.Totals{Total: 12, Active: 10, AverageScore: decimal.NewFromInt(64), RecentHighScore: 3},
		statuses: []repository.GroupCount{{Key: "DISCOVERED", Count: 8}, {Key: "CONVERTED", Count: 4}},
		sources:  []repository.GroupCount{{Key: "GITHUB", Count: 12}},
		industries: []repository.IndustryMetric{
			{Industry: models.IndustryAI, Count: 5}, {Industry: models.IndustryFintech, Count: 4},
			{Industry: models.IndustryDevOps, Count: 1}, {Industry: models.IndustryGaming, Count: 1},
			{Industry: models.IndustryEdtech, Count: 1}, {Industry: models.IndustryIoT, Count: 1},
		},
		// this week 6, prior week 4, this month 10, prior month 0
		discovered: map[int]int64{7: 6, 14: 4, 30: 10, 60: 0},
	}
	d, err := analyticsManager(repo).Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Totals.Total != 12 || d.Totals.RecentHighScore != 3 {
		t.Fatalf("totals=%+v", d.Totals)
	}
	if !repo.highSince.Equal(fixedNow.Add(-7 * 24 * time.Hour)) {
		t.Fatalf("high score window starts %v", repo.highSince)
	}
	if len(d.ByStatus) != 2 || len(d.BySource) != 1 || d.BySource[0].Key != "GITHUB" {
		t.Fatalf("by status=%v by source=%v", d.ByStatus, d.BySource)
	}
	if len(d.TopIndustry) != 5 || d.TopIndustry[0].Industry != models.IndustryAI {
		t.Fatalf("industries=%v want top 5", d.TopIndustry)
	}
	if d.Growth.WeeklyPercent != 50 || d.Growth.MonthlyPercent != 100 {
		t.Fatalf("growth=%+v want weekly=50 monthly=100", d.Growth)
	}
	if len(repo.ranges) != 4 || !repo.ranges[0].to.IsZero() || !repo.ranges[1].to.Equal(repo.ranges[0].from) {
		t.Fatalf("ranges=%+v", repo.ranges)
	}
	if !d.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("generated=%v", d.GeneratedAt)
	}
}

func TestGrowthPercent(t *testing.T) {
	cases := []struct {
		current, previous int64
		want              float64
	}{
		{0, 0, 0},
		{5, 0, 100},
		{6, 4, 50},
		{1, 3, -66.67},
	}
	for _, c := range cases {
		if got := growthPercent(c.current, c.previous); got != c.want {
			t.Fatalf("growth(%d,%d)=%v want=%v", c.current, c.previous, got, c.want)
		}
	}
}

func TestTimeSeriesWindow(t *testing.T) {
	repo := &stubAnalytics{}
	m := analyticsManager(repo)

	rows, err := m.TimeSeries(context.Background(), 0)
	if err != nil || rows == nil || len(rows) != 0 {
		t.Fatalf("rows=%v,%v want empty non-nil", rows, err)
	}
	if want := fixedNow.Add(-30 * 24 * time.Hour); !repo.since.Equal(want) {
		t.Fatalf("since=%v want=%v", repo.since, want)
	}

	repo.days = []repository.DailyCount{{Day: fixedNow.Truncate(24 * time.Hour), Count: 3}}
	rows, err = m.TimeSeries(context.Background(), 1000)
	if err != nil || len(rows) != 1 || rows[0].Count != 3 {
		t.Fatalf("rows=%v,%v", rows, err)
	}
	if want := fixedNow.Add(-365 * 24 * time.Hour); !repo.since.Equal(want) {
		t.Fatalf("since=%v want capped at 365 days", repo.since)
	}
}

func TestFunnel(t *testing.T) {
	repo := &stubAnalytics{statuses: []repository.GroupCount{
		{Key: "DISCOVERED", Count: 100},
		{Key: "ANALYZED", Count: 40},
		{Key: "ENGAGED", Count: 10},
		{Key: "CONVERTED", Count: 3},
		{Key: "DISCARDED", Count: 50},
	}}
	f, err := analyticsManager(repo).Funnel(context.Background())
	if err != nil {
		t.Fatalf("funnel: %v", err)
	}
	want := []FunnelStage{
		{Status: models.StatusDiscovered, Count: 100, Rate: 100},
		{Status: models.StatusAnalyzed, Count: 40, Rate: 40},
		{Status: models.StatusEngaged, Count: 10, Rate: 25},
		{Status: models.StatusConverted, Count: 3, Rate: 30},
	}
	if len(f.Stages) != len(want) {
		t.Fatalf("stages=%+v", f.Stages)
	}
	for i := range want {
		if f.Stages[i] != want[i] {
			t.Fatalf("stage %d=%+v want=%+v", i, f.Stages[i], want[i])
		}
	}
	if f.Overall != 3 {
		t.Fatalf("overall=%v want=3", f.Overall)
	}
}

func TestFunnelWithNoRecordsHasZeroRates(t *testing.T) {
	f, err := analyticsManager(&stubAnalytics{}).Funnel(context.Background())
	if err != nil {
		t.Fatalf("funnel: %v", err)
	}
	for _, s := range f.Stages[1:] {
		if s.Count != 0 || s.Rate != 0 {
			t.Fatalf("stage=%+v want zero", s)
		}
	}
	if f.Overall != 0 {
		t.Fatalf("overall=%v", f.Overall)
	}
}

func TestSourcePerformanceConversionRate(t *testing.T) {
	repo := &stubAnalytics{perf: []repository.SourcePerformance{
		{Source: models.SourceGitHub, Total: 8, Conversions: 2},
		{Source: models.SourceReddit, Total: 0},
	}}
	rows, err := analyticsManager(repo).SourcePerformance(context.Background())
	if err != nil {
		t.Fatalf("perf: %v", err)
	}
	if rows[0].ConversionRate != 25 || rows[1].ConversionRate != 0 {
		t.Fatalf("rates=%v,%v want=25,0", rows[0].ConversionRate, rows[1].ConversionRate)
	}
}

func TestAnalyticsErrors(t *testing.T) {
	var m *Manager
	if _, err := m.Dashboard(context.Background()); !errors.Is(err, ErrAnalyticsUnavailable) {
		t.Fatalf("nil manager err=%v", err)
	}
	if _, err := (&Manager{}).Funnel(context.Background()); !errors.Is(err, ErrAnalyticsUnavailable) {
		t.Fatalf("no repo err=%v", err)
	}

	boom := errors.New("boom")
	m = analyticsManager(&stubAnalytics{err: boom})
	if _, err := m.Dashboard(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("dashboard err=%v", err)
	}
	if _, err := m.TimeSeries(context.Background(), 7); !errors.Is(err, boom) {
		t.Fatalf("series err=%v", err)
	}
	if _, err := m.SourcePerformance(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("perf err=%v", err)
	}
}

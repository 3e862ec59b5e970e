package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/psehrawa/opportunities-finder/internal/models"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestWeightedTotalAllMax(t *testing.T) {
	e := MustDefault()
	got := e.weightedTotal(Breakdown{Funding: 100, Size: 100, Industry: 100, Social: 100, Recency: 100, Source: 100})
	if math.Abs(got-100) > 1e-9 {
		t.Fatalf("weighted=%v want=100", got)
	}
}

func TestScoreNeutralReddit(t *testing.T) {
	e := MustDefault()
	o := &models.Opportunity{Source: models.SourceReddit, DiscoveredAt: now.Add(-2 * time.Hour)}
	// 0.25*50 + 0.2*50 + 0.2*50 + 0.15*50 + 0.1*90 + 0.1*60 = 55, halved for missing confidence.
	if got := e.Score(o, now); !got.Equal(decimal.RequireFromString("27.5")) {
		t.Fatalf("score=%s want=27.50", got)
	}
}

func TestScoreAppliesMultipliers(t *testing.T) {
	e := MustDefault()
	o := &models.Opportunity{
		Source:          models.SourceReddit,
		DiscoveredAt:    now.Add(-2 * time.Hour),
		ConfidenceScore: models.Confidence(65),
		Type:            models.TypeProductLaunch,
		Country:         "GB",
	}
	// 55 * 0.65 * 1.05 * 1.05 = 39.414375
	if got := e.Score(o, now); !got.Equal(decimal.RequireFromString("39.41")) {
		t.Fatalf("score=%s want=39.41", got)
	}
}

func TestScoreHonoursZeroConfidence(t *testing.T) {
	e := MustDefault()
	o := &models.Opportunity{Source: models.SourceReddit, DiscoveredAt: now.Add(-2 * time.Hour), ConfidenceScore: models.Confidence(0)}
	if got := e.Score(o, now); !got.IsZero() {
		t.Fatalf("score=%s want=0", got)
	}
	if b := e.Breakdown(o, now); b.Confidence != 0 {
		t.Fatalf("confidence=%v want=0", b.Confidence)
	}
}

func TestScoreClampedToHundred(t *testing.T) {
	e := MustDefault()
	o := &models.Opportunity{
		Source:          models.SourceCrunchbasePro,
		FundingStage:    models.StageSeriesC,
		CompanySize:     models.SizeStartup,
		Industry:        models.IndustryAI,
		Type:            models.TypeStartupFunding,
		Country:         "US",
		ConfidenceScore: models.Confidence(100),
		DiscoveredAt:    now,
	}
	if got := e.Score(o, now); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("score=%s want=100", got)
	}
}

func TestScoreBounds(t *testing.T) {
	e := MustDefault()
	cases := []*models.Opportunity{
		{},
		{Source: models.SourceYouTubeAPI, CompanySize: models.SizeEnterprise, Type: models.TypeConferenceAnnouncement, DiscoveredAt: now.Add(-5000 * time.Hour), ConfidenceScore: models.Confidence(1)},
		{Source: models.SourceGitHub, Industry: models.IndustryGaming, DiscoveredAt: now.Add(time.Hour)},
	}
	for i, o := range cases {
		s := e.Score(o, now)
		if s.IsNegative() || s.GreaterThan(decimal.NewFromInt(100)) {
			t.Fatalf("case %d score=%s out of bounds", i, s)
		}
		if !s.Equal(s.Round(2)) {
			t.Fatalf("case %d score=%s has more than two decimals", i, s)
		}
	}
}

func TestScoreNilIsNeutral(t *testing.T) {
	if got := MustDefault().Score(nil, now); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("score=%s want=50", got)
	}
}

func TestRecencyMonotonic(t *testing.T) {
	hours := []int{0, 1, 2, 6, 7, 24, 25, 72, 73, 168, 169, 400, 1000, 10000}
	prev := math.Inf(1)
	for _, h := range hours {
		got := recencyScore(now.Add(-time.Duration(h)*time.Hour), now)
		if got > prev {
			t.Fatalf("recency(%dh)=%v rose above %v", h, got, prev)
		}
		prev = got
	}
	if got := recencyScore(now.Add(-10000*time.Hour), now); got != 20 {
		t.Fatalf("recency floor=%v want=20", got)
	}
	if got := recencyScore(time.Time{}, now); got != 50 {
		t.Fatalf("recency zero time=%v want=50", got)
	}
	// 90 minutes truncates to one whole hour.
	if got := recencyScore(now.Add(-90*time.Minute), now); got != 100 {
		t.Fatalf("recency(90m)=%v want=100", got)
	}
}

func TestSocialScoreGitHub(t *testing.T) {
	o := &models.Opportunity{Source: models.SourceGitHub}
	o.SetMeta(map[string]string{
		"stars":       "1000",
		"forks":       "200",
		"pushed_at":   now.Format(time.RFC3339),
		"open_issues": "0",
	})
	if got := socialScore(o, now); got != 80 {
		t.Fatalf("social=%v want=80", got)
	}

	o.SetMeta(map[string]string{"stars": "abc", "forks": "100", "open_issues": "50"})
	// forks 12.5 + issues 7.5, stars ignored.
	if got := socialScore(o, now); got != 20 {
		t.Fatalf("social=%v want=20", got)
	}

	other := &models.Opportunity{Source: models.SourceReddit}
	other.SetMeta(map[string]string{"stars": "100000"})
	if got := socialScore(other, now); got != 50 {
		t.Fatalf("non-github social=%v want=50", got)
	}
}

func TestEngagementPotential(t *testing.T) {
	e := MustDefault()
	tests := []struct {
		o    models.Opportunity
		want string
	}{
		{models.Opportunity{CompanySize: models.SizeStartup, FundingStage: models.StageSeed, DiscoveredAt: now.Add(-2 * time.Hour)}, "100"},
		{models.Opportunity{CompanySize: models.SizeMedium, DiscoveredAt: now.Add(-48 * time.Hour)}, "70"},
		{models.Opportunity{CompanySize: models.SizeEnterprise}, "50"},
		{models.Opportunity{FundingStage: models.StageSeriesA, DiscoveredAt: now.Add(-100 * time.Hour)}, "65"},
	}
	for i, tt := range tests {
		if got := e.EngagementPotential(&tt.o, now); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("case %d engagement=%s want=%s", i, got, tt.want)
		}
	}
}

func TestPriority(t *testing.T) {
	e := MustDefault()
	tests := []struct {
		score string
		want  Priority
	}{
		{"95", PriorityHigh},
		{"80", PriorityHigh},
		{"79.99", PriorityMedium},
		{"45", PriorityLow},
		{"10", PriorityMinimal},
	}
	for _, tt := range tests {
		if got := e.Priority(decimal.RequireFromString(tt.score)); got != tt.want {
			t.Fatalf("priority(%s)=%s want=%s", tt.score, got, tt.want)
		}
	}
}

func TestNewEngineRejectsBadWeights(t *testing.T) {
	if _, err := NewEngine(Weights{Funding: 1, Size: 1}, DefaultThresholds()); err == nil {
		t.Fatalf("expected weight validation error")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(decimal.NewFromInt(150)); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("clamp=%s want=100", got)
	}
	if got := Clamp(decimal.NewFromInt(-3)); !got.IsZero() {
		t.Fatalf("clamp=%s want=0", got)
	}
	if got := Clamp(decimal.RequireFromString("42.456")); !got.Equal(decimal.RequireFromString("42.46")) {
		t.Fatalf("clamp=%s want=42.46", got)
	}
}

package scoring

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

type (
	Weights    = config.WeightsConfig
	Thresholds = config.ThresholdsConfig
)

func DefaultWeights() Weights {
	return Weights{Funding: 0.25, Size: 0.20, Industry: 0.20, Social: 0.15, Recency: 0.10, Source: 0.10}
}

func DefaultThresholds() Thresholds {
	return Thresholds{High: 80, Medium: 60, Low: 40, Minimum: 20}
}

type Priority string

const (
	PriorityHigh    Priority = "HIGH"
	PriorityMedium  Priority = "MEDIUM"
	PriorityLow     Priority = "LOW"
	PriorityMinimal Priority = "MINIMAL"
)

// Breakdown exposes every factor behind a score.
type Breakdown struct {
	Funding           float64         `json:"funding"`
	Size              float64         `json:"size"`
	Industry          float64         `json:"industry"`
	Social            float64         `json:"social"`
	Recency           float64         `json:"recency"`
	Source            float64         `json:"source"`
	Raw               float64         `json:"raw"`
	Confidence        float64         `json:"confidence"`
	TypeMultiplier    float64         `json:"type_multiplier"`
	CountryMultiplier float64         `json:"country_multiplier"`
	Total             decimal.Decimal `json:"total"`
}

// Engine computes commercial relevance scores. It holds no mutable state and does no I/O,
// so one instance is safe for concurrent use.
type Engine struct {
	weights    Weights
	thresholds Thresholds
}

func NewEngine(w Weights, t Thresholds) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Engine{weights: w, thresholds: t}, nil
}

// MustDefault returns an engine with the default weights and thresholds.
func MustDefault() *Engine {
	e, err := NewEngine(DefaultWeights(), DefaultThresholds())
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Engine) Weights() Weights       { return e.weights }
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Score returns the final 0..100 score rounded half-up to two decimals.
// Any failure yields the neutral 50.00.
func (e *Engine) Score(o *models.Opportunity, now time.Time) decimal.Decimal {
	return e.Breakdown(o, now).Total
}

func (e *Engine) Breakdown(o *models.Opportunity, now time.Time) (b Breakdown) {
	defer func() {
		if r := recover(); r != nil {
			b = Breakdown{Total: round2(neutral)}
		}
	}()

	b.Funding = clamp(fundingScore(o.FundingStage))
	b.Size = clamp(sizeScore(o.CompanySize))
	b.Industry = clamp(industryScore(o.Industry))
	b.Social = clamp(socialScore(o, now))
	b.Recency = clamp(recencyScore(o.DiscoveredAt, now))
	b.Source = clamp(sourceScore(o.Source))
	b.Raw = e.weightedTotal(b)

	b.Confidence = 0.5
	if o.ConfidenceScore != nil {
		b.Confidence = clamp(o.ConfidenceScore.InexactFloat64()) / 100
	}
	b.TypeMultiplier = multiplier(typeMultipliers, o.Type)
	b.CountryMultiplier = multiplier(countryMultipliers, o.Country)

	total := b.Raw * b.Confidence * b.TypeMultiplier * b.CountryMultiplier
	if math.IsNaN(total) || math.IsInf(total, 0) {
		total = neutral
	}
	b.Total = round2(clamp(total))
	return b
}

func (e *Engine) weightedTotal(b Breakdown) float64 {
	w := e.weights
	return w.Funding*b.Funding + w.Size*b.Size + w.Industry*b.Industry +
		w.Social*b.Social + w.Recency*b.Recency + w.Source*b.Source
}

// EngagementPotential estimates how reachable the opportunity is right now.
func (e *Engine) EngagementPotential(o *models.Opportunity, now time.Time) decimal.Decimal {
	if o == nil {
		return round2(neutral)
	}
	p := neutral
	switch o.CompanySize {
	case models.SizeStartup:
		p += 20
	case models.SizeSmall:
		p += 15
	case models.SizeMedium:
		p += 10
	}
	switch o.FundingStage {
	case models.StagePreSeed:
		p += 20
	case models.StageSeed:
		p += 15
	case models.StageSeriesA:
		p += 10
	}
	if !o.DiscoveredAt.IsZero() {
		switch h := hoursSince(o.DiscoveredAt, now); {
		case h <= 24:
			p += 15
		case h <= 72:
			p += 10
		case h <= 168:
			p += 5
		}
	}
	return round2(clamp(p))
}

func (e *Engine) Priority(score decimal.Decimal) Priority {
	s := score.InexactFloat64()
	switch {
	case s >= e.thresholds.High:
		return PriorityHigh
	case s >= e.thresholds.Medium:
		return PriorityMedium
	case s >= e.thresholds.Low:
		return PriorityLow
	default:
		return PriorityMinimal
	}
}

func fundingScore(s models.FundingStage) float64 {
	if v, ok := fundingStageScores[s]; ok {
		return v
	}
	return neutral
}

func sizeScore(s models.CompanySize) float64 {
	if v, ok := companySizeScores[s]; ok {
		return v
	}
	return neutral
}

func industryScore(i models.Industry) float64 {
	if i == "" {
		return neutral
	}
	if v, ok := industryScores[i]; ok {
		return v
	}
	return otherIndustry
}

func sourceScore(s models.DataSource) float64 {
	if v, ok := sourceScores[s]; ok {
		return v
	}
	return neutral
}

func multiplier[K comparable](table map[K]float64, k K) float64 {
	if v, ok := table[k]; ok {
		return v
	}
	return 1.0
}

// socialScore only has signals for repositories; every other source is neutral.
func socialScore(o *models.Opportunity, now time.Time) float64 {
	meta := o.Metadata.Data()
	if meta == nil || o.Source != models.SourceGitHub {
		return neutral
	}
	score := 0.0
	if stars, err := strconv.Atoi(meta["stars"]); err == nil {
		score += math.Min(40, float64(stars)/1000*20)
	}
	if forks, err := strconv.Atoi(meta["forks"]); err == nil {
		score += math.Min(25, float64(forks)/200*25)
	}
	if pushed, err := time.Parse(time.RFC3339, meta["pushed_at"]); err == nil {
		days := math.Trunc(now.Sub(pushed).Hours() / 24)
		score += math.Max(0, 20-days/30*20)
	}
	if issues, err := strconv.Atoi(meta["open_issues"]); err == nil {
		if issues == 0 {
			score += 15
		} else {
			score += math.Max(0, 15-float64(issues)/100*15)
		}
	}
	return score
}

func recencyScore(discovered, now time.Time) float64 {
	if discovered.IsZero() {
		return neutral
	}
	h := hoursSince(discovered, now)
	switch {
	case h <= 1:
		return 100
	case h <= 6:
		return 90
	case h <= 24:
		return 80
	case h <= 72:
		return 70
	case h <= 168:
		return 60
	}
	weeks := float64(h) / 168
	return math.Max(20, 60-weeks*10)
}

// hoursSince counts whole elapsed hours, truncating.
func hoursSince(t, now time.Time) int64 {
	return int64(now.Sub(t) / time.Hour)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return neutral
	}
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Clamp bounds a manually supplied score to 0..100 with two decimals.
func Clamp(d decimal.Decimal) decimal.Decimal {
	switch {
	case d.IsNegative():
		return decimal.Zero
	case d.GreaterThan(decimal.NewFromInt(100)):
		return decimal.NewFromInt(100)
	}
	return d.Round(2)
}

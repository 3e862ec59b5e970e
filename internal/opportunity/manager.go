package opportunity

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/psehrawa/opportunities-finder/internal/events"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/paas"
	"github.com/psehrawa/opportunities-finder/internal/repository"
	"github.com/psehrawa/opportunities-finder/internal/scoring"
)

var (
	ErrNotFound      = errors.New("opportunity not found")
	ErrInvalidStatus = errors.New("invalid opportunity status")
)

const (
	defaultLookback    = 24 * time.Hour
	defaultMaxAge      = 30 * 24 * time.Hour
	defaultConcurrency = 8
	scoringBatchLimit  = 1000
	cleanupBatchLimit  = 500
)

// Manager owns the opportunity lifecycle after discovery: dedupe-on-write, the status
// workflow, scoring passes and stale cleanup. Event publication is best-effort.
type Manager struct {
	Repo      repository.OpportunityRepository
	Analytics repository.AnalyticsRepository
	Engine    *scoring.Engine
	Publisher events.Publisher
	Logger    *zap.Logger

	Concurrency int

	now func() time.Time
}

// ScoringResult summarises one scoring pass.
type ScoringResult struct {
	Candidates int           `json:"candidates"`
	Scored     int64         `json:"scored"`
	Failed     int64         `json:"failed"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Save upserts o by (source, external_id) and announces it.
func (m *Manager) Save(ctx context.Context, o models.Opportunity) (*models.Opportunity, error) {
	if m == nil || m.Repo == nil {
		return nil, errors.New("opportunity repository is not configured")
	}
	stored, created, err := m.Repo.UpsertOpportunity(ctx, &o)
	if err != nil {
		return nil, fmt.Errorf("upsert %s/%s: %w", o.Source, o.ExternalID, err)
	}
	if stored == nil {
		stored = &o
	}
	kind := events.TypeUpdated
	if created {
		kind = events.TypeDiscovered
	}
	m.publish(ctx, events.New(kind, stored))
	return stored, nil
}

func (m *Manager) Get(ctx context.Context, id uint64) (*models.Opportunity, error) {
	if m == nil || m.Repo == nil {
		return nil, ErrNotFound
	}
	item, err := m.Repo.GetOpportunityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// Search lists records matching params together with the unpaged total.
func (m *Manager) Search(ctx context.Context, params repository.ListOpportunitiesParams) ([]models.Opportunity, int64, error) {
	if m == nil || m.Repo == nil {
		return nil, 0, nil
	}
	items, err := m.Repo.ListOpportunities(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	count := params
	count.Limit, count.Offset = 0, 0
	total, err := m.Repo.CountOpportunities(ctx, count)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (m *Manager) Trending(ctx context.Context, window time.Duration, minScore decimal.Decimal, limit int) ([]models.Opportunity, error) {
	if m == nil || m.Repo == nil {
		return nil, nil
	}
	if window <= 0 {
		window = defaultLookback
	}
	return m.Repo.ListTrending(ctx, m.clock().Add(-window), minScore, limit)
}

func (m *Manager) Unscored(ctx context.Context, window time.Duration, limit int) ([]models.Opportunity, error) {
	if m == nil || m.Repo == nil {
		return nil, nil
	}
	if window <= 0 {
		window = defaultLookback
	}
	return m.Repo.FindUnscored(ctx, m.clock().Add(-window), limit)
}

// Stats returns record counts grouped by source, status and type.
func (m *Manager) Stats(ctx context.Context) (map[string][]repository.GroupCount, error) {
	out := map[string][]repository.GroupCount{}
	if m == nil || m.Repo == nil {
		return out, nil
	}
	for _, column := range []string{"source", "status", "type"} {
		counts, err := m.Repo.CountBy(ctx, column)
		if err != nil {
			return nil, fmt.Errorf("count by %s: %w", column, err)
		}
		out[column] = counts
	}
	return out, nil
}

// UpdateStatus moves a record to status. Unknown statuses return ErrInvalidStatus.
func (m *Manager) UpdateStatus(ctx context.Context, id uint64, status models.OpportunityStatus) (*models.Opportunity, error) {
	parsed, ok := models.ParseOpportunityStatus(string(status))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	item, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := item.Status
	if err := m.Repo.UpdateOpportunityStatus(ctx, id, parsed); err != nil {
		return nil, err
	}
	item.Status = parsed
	ev := events.New(events.TypeStatusChanged, item)
	ev.Opportunity.PreviousStatus = previous
	m.publish(ctx, ev)
	paas.LogBestEffortCtx(ctx, "oppfinder_opportunity_status", "info", map[string]any{
		"opportunity_id": id,
		"from":           previous,
		"to":             parsed,
	})
	return item, nil
}

func (m *Manager) Engage(ctx context.Context, id uint64) (*models.Opportunity, error) {
	return m.UpdateStatus(ctx, id, models.StatusEngaged)
}

func (m *Manager) Discard(ctx context.Context, id uint64) (*models.Opportunity, error) {
	return m.UpdateStatus(ctx, id, models.StatusDiscarded)
}

// UpdateScore overrides the score by hand. The value is clamped to 0..100.
func (m *Manager) UpdateScore(ctx context.Context, id uint64, score decimal.Decimal) (*models.Opportunity, error) {
	item, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	score = scoring.Clamp(score)
	if err := m.Repo.UpdateOpportunityScore(ctx, id, score, nil, nil); err != nil {
		return nil, err
	}
	item.Score = score
	m.publish(ctx, events.New(events.TypeScored, item))
	return item, nil
}

// Deactivate hides a record from active listings without deleting it.
func (m *Manager) Deactivate(ctx context.Context, id uint64) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	_, err := m.Repo.MarkInactive(ctx, []uint64{id})
	return err
}

// ScoreUnscored scores every active unscored record discovered within lookback.
// Records still DISCOVERED move to ANALYZED. Per-record failures are logged and counted.
func (m *Manager) ScoreUnscored(ctx context.Context, lookback time.Duration) ScoringResult {
	start := m.clock()
	var result ScoringResult
	if m == nil || m.Repo == nil {
		return result
	}
	if lookback <= 0 {
		lookback = defaultLookback
	}
	ctx, span := otel.Tracer("oppfinder/opportunity").Start(ctx, "opportunity.score_unscored")
	defer span.End()

	items, err := m.Repo.FindUnscored(ctx, start.Add(-lookback), scoringBatchLimit)
	if err != nil {
		m.logger().Warn("load unscored opportunities failed", zap.Error(err))
		span.RecordError(err)
		result.Elapsed = m.clock().Sub(start)
		return result
	}
	result.Candidates = len(items)

	engine := m.engine()
	var scored, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency())
	for i := range items {
		item := items[i]
		g.Go(func() error {
			if err := m.scoreOne(gctx, engine, &item, start); err != nil {
				failed.Add(1)
				m.logger().Warn("score opportunity failed", zap.Uint64("id", item.ID), zap.Error(err))
				return nil
			}
			scored.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result.Scored = scored.Load()
	result.Failed = failed.Load()
	result.Elapsed = m.clock().Sub(start)
	span.SetAttributes(
		attribute.Int("candidates", result.Candidates),
		attribute.Int64("scored", result.Scored),
		attribute.Int64("failed", result.Failed),
	)
	m.logger().Info("scoring pass finished",
		zap.Int("candidates", result.Candidates),
		zap.Int64("scored", result.Scored),
		zap.Int64("failed", result.Failed),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result
}

func (m *Manager) scoreOne(ctx context.Context, engine *scoring.Engine, item *models.Opportunity, now time.Time) error {
	score := engine.Score(item, now)
	engagement := engine.EngagementPotential(item, now)
	var status *models.OpportunityStatus
	if item.Status == models.StatusDiscovered || item.Status == "" {
		analyzed := models.StatusAnalyzed
		status = &analyzed
	}
	if err := m.Repo.UpdateOpportunityScore(ctx, item.ID, score, &engagement, status); err != nil {
		return err
	}
	item.Score = score
	item.EngagementPotential = &engagement
	if status != nil {
		item.Status = *status
	}
	m.publish(ctx, events.New(events.TypeScored, item))
	return nil
}

// CleanupStale deactivates active records not updated within maxAge and returns how
// many were deactivated.
func (m *Manager) CleanupStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	if m == nil || m.Repo == nil {
		return 0, nil
	}
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	cutoff := m.clock().Add(-maxAge)
	var total int64
	for {
		stale, err := m.Repo.FindStale(ctx, cutoff, cleanupBatchLimit)
		if err != nil {
			return total, err
		}
		if len(stale) == 0 {
			break
		}
		ids := make([]uint64, 0, len(stale))
		for _, o := range stale {
			ids = append(ids, o.ID)
		}
		n, err := m.Repo.MarkInactive(ctx, ids)
		if err != nil {
			return total, err
		}
		total += n
		if len(stale) < cleanupBatchLimit || n == 0 {
			break
		}
	}
	if total > 0 {
		m.logger().Info("deactivated stale opportunities", zap.Int64("count", total), zap.Duration("max_age", maxAge))
		paas.LogBestEffortCtx(ctx, "oppfinder_opportunities_expired", "info", map[string]any{
			"deactivated": total,
			"max_age":     maxAge.String(),
		})
	}
	return total, nil
}

func (m *Manager) publish(ctx context.Context, ev events.Event) {
	if m.Publisher == nil {
		return
	}
	if err := m.Publisher.Publish(ctx, ev); err != nil {
		m.logger().Warn("publish event failed", zap.String("type", string(ev.Type)), zap.Uint64("id", ev.Opportunity.ID), zap.Error(err))
	}
}

func (m *Manager) engine() *scoring.Engine {
	if m.Engine != nil {
		return m.Engine
	}
	return scoring.MustDefault()
}

func (m *Manager) concurrency() int {
	if m.Concurrency > 0 {
		return m.Concurrency
	}
	return defaultConcurrency
}

func (m *Manager) logger() *zap.Logger {
	if m == nil || m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

func (m *Manager) clock() time.Time {
	if m != nil && m.now != nil {
		return m.now()
	}
	return time.Now().UTC()
}

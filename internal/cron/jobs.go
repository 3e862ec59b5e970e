package cronrunner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/discovery"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/opportunity"
	"github.com/psehrawa/opportunities-finder/internal/service"
)

type Discoverer interface {
	DiscoverAll(ctx context.Context, req discovery.Request) discovery.PassResult
	Healthy(ctx context.Context) (bool, []models.DataSource)
	MirrorStates(ctx context.Context, store discovery.StateStore, pass *discovery.PassResult) int
}

type Scorer interface {
	ScoreUnscored(ctx context.Context, lookback time.Duration) opportunity.ScoringResult
	CleanupStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

type Switches interface {
	IsEnabled(ctx context.Context, key string, fallback bool) bool
}

// Jobs holds the scheduled work. Each job checks its feature switch on every tick.
type Jobs struct {
	Discovery Discoverer
	Manager   Scorer
	States    discovery.StateStore
	Switches  Switches
	Logger    *zap.Logger

	Discover  config.DiscoveryConfig
	Scoring   config.ScoringConfig
	Countries []models.Country

	now func() time.Time
}

// Register schedules every job with a non-empty spec.
func (j *Jobs) Register(r *Runner, cfg config.CronConfig) error {
	for _, e := range []struct {
		name string
		spec string
		job  func(context.Context)
	}{
		{"discovery", cfg.Discovery, j.RunDiscovery},
		{"scoring", cfg.Scoring, j.RunScoring},
		{"cleanup", cfg.Cleanup, j.RunCleanup},
		{"health", cfg.Health, j.RunHealth},
	} {
		if e.spec == "" {
			continue
		}
		if _, err := r.Add(e.name, e.spec, e.job); err != nil {
			return fmt.Errorf("schedule %s job %q: %w", e.name, e.spec, err)
		}
	}
	return nil
}

func (j *Jobs) RunDiscovery(ctx context.Context) {
	if j.Discovery == nil || !j.enabled(ctx, service.FeatureDiscovery) {
		return
	}
	since := j.Discover.Since
	if since <= 0 {
		since = 6 * time.Hour
	}
	limit := j.Discover.LimitPerSource
	if limit <= 0 {
		limit = 50
	}
	res := j.Discovery.DiscoverAll(ctx, discovery.Request{
		Countries: j.Countries,
		Since:     j.clock().Add(-since),
		Limit:     limit,
	})
	j.Discovery.MirrorStates(ctx, j.States, &res)
	j.logger().Info("scheduled discovery finished",
		zap.String("run_id", res.RunID.String()),
		zap.Int("total", res.Total),
		zap.Int("failed", res.Failed),
	)
}

func (j *Jobs) RunScoring(ctx context.Context) {
	if j.Manager == nil || !j.enabled(ctx, service.FeatureScoring) {
		return
	}
	j.Manager.ScoreUnscored(ctx, j.Scoring.Lookback)
}

func (j *Jobs) RunCleanup(ctx context.Context) {
	if j.Manager == nil || !j.enabled(ctx, service.FeatureCleanup) {
		return
	}
	n, err := j.Manager.CleanupStale(ctx, j.Scoring.StaleAfter)
	if err != nil {
		j.logger().Warn("scheduled cleanup failed", zap.Int64("deactivated", n), zap.Error(err))
	}
}

func (j *Jobs) RunHealth(ctx context.Context) {
	if j.Discovery == nil || !j.enabled(ctx, service.FeatureHealthCheck) {
		return
	}
	ok, unhealthy := j.Discovery.Healthy(ctx)
	if !ok {
		names := make([]string, 0, len(unhealthy))
		for _, s := range unhealthy {
			names = append(names, string(s))
		}
		j.logger().Warn("unhealthy data sources", zap.Strings("sources", names))
	}
	j.Discovery.MirrorStates(ctx, j.States, nil)
}

func (j *Jobs) enabled(ctx context.Context, key string) bool {
	if j.Switches == nil {
		return true
	}
	return j.Switches.IsEnabled(ctx, key, true)
}

func (j *Jobs) logger() *zap.Logger {
	if j.Logger == nil {
		return zap.NewNop()
	}
	return j.Logger
}

func (j *Jobs) clock() time.Time {
	if j.now != nil {
		return j.now()
	}
	return time.Now().UTC()
}

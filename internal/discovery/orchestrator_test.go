package discovery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/datasource"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/ratelimit"
)

type stubAdapter struct {
	source   models.DataSource
	disabled bool
	n        int
	panics   bool
	block    <-chan struct{}
	delay    time.Duration
	status   health.Status

	running *atomic.Int32
	peak    *atomic.Int32
	lastQ   datasource.Query
}

func (s *stubAdapter) Source() models.DataSource                  { return s.source }
func (s *stubAdapter) IsEnabled(context.Context) bool             { return !s.disabled }
func (s *stubAdapter) ValidateConfiguration() error               { return nil }
func (s *stubAdapter) HealthStatus(context.Context) health.Status { return s.status }
func (s *stubAdapter) RateLimitStatus(context.Context) ratelimit.Budget {
	return ratelimit.Budget{Remaining: 10, Limit: 10}
}

func (s *stubAdapter) Discover(ctx context.Context, q datasource.Query) []models.Opportunity {
	s.lastQ = q
	if s.running != nil {
		cur := s.running.Add(1)
		defer s.running.Add(-1)
		for {
			peak := s.peak.Load()
			if cur <= peak || s.peak.CompareAndSwap(peak, cur) {
				break
			}
		}
	}
	if s.panics {
		panic("boom")
	}
	if s.block != nil {
		<-s.block
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	out := make([]models.Opportunity, 0, s.n)
	for i := 0; i < s.n; i++ {
		out = append(out, models.Opportunity{Source: s.source, ExternalID: string(s.source) + "-" + string(rune('a'+i))})
	}
	return out
}

type stubSink struct {
	mu      sync.Mutex
	saved   []models.Opportunity
	failFor models.DataSource
	ctxErrs []error
}

func (s *stubSink) Save(ctx context.Context, o models.Opportunity) (*models.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	if o.Source == s.failFor {
		return nil, errors.New("db down")
	}
	s.saved = append(s.saved, o)
	return &o, nil
}

func newOrchestrator(sink Sink, cfg config.DiscoveryConfig, adapters ...datasource.Adapter) *Orchestrator {
	return New(datasource.NewRegistry(adapters...), sink, cfg, zap.NewNop())
}

func TestDiscoverAllAggregatesAroundFailingSource(t *testing.T) {
	sink := &stubSink{}
	o := newOrchestrator(sink, config.DiscoveryConfig{MaxConcurrency: 4},
		&stubAdapter{source: models.SourceGitHub, n: 2},
		&stubAdapter{source: models.SourceReddit, panics: true},
		&stubAdapter{source: models.SourceBlind, n: 3},
	)

	res := o.DiscoverAll(context.Background(), Request{Limit: 10})
	require.Equal(t, 5, res.Total)
	require.Equal(t, 5, res.Discovered)
	require.NotEqual(t, "", res.RunID.String())
	require.Len(t, res.Sources, 3)
	require.Equal(t, models.SourceGitHub, res.Sources[0].Source)
	require.Equal(t, 2, res.Sources[0].Saved)
	require.True(t, res.Sources[1].Panicked)
	require.Zero(t, res.Sources[1].Discovered)
	require.Equal(t, 3, res.Sources[2].Saved)
	require.Len(t, sink.saved, 5)
	require.False(t, res.FinishedAt.Before(res.StartedAt))
}

func TestDiscoverAllSkipsDisabledSources(t *testing.T) {
	disabled := &stubAdapter{source: models.SourceReddit, n: 4, disabled: true}
	o := newOrchestrator(nil, config.DiscoveryConfig{},
		&stubAdapter{source: models.SourceGitHub, n: 1},
		disabled,
	)
	res := o.DiscoverAll(context.Background(), Request{})
	require.Equal(t, 1, res.Total)
	require.Len(t, res.Sources, 1)
	require.Equal(t, []string{"GITHUB"}, o.EnabledSources(context.Background()))
}

func TestDiscoverAllCountsSaveFailures(t *testing.T) {
	sink := &stubSink{failFor: models.SourceReddit}
	o := newOrchestrator(sink, config.DiscoveryConfig{},
		&stubAdapter{source: models.SourceGitHub, n: 2},
		&stubAdapter{source: models.SourceReddit, n: 3},
	)
	res := o.DiscoverAll(context.Background(), Request{})
	require.Equal(t, 2, res.Total)
	require.Equal(t, 3, res.Failed)
	require.Equal(t, 3, res.Sources[1].Failed)
	require.Zero(t, res.Sources[1].Saved)
}

func TestDiscoverAllDeadlineDropsSlowSource(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	sink := &stubSink{}
	o := newOrchestrator(sink, config.DiscoveryConfig{PassTimeout: 50 * time.Millisecond},
		&stubAdapter{source: models.SourceGitHub, n: 2},
		&stubAdapter{source: models.SourceReddit, n: 5, block: release},
	)

	start := time.Now()
	res := o.DiscoverAll(context.Background(), Request{})
	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, 2, res.Total)
	require.True(t, res.Sources[1].TimedOut)
	require.Zero(t, res.Sources[1].Discovered)
	for _, err := range sink.ctxErrs {
		require.NoError(t, err)
	}
}

func TestDiscoverAllBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	sources := []models.DataSource{
		models.SourceGitHub, models.SourceReddit, models.SourceHackerNews,
		models.SourceProductHunt, models.SourceNewsAPI, models.SourceBlind,
	}
	var adapters []datasource.Adapter
	for _, src := range sources {
		adapters = append(adapters, &stubAdapter{source: src, n: 1, delay: 20 * time.Millisecond, running: &running, peak: &peak})
	}
	o := newOrchestrator(nil, config.DiscoveryConfig{MaxConcurrency: 2}, adapters...)

	res := o.DiscoverAll(context.Background(), Request{})
	require.Equal(t, 6, res.Total)
	require.LessOrEqual(t, peak.Load(), int32(2))
	require.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestDiscoverFromSource(t *testing.T) {
	gh := &stubAdapter{source: models.SourceGitHub, n: 2}
	o := newOrchestrator(nil, config.DiscoveryConfig{},
		gh,
		&stubAdapter{source: models.SourceReddit, n: 1, disabled: true},
	)
	since := time.Now().Add(-time.Hour)

	got, err := o.DiscoverFromSource(context.Background(), "github", Request{Since: since, Limit: 7})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 7, gh.lastQ.Limit)
	require.True(t, gh.lastQ.Since.Equal(since))

	_, err = o.DiscoverFromSource(context.Background(), "reddit", Request{})
	require.ErrorIs(t, err, ErrSourceNotFound)
	_, err = o.DiscoverFromSource(context.Background(), "myspace", Request{})
	require.ErrorIs(t, err, ErrSourceNotFound)
}

func TestHealthOfAll(t *testing.T) {
	now := time.Now()
	o := newOrchestrator(nil, config.DiscoveryConfig{},
		&stubAdapter{source: models.SourceGitHub, status: health.Up("ok", now)},
		&stubAdapter{source: models.SourceReddit, status: health.Down("nope", now)},
	)
	all := o.HealthOfAll(context.Background())
	require.Len(t, all, 2)
	require.Equal(t, health.StateDown, all[models.SourceReddit].State)

	ok, bad := o.Healthy(context.Background())
	require.False(t, ok)
	require.Equal(t, []models.DataSource{models.SourceReddit}, bad)
}

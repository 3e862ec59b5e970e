package discovery

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/datasource"
	"github.com/psehrawa/opportunities-finder/internal/events"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/opportunity"
	"github.com/psehrawa/opportunities-finder/internal/ratelimit"
	"github.com/psehrawa/opportunities-finder/internal/repository"
)

type recordKey struct {
	source     models.DataSource
	externalID string
}

// keyedRepo upserts on (source, external_id) the way the database unique index does.
type keyedRepo struct {
	repository.OpportunityRepository

	mu     sync.Mutex
	rows   map[recordKey]*models.Opportunity
	nextID uint64
}

func (r *keyedRepo) UpsertOpportunity(_ context.Context, item *models.Opportunity) (*models.Opportunity, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := recordKey{item.Source, item.ExternalID}
	if existing, ok := r.rows[k]; ok {
		existing.Title = item.Title
		existing.Description = item.Description
		cp := *existing
		return &cp, false, nil
	}
	r.nextID++
	cp := *item
	cp.ID = r.nextID
	r.rows[k] = &cp
	out := cp
	return &out, true, nil
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []events.Type
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, ev.Type)
	return nil
}

func (p *recordingPublisher) count(t events.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, got := range p.types {
		if got == t {
			n++
		}
	}
	return n
}

// repeatingAdapter returns the same two records every pass; only the title changes.
type repeatingAdapter struct {
	source models.DataSource
	passes atomic.Int32
}

func (a *repeatingAdapter) Source() models.DataSource                  { return a.source }
func (a *repeatingAdapter) IsEnabled(context.Context) bool             { return true }
func (a *repeatingAdapter) ValidateConfiguration() error               { return nil }
func (a *repeatingAdapter) HealthStatus(context.Context) health.Status { return health.Status{} }
func (a *repeatingAdapter) RateLimitStatus(context.Context) ratelimit.Budget {
	return ratelimit.Budget{Remaining: 10, Limit: 10}
}

func (a *repeatingAdapter) Discover(context.Context, datasource.Query) []models.Opportunity {
	pass := a.passes.Add(1)
	return []models.Opportunity{
		{Source: a.source, ExternalID: "github-1", Title: fmt.Sprintf("acme/ledger pass %d", pass)},
		{Source: a.source, ExternalID: "github-2", Title: fmt.Sprintf("acme/billing pass %d", pass)},
	}
}

func TestRepeatedDiscoveryUpdatesInsteadOfInserting(t *testing.T) {
	repo := &keyedRepo{rows: map[recordKey]*models.Opportunity{}}
	pub := &recordingPublisher{}
	manager := &opportunity.Manager{Repo: repo, Publisher: pub, Logger: zap.NewNop()}
	o := newOrchestrator(manager, config.DiscoveryConfig{MaxConcurrency: 2},
		&repeatingAdapter{source: models.SourceGitHub},
	)

	first := o.DiscoverAll(context.Background(), Request{Limit: 10})
	second := o.DiscoverAll(context.Background(), Request{Limit: 10})

	require.Equal(t, 2, first.Total)
	require.Equal(t, 2, second.Total)
	require.Len(t, repo.rows, 2)
	require.Equal(t, uint64(2), repo.nextID)
	require.Equal(t, 2, pub.count(events.TypeDiscovered))
	require.Equal(t, 2, pub.count(events.TypeUpdated))

	ledger := repo.rows[recordKey{models.SourceGitHub, "github-1"}]
	require.NotNil(t, ledger)
	require.Equal(t, "acme/ledger pass 2", ledger.Title)
	require.Equal(t, uint64(1), ledger.ID)
}

package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

type stubStateStore struct {
	items   map[string]models.SourceState
	failFor string
}

func (s *stubStateStore) UpsertSourceState(_ context.Context, item *models.SourceState) error {
	if item.Name == s.failFor {
		return errors.New("db down")
	}
	if s.items == nil {
		s.items = map[string]models.SourceState{}
	}
	s.items[item.Name] = *item
	return nil
}

func TestMirrorStatesRecordsHealthAndPass(t *testing.T) {
	checked := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	o := newOrchestrator(nil, config.DiscoveryConfig{},
		&stubAdapter{source: models.SourceGitHub, status: health.Up("ok", checked)},
		&stubAdapter{source: models.SourceReddit, disabled: true, status: health.Down("API is not responding", checked)},
	)
	store := &stubStateStore{}
	finished := checked.Add(time.Hour)
	pass := &PassResult{FinishedAt: finished, Sources: []SourceOutcome{{Source: models.SourceGitHub, Discovered: 4}}}

	written := o.MirrorStates(context.Background(), store, pass)
	require.Equal(t, 2, written)

	gh := store.items["github"]
	require.True(t, gh.Enabled)
	require.Equal(t, string(health.StateUp), gh.HealthState)
	require.Equal(t, 10, gh.RequestsRemaining)
	require.NotNil(t, gh.LastDiscoveryAt)
	require.Equal(t, finished, *gh.LastDiscoveryAt)
	require.Equal(t, 4, gh.LastDiscovered)

	rd := store.items["reddit"]
	require.False(t, rd.Enabled)
	require.Equal(t, "API is not responding", rd.HealthMessage)
	require.Nil(t, rd.LastDiscoveryAt)
}

func TestMirrorStatesSkipsStoreErrors(t *testing.T) {
	o := newOrchestrator(nil, config.DiscoveryConfig{},
		&stubAdapter{source: models.SourceGitHub},
		&stubAdapter{source: models.SourceBlind},
	)
	store := &stubStateStore{failFor: "github"}
	require.Equal(t, 1, o.MirrorStates(context.Background(), store, nil))
	require.Contains(t, store.items, "blind")
	require.Zero(t, o.MirrorStates(context.Background(), nil, nil))
}

func TestSourcesListsEveryAdapter(t *testing.T) {
	o := newOrchestrator(nil, config.DiscoveryConfig{},
		&stubAdapter{source: models.SourceGitHub},
		&stubAdapter{source: models.SourceBlind, disabled: true},
	)
	infos := o.Sources(context.Background())
	require.Len(t, infos, 2)
	require.Equal(t, "github", infos[0].Name)
	require.True(t, infos[0].Enabled)
	require.Equal(t, "blind", infos[1].Name)
	require.False(t, infos[1].Enabled)
	require.Equal(t, 10, infos[1].Budget.Limit)
	require.Empty(t, infos[1].ConfigError)
}

package datasource

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

func TestBuildRegistersInOrder(t *testing.T) {
	r := Build(config.SourcesConfig{}, testDeps(nil))
	var got []models.DataSource
	for _, a := range r.All() {
		got = append(got, a.Source())
	}
	require.Equal(t, []models.DataSource{
		models.SourceGitHub, models.SourceReddit, models.SourceHackerNews,
		models.SourceProductHunt, models.SourceNewsAPI, models.SourceBlind, models.SourceQuora,
	}, got)

	a, ok := r.Lookup("hacker-news")
	require.True(t, ok)
	require.Equal(t, models.SourceHackerNews, a.Source())

	_, ok = r.Lookup("myspace")
	require.False(t, ok)
	a, ok = r.Lookup("quora")
	require.True(t, ok)
	require.Equal(t, models.SourceQuora, a.Source())
}

func TestRegistryReplacesInPlace(t *testing.T) {
	deps := testDeps(nil)
	first := NewBlind(config.BlindSourceConfig{}, deps)
	second := NewBlind(config.BlindSourceConfig{}, deps)
	r := NewRegistry(NewGitHub(config.GitHubSourceConfig{}, deps), first)
	r.Register(second)

	all := r.All()
	require.Len(t, all, 2)
	require.Same(t, second, all[1])
}

func TestLimitsFromConfig(t *testing.T) {
	var cfg config.SourcesConfig
	cfg.GitHub.RateLimit.RequestsPerHour = 5000
	cfg.Blind.RateLimit.RequestsPerHour = 1000
	limits := LimitsFromConfig(cfg)
	require.Equal(t, 5000, limits[models.SourceGitHub])
	require.Equal(t, 1000, limits[models.SourceBlind])
	require.Len(t, limits, 7)
}

package datasource

import (
	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

// Registry keeps adapters in registration order.
type Registry struct {
	adapters []Adapter
	byName   map[models.DataSource]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byName: map[models.DataSource]Adapter{}}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds an adapter; a later registration for the same source replaces the
// earlier one in place.
func (r *Registry) Register(a Adapter) {
	if a == nil {
		return
	}
	src := a.Source()
	if _, ok := r.byName[src]; ok {
		for i := range r.adapters {
			if r.adapters[i].Source() == src {
				r.adapters[i] = a
			}
		}
	} else {
		r.adapters = append(r.adapters, a)
	}
	r.byName[src] = a
}

func (r *Registry) All() []Adapter {
	if r == nil {
		return nil
	}
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Lookup resolves a source name case-insensitively ("github", "hacker-news").
func (r *Registry) Lookup(name string) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	src, ok := models.ParseDataSource(name)
	if !ok {
		return nil, false
	}
	a, ok := r.byName[src]
	return a, ok
}

// Build constructs every configured adapter. Disabled sources are still registered so
// operators can see them; IsEnabled gates discovery.
func Build(cfg config.SourcesConfig, deps Deps) *Registry {
	return NewRegistry(
		NewGitHub(cfg.GitHub, deps),
		NewReddit(cfg.Reddit, deps),
		NewFeed(models.SourceHackerNews, cfg.HackerNews, deps),
		NewFeed(models.SourceProductHunt, cfg.ProductHunt, deps),
		NewFeed(models.SourceNewsAPI, cfg.News, deps),
		NewBlind(cfg.Blind, deps),
		NewQuora(cfg.Quora, deps),
	)
}

// LimitsFromConfig maps each source to its hourly request budget.
func LimitsFromConfig(cfg config.SourcesConfig) map[models.DataSource]int {
	return map[models.DataSource]int{
		models.SourceGitHub:      cfg.GitHub.RateLimit.RequestsPerHour,
		models.SourceReddit:      cfg.Reddit.RateLimit.RequestsPerHour,
		models.SourceHackerNews:  cfg.HackerNews.RateLimit.RequestsPerHour,
		models.SourceProductHunt: cfg.ProductHunt.RateLimit.RequestsPerHour,
		models.SourceNewsAPI:     cfg.News.RateLimit.RequestsPerHour,
		models.SourceBlind:       cfg.Blind.RateLimit.RequestsPerHour,
		models.SourceQuora:       cfg.Quora.RateLimit.RequestsPerHour,
	}
}

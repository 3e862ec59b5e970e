package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/psehrawa/opportunities-finder/internal/classify"
	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

const (
	githubDefaultWindow = 7 * 24 * time.Hour
	githubActiveWindow  = 30 * 24 * time.Hour
	githubConfidence    = 75
)

type githubRepo struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
	PushedAt    time.Time `json:"pushed_at"`
	OpenIssues  int       `json:"open_issues_count"`
	Topics      []string  `json:"topics"`
	Archived    bool      `json:"archived"`
	Owner       struct {
		Login string `json:"login"`
		Type  string `json:"type"`
	} `json:"owner"`
}

type githubSearchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []githubRepo `json:"items"`
}

// GitHub discovers trending, newly popular and sponsor-seeking repositories
// through the repository search API.
type GitHub struct {
	*Base
	cfg config.GitHubSourceConfig
}

func NewGitHub(cfg config.GitHubSourceConfig, deps Deps) *GitHub {
	g := &GitHub{cfg: cfg}
	g.Base = newBase(models.SourceGitHub, cfg.SourceConfig, deps, g.ValidateConfiguration)
	g.setCheck(func(ctx context.Context) health.Status {
		return g.check(ctx, g.endpoint("/rate_limit"), g.header())
	})
	return g
}

// ValidateConfiguration requires a base URL. The API key is optional; without one
// GitHub applies its anonymous quota.
func (g *GitHub) ValidateConfiguration() error {
	if strings.TrimSpace(g.cfg.BaseURL) == "" {
		return errors.New("github: base_url is required")
	}
	if _, err := url.Parse(g.cfg.BaseURL); err != nil {
		return fmt.Errorf("github: invalid base_url: %w", err)
	}
	return nil
}

func (g *GitHub) Discover(ctx context.Context, q Query) []models.Opportunity {
	return g.run(ctx, q, g.collect)
}

func (g *GitHub) collect(ctx context.Context, q Query) ([]models.Opportunity, error) {
	since := q.Since
	if since.IsZero() {
		since = g.now().Add(-githubDefaultWindow)
	}

	searches := []struct {
		name string
		run  func(context.Context, time.Time, int) ([]models.Opportunity, error)
	}{
		{"trending", g.trending},
		{"new", g.newlyPopular},
		{"funding", g.fundingSeekers},
	}

	var (
		out  []models.Opportunity
		errs []error
		seen = map[string]struct{}{}
	)
	for _, s := range searches {
		recs, err := s.run(ctx, since, q.Limit)
		for _, o := range recs {
			if _, dup := seen[o.ExternalID]; dup {
				continue
			}
			seen[o.ExternalID] = struct{}{}
			out = append(out, o)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s search: %w", s.name, err))
			if ctx.Err() != nil {
				break
			}
		}
	}
	return out, errors.Join(errs...)
}

func (g *GitHub) trending(ctx context.Context, since time.Time, limit int) ([]models.Opportunity, error) {
	langs := make([]string, 0, len(g.cfg.Languages))
	for _, l := range g.cfg.Languages {
		langs = append(langs, "language:"+l)
	}
	query := fmt.Sprintf("created:>%s stars:>50", since.UTC().Format("2006-01-02"))
	if len(langs) > 0 {
		query += " " + strings.Join(langs, " OR ")
	}
	repos, err := g.search(ctx, query, perPage(limit, 30, 100))
	out := make([]models.Opportunity, 0, len(repos))
	for _, r := range repos {
		if !g.relevant(r) {
			continue
		}
		out = append(out, g.toOpportunity(r, models.TypeTechnologyTrend))
	}
	return out, err
}

func (g *GitHub) newlyPopular(ctx context.Context, since time.Time, limit int) ([]models.Opportunity, error) {
	query := fmt.Sprintf("created:>%s stars:>100", since.UTC().Format("2006-01-02"))
	repos, err := g.search(ctx, query, perPage(limit, 20, 50))
	cutoff := g.now().Add(-githubActiveWindow)
	out := make([]models.Opportunity, 0, len(repos))
	for _, r := range repos {
		if r.PushedAt.Before(cutoff) {
			continue
		}
		out = append(out, g.toOpportunity(r, models.TypeProductLaunch))
	}
	return out, err
}

func (g *GitHub) fundingSeekers(ctx context.Context, since time.Time, limit int) ([]models.Opportunity, error) {
	query := fmt.Sprintf("funding sponsor created:>%s", since.Add(-7*24*time.Hour).UTC().Format("2006-01-02"))
	repos, err := g.search(ctx, query, perPage(limit, 10, 30))
	out := make([]models.Opportunity, 0, len(repos))
	for _, r := range repos {
		out = append(out, g.toOpportunity(r, models.TypeStartupFunding))
	}
	return out, err
}

func (g *GitHub) search(ctx context.Context, query string, perPage int) ([]githubRepo, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(perPage))
	body, err := g.get(ctx, g.endpoint("/search/repositories")+"?"+params.Encode(), g.header())
	if err != nil {
		return nil, err
	}
	var resp githubSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return resp.Items, nil
}

func (g *GitHub) endpoint(path string) string {
	return strings.TrimRight(g.cfg.BaseURL, "/") + path
}

func (g *GitHub) header() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/vnd.github+json")
	if g.cfg.APIKey != "" {
		h.Set("Authorization", "token "+g.cfg.APIKey)
	}
	return h
}

func (g *GitHub) relevant(r githubRepo) bool {
	if r.Stars < 50 || r.Archived {
		return false
	}
	text := r.Description + " " + strings.Join(r.Topics, " ")
	return classify.ContainsAny(text, g.cfg.Keywords)
}

func (g *GitHub) toOpportunity(r githubRepo, typ models.OpportunityType) models.Opportunity {
	desc := r.Description
	if desc == "" {
		desc = "GitHub repository"
	}
	tags := []string{"github", "repository"}
	if r.Language != "" {
		tags = append(tags, strings.ToLower(r.Language))
	}
	tags = append(tags, r.Topics...)

	o := models.Opportunity{
		ExternalID:      fmt.Sprintf("github-%d", r.ID),
		Title:           r.FullName,
		Description:     desc,
		Type:            typ,
		URL:             r.HTMLURL,
		CompanyName:     r.Owner.Login,
		Industry:        repositoryIndustry(r),
		CompanySize:     repositorySize(r),
		ConfidenceScore: models.Confidence(githubConfidence),
		DiscoveredAt:    g.now().UTC(),
		Tags:            tags,
	}
	o.SetMeta(map[string]string{
		"stars":       strconv.Itoa(r.Stars),
		"forks":       strconv.Itoa(r.Forks),
		"language":    r.Language,
		"created_at":  r.CreatedAt.UTC().Format(time.RFC3339),
		"pushed_at":   r.PushedAt.UTC().Format(time.RFC3339),
		"open_issues": strconv.Itoa(r.OpenIssues),
		"topics":      strings.Join(r.Topics, ","),
		"repo_score":  strconv.FormatFloat(repositoryScore(r, g.now()), 'f', 2, 64),
	})
	return o
}

func repositoryIndustry(r githubRepo) models.Industry {
	if ind, ok := classify.RepositoryIndustries.Lookup(r.Description + " " + strings.Join(r.Topics, " ")); ok {
		return ind
	}
	switch strings.ToLower(r.Language) {
	case "javascript", "typescript":
		return models.IndustryWebDevelopment
	default:
		return models.IndustryEnterpriseSoftware
	}
}

func repositorySize(r githubRepo) models.CompanySize {
	if r.Owner.Type == "Organization" {
		switch {
		case r.Stars > 10000:
			return models.SizeEnterprise
		case r.Stars > 1000:
			return models.SizeLarge
		default:
			return models.SizeMedium
		}
	}
	if r.Stars > 5000 {
		return models.SizeMedium
	}
	return models.SizeStartup
}

// repositoryScore rates popularity, activity and issue load on a 0..100 scale.
func repositoryScore(r githubRepo, now time.Time) float64 {
	score := math.Min(40, float64(r.Stars)/1000*10)
	score += math.Min(20, float64(r.Forks)/100*5)
	days := math.Floor(now.Sub(r.PushedAt).Hours() / 24)
	score += math.Max(0, 20-days/30*20)
	if r.OpenIssues == 0 {
		score += 10
	} else {
		score += math.Max(0, 10-float64(r.OpenIssues)/100*10)
	}
	switch strings.ToLower(r.Language) {
	case "javascript", "python", "java", "typescript", "go":
		score += 10
	case "rust", "kotlin", "swift", "scala":
		score += 8
	default:
		score += 5
	}
	return math.Min(100, score)
}

func perPage(limit, fallback, ceiling int) int {
	if limit <= 0 {
		limit = fallback
	}
	return min(limit, ceiling)
}

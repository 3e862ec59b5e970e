package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/psehrawa/opportunities-finder/internal/classify"
	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

const (
	redditDefaultLimit      = 50
	redditDefaultPerListing = 10
	redditDescriptionMax    = 1000
	redditConfidence        = 65
)

type redditListing struct {
	Data struct {
		Children []struct {
			Kind string     `json:"kind"`
			Data redditPost `json:"data"`
		} `json:"children"`
		After  string `json:"after"`
		Before string `json:"before"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	CreatedUTC  float64 `json:"created_utc"`
	Flair       string  `json:"link_flair_text"`
	IsSelf      bool    `json:"is_self"`
	Over18      bool    `json:"over_18"`
}

func (p redditPost) created() time.Time {
	sec, frac := math.Modf(p.CreatedUTC)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func (p redditPost) text() string {
	return p.Title + " " + p.Selftext
}

// Reddit reads the hot and new listings of the configured subreddits.
type Reddit struct {
	*Base
	cfg config.RedditSourceConfig
}

func NewReddit(cfg config.RedditSourceConfig, deps Deps) *Reddit {
	r := &Reddit{cfg: cfg}
	r.Base = newBase(models.SourceReddit, cfg.SourceConfig, deps, r.ValidateConfiguration)
	r.setCheck(func(ctx context.Context) health.Status {
		return r.check(ctx, r.endpoint("startups", "hot", 1), r.header())
	})
	return r
}

func (r *Reddit) ValidateConfiguration() error {
	var errs []error
	if strings.TrimSpace(r.cfg.BaseURL) == "" {
		errs = append(errs, errors.New("reddit: base_url is required"))
	}
	if strings.TrimSpace(r.cfg.UserAgent) == "" {
		errs = append(errs, errors.New("reddit: user_agent is required"))
	}
	if len(r.cfg.Subreddits) == 0 {
		errs = append(errs, errors.New("reddit: at least one subreddit is required"))
	}
	return errors.Join(errs...)
}

func (r *Reddit) Discover(ctx context.Context, q Query) []models.Opportunity {
	return r.run(ctx, q, r.collect)
}

func (r *Reddit) collect(ctx context.Context, q Query) ([]models.Opportunity, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = redditDefaultLimit
	}
	perListing := r.cfg.PerListing
	if perListing <= 0 {
		perListing = redditDefaultPerListing
	}
	listings := []struct {
		sort string
		typ  models.OpportunityType
	}{
		{"hot", models.TypeTechnologyTrend},
		{"new", models.TypeStartupFunding},
	}

	var (
		out  []models.Opportunity
		errs []error
		seen = map[string]struct{}{}
	)
collect:
	for _, sub := range r.cfg.Subreddits {
		for _, l := range listings {
			if len(out) >= limit*3 {
				break collect
			}
			posts, err := r.fetch(ctx, sub, l.sort, perListing*2)
			if err != nil {
				errs = append(errs, fmt.Errorf("r/%s/%s: %w", sub, l.sort, err))
				if ctx.Err() != nil {
					break collect
				}
				continue
			}
			kept := 0
			for _, p := range posts {
				if kept >= perListing {
					break
				}
				if !redditRelevant(p, r.now()) {
					continue
				}
				o := r.toOpportunity(p, l.typ)
				if _, dup := seen[o.ExternalID]; dup {
					continue
				}
				seen[o.ExternalID] = struct{}{}
				out = append(out, o)
				kept++
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return metaFloat(out[i], "signal_score") > metaFloat(out[j], "signal_score")
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, errors.Join(errs...)
}

func (r *Reddit) fetch(ctx context.Context, sub, sort string, limit int) ([]redditPost, error) {
	body, err := r.get(ctx, r.endpoint(sub, sort, limit), r.header())
	if err != nil {
		return nil, err
	}
	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, c := range listing.Data.Children {
		if c.Data.Over18 {
			continue
		}
		posts = append(posts, c.Data)
	}
	return posts, nil
}

func (r *Reddit) endpoint(sub, sort string, limit int) string {
	return fmt.Sprintf("%s/r/%s/%s.json?limit=%d", strings.TrimRight(r.cfg.BaseURL, "/"), sub, sort, limit)
}

func (r *Reddit) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", r.cfg.UserAgent)
	return h
}

func (r *Reddit) toOpportunity(p redditPost, fallback models.OpportunityType) models.Opportunity {
	text := p.text()
	desc := truncateRunes(p.Selftext, redditDescriptionMax)
	if strings.TrimSpace(desc) == "" {
		desc = p.Title
	}
	now := r.now()

	tags := []string{"reddit", "r/" + p.Subreddit}
	if p.Flair != "" {
		tags = append(tags, strings.ToLower(p.Flair))
	}
	tags = append(tags, classify.TechTags.All(text)...)

	engagement := decimal.NewFromFloat(redditEngagement(p)).Round(2)
	o := models.Opportunity{
		ExternalID:          "reddit-" + p.ID,
		Title:               p.Title,
		Description:         desc,
		Type:                classify.Types.MatchOr(text, fallback),
		URL:                 "https://reddit.com" + p.Permalink,
		CompanyName:         redditCompanyName(p),
		Industry:            classify.Industries.Match(text),
		CompanySize:         models.SizeUnknown,
		ConfidenceScore:     models.Confidence(redditConfidence),
		EngagementPotential: &engagement,
		DiscoveredAt:        p.created(),
		Tags:                tags,
	}
	o.SetMeta(map[string]string{
		"subreddit":    p.Subreddit,
		"author":       p.Author,
		"score":        strconv.Itoa(p.Score),
		"num_comments": strconv.Itoa(p.NumComments),
		"upvote_ratio": strconv.FormatFloat(p.UpvoteRatio, 'f', 2, 64),
		"created_utc":  p.created().Format(time.RFC3339),
		"permalink":    p.Permalink,
		"flair":        p.Flair,
		"signal_score": strconv.FormatFloat(redditSignalScore(p, now), 'f', 2, 64),
	})
	return o
}

// redditSignalScore rates votes, discussion, approval and freshness on a 0..100 scale.
func redditSignalScore(p redditPost, now time.Time) float64 {
	score := math.Min(40, float64(p.Score)/100*20)
	score += math.Min(20, float64(p.NumComments)/50*20)
	score += p.UpvoteRatio * 20
	hours := math.Floor(now.Sub(p.created()).Hours())
	score += math.Max(0, 20-hours/24*5)
	return math.Min(100, score)
}

func redditEngagement(p redditPost) float64 {
	votes := math.Max(1, float64(p.Score))
	return math.Min(100, float64(p.NumComments)/votes*50+p.UpvoteRatio*50)
}

func redditRelevant(p redditPost, now time.Time) bool {
	if p.Score < 2 && p.NumComments < 1 {
		return false
	}
	if classify.ContainsAny(p.text(), classify.OpportunityKeywords) {
		return true
	}
	return redditSignalScore(p, now) > 20
}

var bracketNameRe = regexp.MustCompile(`\[([^\]]+)\]`)

// redditCompanyName guesses the company from common title conventions:
// "[Acme] ...", "Acme - ..." or a short "Acme: ..." prefix.
func redditCompanyName(p redditPost) string {
	title := strings.TrimSpace(p.Title)
	if m := bracketNameRe.FindStringSubmatch(title); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	if i := strings.Index(title, " - "); i > 0 {
		return strings.TrimSpace(title[:i])
	}
	if i := strings.Index(title, ":"); i > 0 {
		head := strings.TrimSpace(title[:i])
		if n := len(strings.Fields(head)); n > 0 && n <= 3 {
			return head
		}
	}
	return "r/" + p.Subreddit
}

func metaFloat(o models.Opportunity, key string) float64 {
	v, err := strconv.ParseFloat(o.Meta()[key], 64)
	if err != nil {
		return 0
	}
	return v
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package datasource

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/psehrawa/opportunities-finder/internal/classify"
	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

const feedConfidence = 60

var feedDefaultTypes = map[models.DataSource]models.OpportunityType{
	models.SourceHackerNews:  models.TypeTechnologyTrend,
	models.SourceProductHunt: models.TypeProductLaunch,
	models.SourceNewsAPI:     models.TypeTechnologyTrend,
}

// Feed discovers opportunities from RSS or Atom feeds. Hacker News, Product Hunt and
// news sources share it and differ only in configuration.
type Feed struct {
	*Base
	cfg config.FeedSourceConfig
}

func NewFeed(source models.DataSource, cfg config.FeedSourceConfig, deps Deps) *Feed {
	f := &Feed{cfg: cfg}
	f.Base = newBase(source, cfg.SourceConfig, deps, f.ValidateConfiguration)
	f.setCheck(func(ctx context.Context) health.Status {
		if len(f.cfg.Feeds) == 0 {
			return health.Down("no feeds configured", f.now())
		}
		return f.check(ctx, f.cfg.Feeds[0], f.header())
	})
	return f
}

func (f *Feed) ValidateConfiguration() error {
	if len(f.cfg.Feeds) == 0 {
		return fmt.Errorf("%s: at least one feed is required", Name(f.source))
	}
	for _, u := range f.cfg.Feeds {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s: feed %q must be an http(s) url", Name(f.source), u)
		}
	}
	return nil
}

func (f *Feed) Discover(ctx context.Context, q Query) []models.Opportunity {
	return f.run(ctx, q, f.collect)
}

func (f *Feed) collect(ctx context.Context, q Query) ([]models.Opportunity, error) {
	var (
		out  []models.Opportunity
		errs []error
		seen = map[string]struct{}{}
	)
	for _, u := range f.cfg.Feeds {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		feed, err := f.fetch(ctx, u)
		if err != nil {
			errs = append(errs, fmt.Errorf("feed %s: %w", u, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		for _, it := range feed.Items {
			if it == nil {
				continue
			}
			published := itemTime(it)
			if !q.Since.IsZero() && published != nil && published.Before(q.Since) {
				continue
			}
			text := it.Title + " " + it.Description
			if len(f.cfg.Keywords) > 0 && !classify.ContainsAny(text, f.cfg.Keywords) {
				continue
			}
			key, ok := itemKey(it, published)
			if !ok {
				f.Logger.Debug("skipping feed item without identity", zap.String("feed", u))
				continue
			}
			o := f.toOpportunity(feed, it, key, published)
			if _, dup := seen[o.ExternalID]; dup {
				continue
			}
			seen[o.ExternalID] = struct{}{}
			out = append(out, o)
		}
	}
	return out, errors.Join(errs...)
}

func (f *Feed) fetch(ctx context.Context, u string) (*gofeed.Feed, error) {
	body, err := f.get(ctx, u, f.header())
	if err != nil {
		return nil, err
	}
	return gofeed.NewParser().Parse(bytes.NewReader(body))
}

func (f *Feed) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "oppfinder/1.0 (+rss)")
	return h
}

// itemKey picks the identity an item is deduplicated on: its GUID, then its link,
// then title plus publish time. Items with none of these are skipped.
func itemKey(it *gofeed.Item, published *time.Time) (string, bool) {
	if guid := strings.TrimSpace(it.GUID); guid != "" {
		return guid, true
	}
	if link := strings.TrimSpace(it.Link); link != "" {
		return link, true
	}
	title := strings.TrimSpace(it.Title)
	if title == "" {
		return "", false
	}
	if published != nil {
		return title + "|" + published.UTC().Format(time.RFC3339), true
	}
	return title, true
}

func (f *Feed) toOpportunity(feed *gofeed.Feed, it *gofeed.Item, key string, published *time.Time) models.Opportunity {
	text := it.Title + " " + it.Description
	sum := sha1.Sum([]byte(key))

	discovered := f.now().UTC()
	if published != nil {
		discovered = published.UTC()
	}

	tags := []string{strings.ToLower(string(f.source))}
	for _, c := range it.Categories {
		if c = strings.TrimSpace(c); c != "" {
			tags = append(tags, strings.ToLower(c))
		}
	}

	o := models.Opportunity{
		ExternalID:      "rss-" + hex.EncodeToString(sum[:]),
		Title:           strings.TrimSpace(it.Title),
		Description:     truncateRunes(strings.TrimSpace(it.Description), 2000),
		Type:            classify.Types.MatchOr(text, feedDefaultTypes[f.source]),
		URL:             it.Link,
		CompanyName:     strings.TrimSpace(feed.Title),
		Industry:        classify.Industries.Match(text),
		ConfidenceScore: models.Confidence(feedConfidence),
		DiscoveredAt:    discovered,
		Tags:            tags,
	}
	if o.Type == "" {
		o.Type = models.TypeTechnologyTrend
	}
	if amount, ok := classify.FundingAmount(text); ok {
		o.FundingAmount = &amount
	}
	if stage, ok := classify.Stages.Lookup(text); ok {
		o.FundingStage = stage
	} else if o.FundingAmount != nil {
		o.FundingStage = models.FundingStageFromAmount(o.FundingAmount.IntPart())
	}

	meta := map[string]string{
		"feed_title": feed.Title,
		"guid":       it.GUID,
	}
	if published != nil {
		meta["published_at"] = published.UTC().Format(time.RFC3339)
	}
	if it.Author != nil && it.Author.Name != "" {
		meta["author"] = it.Author.Name
	}
	o.SetMeta(meta)
	return o
}

func itemTime(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		return it.PublishedParsed
	}
	return it.UpdatedParsed
}

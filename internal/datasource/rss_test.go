package datasource

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/require"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

func rssFixture(now time.Time) string {
	item := func(guid, title, desc string, at time.Time) string {
		return fmt.Sprintf(`<item><guid>%s</guid><title>%s</title><link>https://news.example.com/%s</link><description>%s</description><category>Startups</category><pubDate>%s</pubDate></item>`,
			guid, title, guid, desc, at.Format(time.RFC1123Z))
	}
	return `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Example News</title><link>https://news.example.com</link><description>news</description>` +
		item("old", "Old story", "Yesterday's news", now.Add(-48*time.Hour)) +
		item("fund", "Lumen raises $5M Series A", "The healthcare startup raised a round.", now.Add(-2*time.Hour)) +
		item("trend", "A new database engine", "Engineers compare query planners.", now.Add(-3*time.Hour)) +
		`</channel></rss>`
}

func newTestFeed(t *testing.T, keywords []string) (*Feed, func() int32) {
	t.Helper()
	now := time.Now().UTC()
	srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture(now)))
	})
	f := NewFeed(models.SourceHackerNews, config.FeedSourceConfig{
		SourceConfig: testSourceConfig(""),
		Feeds:        []string{srv.URL + "/rss"},
		Keywords:     keywords,
	}, testDeps(nil))
	return f, hits.Load
}

func TestFeedDiscoverFiltersBySince(t *testing.T) {
	f, hits := newTestFeed(t, nil)
	q := Query{Since: time.Now().Add(-24 * time.Hour)}

	got := f.Discover(context.Background(), q)
	require.EqualValues(t, 1, hits())
	require.Len(t, got, 2)

	fund := got[0]
	require.True(t, strings.HasPrefix(fund.ExternalID, "rss-"))
	require.Equal(t, "Lumen raises $5M Series A", fund.Title)
	require.Equal(t, models.TypeStartupFunding, fund.Type)
	require.Equal(t, models.StageSeriesA, fund.FundingStage)
	require.NotNil(t, fund.FundingAmount)
	require.Equal(t, "5000000", fund.FundingAmount.String())
	require.Equal(t, models.IndustryHealthtech, fund.Industry)
	require.Equal(t, "Example News", fund.CompanyName)
	require.Equal(t, []string{"hacker_news", "startups"}, []string(fund.Tags))

	require.Equal(t, models.TypeTechnologyTrend, got[1].Type)
	require.Equal(t, models.IndustryEnterpriseSoftware, got[1].Industry)

	again := f.Discover(context.Background(), q)
	require.Equal(t, got[0].ExternalID, again[0].ExternalID)
	require.Equal(t, got[1].ExternalID, again[1].ExternalID)
}

func TestFeedDiscoverKeywordFilter(t *testing.T) {
	f, _ := newTestFeed(t, []string{"raises"})
	got := f.Discover(context.Background(), Query{})
	require.Len(t, got, 1)
	require.Contains(t, got[0].Title, "raises")
}

func TestFeedValidateConfiguration(t *testing.T) {
	f := NewFeed(models.SourceNewsAPI, config.FeedSourceConfig{SourceConfig: testSourceConfig("")}, testDeps(nil))
	require.Error(t, f.ValidateConfiguration())
	require.False(t, f.IsEnabled(context.Background()))

	f = NewFeed(models.SourceNewsAPI, config.FeedSourceConfig{
		SourceConfig: testSourceConfig(""),
		Feeds:        []string{"ftp://example.com/feed"},
	}, testDeps(nil))
	require.Error(t, f.ValidateConfiguration())
}

func TestFeedItemsWithoutGUIDOrLinkKeepDistinctIDs(t *testing.T) {
	now := time.Now().UTC()
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		item := func(title string, at time.Time) string {
			return fmt.Sprintf(`<item><title>%s</title><description>startup news</description><pubDate>%s</pubDate></item>`, title, at.Format(time.RFC1123Z))
		}
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Bare</title>` +
			item("First launch", now.Add(-time.Hour)) +
			item("Second launch", now.Add(-2*time.Hour)) +
			item("Second launch", now.Add(-3*time.Hour)) +
			`<item><description>no identity at all</description></item>` +
			`</channel></rss>`))
	})
	f := NewFeed(models.SourceNewsAPI, config.FeedSourceConfig{
		SourceConfig: testSourceConfig(""),
		Feeds:        []string{srv.URL + "/rss"},
	}, testDeps(nil))

	got := f.Discover(context.Background(), Query{})
	require.Len(t, got, 3)
	ids := map[string]struct{}{}
	for _, o := range got {
		ids[o.ExternalID] = struct{}{}
	}
	require.Len(t, ids, 3)
}

func TestItemKey(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	key, ok := itemKey(&gofeed.Item{GUID: "g", Link: "l"}, nil)
	require.True(t, ok)
	require.Equal(t, "g", key)

	key, ok = itemKey(&gofeed.Item{Link: "l"}, nil)
	require.True(t, ok)
	require.Equal(t, "l", key)

	key, ok = itemKey(&gofeed.Item{Title: "t"}, &at)
	require.True(t, ok)
	require.Equal(t, "t|2025-03-01T12:00:00Z", key)

	_, ok = itemKey(&gofeed.Item{Description: "d"}, &at)
	require.False(t, ok)
}

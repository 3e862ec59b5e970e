package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/psehrawa/opportunities-finder/internal/cache"
	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/ratelimit"
)

type stubSwitches map[string]bool

func (s stubSwitches) IsEnabled(_ context.Context, key string, fallback bool) bool {
	if v, ok := s[key]; ok {
		return v
	}
	return fallback
}

func testDeps(limits map[models.DataSource]int) Deps {
	return Deps{
		Governor: ratelimit.NewGovernor(cache.NewMemoryStore(), limits, zap.NewNop()),
		Logger:   zap.NewNop(),
		HTTP:     &http.Client{Timeout: 5 * time.Second},
	}
}

func testSourceConfig(baseURL string) config.SourceConfig {
	return config.SourceConfig{
		Enabled:    true,
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		RateLimit:  config.RateLimitConfig{RequestsPerHour: 100, PerSecond: 1000, Burst: 100},
	}
}

// countingServer wraps h and counts requests.
func countingServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

var errStoreDown = errors.New("counter store unreachable")

// downStore fails every call, like a Redis instance that went away.
type downStore struct{}

func (downStore) Get(context.Context, string) (int64, bool, error) { return 0, false, errStoreDown }
func (downStore) Set(context.Context, string, int64, time.Duration) error {
	return errStoreDown
}
func (downStore) Delete(context.Context, string) error { return errStoreDown }
func (downStore) TTL(context.Context, string) (time.Duration, bool, error) {
	return 0, false, errStoreDown
}
func (downStore) DecrementAndExpire(context.Context, string, time.Duration) (int64, error) {
	return 0, errStoreDown
}
func (downStore) DecrementIfPositive(context.Context, string, int64, time.Duration) (int64, bool, error) {
	return 0, false, errStoreDown
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "app:\n  env: test\n")
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Env != "test" {
		t.Fatalf("env=%q want=test", cfg.App.Env)
	}
	if cfg.Discovery.MaxConcurrency != 4 {
		t.Fatalf("max_concurrency=%d want=4", cfg.Discovery.MaxConcurrency)
	}
	if cfg.Cron.Discovery != "0 0 */6 * * *" {
		t.Fatalf("cron.discovery=%q", cfg.Cron.Discovery)
	}
	if cfg.Scoring.Lookback != 24*time.Hour {
		t.Fatalf("lookback=%s want=24h", cfg.Scoring.Lookback)
	}
	if cfg.Sources.GitHub.RateLimit.RequestsPerHour != 5000 {
		t.Fatalf("github rph=%d want=5000", cfg.Sources.GitHub.RateLimit.RequestsPerHour)
	}
	if cfg.Sources.Reddit.UserAgent != "OpportunityFinder/1.0" {
		t.Fatalf("reddit user agent=%q", cfg.Sources.Reddit.UserAgent)
	}
	if len(cfg.Sources.Reddit.Subreddits) == 0 {
		t.Fatalf("expected default subreddits")
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
discovery:
  max_concurrency: 2
  pass_timeout: 30s
sources:
  github:
    enabled: false
    api_key: abc
    rate_limit:
      requests_per_hour: 60
  news:
    enabled: true
    feeds:
      - https://example.com/feed.xml
`)
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Discovery.MaxConcurrency != 2 || cfg.Discovery.PassTimeout != 30*time.Second {
		t.Fatalf("discovery=%+v", cfg.Discovery)
	}
	if cfg.Sources.GitHub.Enabled || cfg.Sources.GitHub.APIKey != "abc" {
		t.Fatalf("github=%+v", cfg.Sources.GitHub.SourceConfig)
	}
	if cfg.Sources.GitHub.RateLimit.RequestsPerHour != 60 {
		t.Fatalf("github rph=%d want=60", cfg.Sources.GitHub.RateLimit.RequestsPerHour)
	}
	if cfg.Sources.GitHub.Timeout != 10*time.Second {
		t.Fatalf("github timeout=%s want default 10s", cfg.Sources.GitHub.Timeout)
	}
	if !cfg.Sources.News.Enabled || len(cfg.Sources.News.Feeds) != 1 {
		t.Fatalf("news=%+v", cfg.Sources.News)
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("OF_DISCOVERY_MAX_CONCURRENCY", "7")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Discovery.MaxConcurrency != 7 {
		t.Fatalf("max_concurrency=%d want=7", cfg.Discovery.MaxConcurrency)
	}
}

func TestLoadRejectsBadWeights(t *testing.T) {
	path := writeConfig(t, `
scoring:
  weights:
    funding: 0.5
    size: 0.5
    industry: 0.5
`)
	_, err := Load(path, false)
	if err == nil || !strings.Contains(err.Error(), "sum to 1") {
		t.Fatalf("err=%v want weight sum error", err)
	}
}

func TestWeightsValidate(t *testing.T) {
	cases := []struct {
		name string
		w    WeightsConfig
		ok   bool
	}{
		{"defaults", WeightsConfig{0.25, 0.20, 0.20, 0.15, 0.10, 0.10}, true},
		{"within tolerance", WeightsConfig{0.25, 0.20, 0.20, 0.15, 0.10, 0.105}, true},
		{"negative", WeightsConfig{0.35, 0.20, 0.20, 0.15, 0.20, -0.10}, false},
		{"too small", WeightsConfig{0.1, 0.1, 0.1, 0.1, 0.1, 0.1}, false},
	}
	for _, tc := range cases {
		err := tc.w.Validate()
		if (err == nil) != tc.ok {
			t.Fatalf("%s: err=%v want ok=%v", tc.name, err, tc.ok)
		}
	}
}

func TestValidateConcurrencyAndRateLimits(t *testing.T) {
	path := writeConfig(t, `
discovery:
  max_concurrency: 0
sources:
  reddit:
    rate_limit:
      requests_per_hour: 0
`)
	_, err := Load(path, false)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "max_concurrency") || !strings.Contains(msg, "sources.reddit") {
		t.Fatalf("err=%q", msg)
	}
}

package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cron      CronConfig      `mapstructure:"cron"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Events    EventsConfig    `mapstructure:"events"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Name string `mapstructure:"name"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	// Output is a zap sink path; empty means stdout.
	Output string `mapstructure:"output"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

// RedisConfig selects the shared counter store. Backend "memory" keeps counters
// in-process, which is only correct for a single replica.
type RedisConfig struct {
	Backend  string `mapstructure:"backend"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CronConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Discovery string `mapstructure:"discovery"`
	Scoring   string `mapstructure:"scoring"`
	Cleanup   string `mapstructure:"cleanup"`
	Health    string `mapstructure:"health"`
}

type DiscoveryConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	PassTimeout    time.Duration `mapstructure:"pass_timeout"`
	SaveTimeout    time.Duration `mapstructure:"save_timeout"`
	Since          time.Duration `mapstructure:"since"`
	LimitPerSource int           `mapstructure:"limit_per_source"`
	Countries      []string      `mapstructure:"countries"`
}

type ScoringConfig struct {
	Weights     WeightsConfig    `mapstructure:"weights"`
	Thresholds  ThresholdsConfig `mapstructure:"thresholds"`
	Concurrency int              `mapstructure:"concurrency"`
	Lookback    time.Duration    `mapstructure:"lookback"`
	StaleAfter  time.Duration    `mapstructure:"stale_after"`
}

type WeightsConfig struct {
	Funding  float64 `mapstructure:"funding"`
	Size     float64 `mapstructure:"size"`
	Industry float64 `mapstructure:"industry"`
	Social   float64 `mapstructure:"social"`
	Recency  float64 `mapstructure:"recency"`
	Source   float64 `mapstructure:"source"`
}

func (w WeightsConfig) Sum() float64 {
	return w.Funding + w.Size + w.Industry + w.Social + w.Recency + w.Source
}

// Validate requires non-negative weights summing to 1 within 0.01.
func (w WeightsConfig) Validate() error {
	for name, v := range map[string]float64{
		"funding": w.Funding, "size": w.Size, "industry": w.Industry,
		"social": w.Social, "recency": w.Recency, "source": w.Source,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("scoring weight %s must be >= 0, got %v", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > 0.01 {
		return fmt.Errorf("scoring weights must sum to 1, got %.4f", sum)
	}
	return nil
}

type ThresholdsConfig struct {
	High    float64 `mapstructure:"high"`
	Medium  float64 `mapstructure:"medium"`
	Low     float64 `mapstructure:"low"`
	Minimum float64 `mapstructure:"minimum"`
}

// RateLimitConfig bounds outbound calls. RequestsPerHour is the shared hourly budget;
// PerSecond and Burst pace calls within a single process.
type RateLimitConfig struct {
	RequestsPerHour int     `mapstructure:"requests_per_hour"`
	PerSecond       float64 `mapstructure:"per_second"`
	Burst           int     `mapstructure:"burst"`
}

// SourceConfig holds the settings every adapter shares.
type SourceConfig struct {
	Enabled    bool            `mapstructure:"enabled"`
	BaseURL    string          `mapstructure:"base_url"`
	APIKey     string          `mapstructure:"api_key"`
	Timeout    time.Duration   `mapstructure:"timeout"`
	MaxRetries int             `mapstructure:"max_retries"`
	RetryDelay time.Duration   `mapstructure:"retry_delay"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

type GitHubSourceConfig struct {
	SourceConfig `mapstructure:",squash"`
	Languages    []string `mapstructure:"languages"`
	Keywords     []string `mapstructure:"keywords"`
}

type RedditSourceConfig struct {
	SourceConfig `mapstructure:",squash"`
	UserAgent    string   `mapstructure:"user_agent"`
	Subreddits   []string `mapstructure:"subreddits"`
	PerListing   int      `mapstructure:"per_listing"`
}

type FeedSourceConfig struct {
	SourceConfig `mapstructure:",squash"`
	Feeds        []string `mapstructure:"feeds"`
	Keywords     []string `mapstructure:"keywords"`
}

type BlindSourceConfig struct {
	SourceConfig `mapstructure:",squash"`
}

type QuoraSourceConfig struct {
	SourceConfig `mapstructure:",squash"`
}

type SourcesConfig struct {
	GitHub      GitHubSourceConfig `mapstructure:"github"`
	Reddit      RedditSourceConfig `mapstructure:"reddit"`
	HackerNews  FeedSourceConfig   `mapstructure:"hacker_news"`
	ProductHunt FeedSourceConfig   `mapstructure:"product_hunt"`
	News        FeedSourceConfig   `mapstructure:"news"`
	Blind       BlindSourceConfig  `mapstructure:"blind"`
	Quora       QuoraSourceConfig  `mapstructure:"quora"`
}

// All returns the shared settings keyed by source config name, in registration order.
func (s SourcesConfig) All() []NamedSource {
	return []NamedSource{
		{Name: "github", Config: s.GitHub.SourceConfig},
		{Name: "reddit", Config: s.Reddit.SourceConfig},
		{Name: "hacker_news", Config: s.HackerNews.SourceConfig},
		{Name: "product_hunt", Config: s.ProductHunt.SourceConfig},
		{Name: "news", Config: s.News.SourceConfig},
		{Name: "blind", Config: s.Blind.SourceConfig},
		{Name: "quora", Config: s.Quora.SourceConfig},
	}
}

type NamedSource struct {
	Name   string
	Config SourceConfig
}

type EventsConfig struct {
	Log      bool           `mapstructure:"log"`
	Stream   bool           `mapstructure:"stream"`
	PaaS     bool           `mapstructure:"paas"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type WebhookConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

var defaultSubreddits = []string{
	"startups", "entrepreneur", "smallbusiness", "SaaS", "technology", "programming",
	"webdev", "MachineLearning", "artificial", "fintech", "cryptocurrency", "venturecapital",
	"growmybusiness", "sideproject", "indiehackers", "ProductHunters", "devops", "cybersecurity",
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.name", "oppfinder")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("log.output", "stdout")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("redis.backend", "memory")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.discovery", "0 0 */6 * * *")
	v.SetDefault("cron.scoring", "0 0 * * * *")
	v.SetDefault("cron.cleanup", "0 0 2 * * *")
	v.SetDefault("cron.health", "0 */15 * * * *")

	v.SetDefault("discovery.max_concurrency", 4)
	v.SetDefault("discovery.pass_timeout", "5m")
	v.SetDefault("discovery.save_timeout", "2m")
	v.SetDefault("discovery.since", "6h")
	v.SetDefault("discovery.limit_per_source", 50)
	v.SetDefault("discovery.countries", []string{})

	v.SetDefault("scoring.weights.funding", 0.25)
	v.SetDefault("scoring.weights.size", 0.20)
	v.SetDefault("scoring.weights.industry", 0.20)
	v.SetDefault("scoring.weights.social", 0.15)
	v.SetDefault("scoring.weights.recency", 0.10)
	v.SetDefault("scoring.weights.source", 0.10)
	v.SetDefault("scoring.thresholds.high", 80)
	v.SetDefault("scoring.thresholds.medium", 60)
	v.SetDefault("scoring.thresholds.low", 40)
	v.SetDefault("scoring.thresholds.minimum", 20)
	v.SetDefault("scoring.concurrency", 8)
	v.SetDefault("scoring.lookback", "24h")
	v.SetDefault("scoring.stale_after", "720h")

	setSourceDefaults(v, "github", true, "https://api.github.com", 5000)
	v.SetDefault("sources.github.languages", []string{"java", "python", "javascript", "typescript"})
	v.SetDefault("sources.github.keywords", []string{
		"startup", "business", "enterprise", "saas", "fintech", "api",
		"platform", "framework", "tool", "service", "app", "application",
	})
	setSourceDefaults(v, "reddit", true, "https://www.reddit.com", 100)
	v.SetDefault("sources.reddit.user_agent", "OpportunityFinder/1.0")
	v.SetDefault("sources.reddit.subreddits", defaultSubreddits)
	v.SetDefault("sources.reddit.per_listing", 10)
	setSourceDefaults(v, "hacker_news", true, "", 100)
	v.SetDefault("sources.hacker_news.feeds", []string{"https://hnrss.org/newest?points=50"})
	v.SetDefault("sources.hacker_news.keywords", []string{})
	setSourceDefaults(v, "product_hunt", false, "", 100)
	v.SetDefault("sources.product_hunt.feeds", []string{"https://www.producthunt.com/feed"})
	v.SetDefault("sources.product_hunt.keywords", []string{})
	setSourceDefaults(v, "news", false, "", 100)
	v.SetDefault("sources.news.feeds", []string{})
	v.SetDefault("sources.news.keywords", []string{"raises", "funding", "series", "launch", "acquires"})
	setSourceDefaults(v, "blind", true, "", 1000)
	setSourceDefaults(v, "quora", true, "", 1000)

	v.SetDefault("events.log", true)
	v.SetDefault("events.stream", true)
	v.SetDefault("events.paas", false)
	v.SetDefault("events.webhook.enabled", false)
	v.SetDefault("events.webhook.url", "")
	v.SetDefault("events.webhook.timeout", "10s")
	v.SetDefault("events.telegram.enabled", false)
	v.SetDefault("events.telegram.bot_token", "")
	v.SetDefault("events.telegram.chat_id", 0)

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "oppfinder")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setSourceDefaults(v *viper.Viper, name string, enabled bool, baseURL string, perHour int) {
	prefix := "sources." + name + "."
	v.SetDefault(prefix+"enabled", enabled)
	v.SetDefault(prefix+"base_url", baseURL)
	v.SetDefault(prefix+"api_key", "")
	v.SetDefault(prefix+"timeout", "10s")
	v.SetDefault(prefix+"max_retries", 3)
	v.SetDefault(prefix+"retry_delay", "1s")
	v.SetDefault(prefix+"rate_limit.requests_per_hour", perHour)
	v.SetDefault(prefix+"rate_limit.per_second", 2)
	v.SetDefault(prefix+"rate_limit.burst", 5)
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Scoring.Weights.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Discovery.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("discovery.max_concurrency must be >= 1, got %d", c.Discovery.MaxConcurrency))
	}
	for _, s := range c.Sources.All() {
		if s.Config.RateLimit.RequestsPerHour <= 0 {
			errs = append(errs, fmt.Errorf("sources.%s.rate_limit.requests_per_hour must be > 0", s.Name))
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Redis.Backend)) {
	case "", "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("redis.backend must be memory or redis, got %q", c.Redis.Backend))
	}
	return errors.Join(errs...)
}

package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/logger"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/ratelimit"
)

const maxBodyBytes = 8 << 20

var defaultConfidence = decimal.NewFromInt(50)

// Deps are the collaborators shared by every adapter.
type Deps struct {
	Governor *ratelimit.Governor
	Switches Switches
	Logger   *zap.Logger
	HTTP     *http.Client
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Base implements the parts of Adapter every source shares: enablement, rate budget
// checks, governed HTTP calls with retries, health tracking and result truncation.
type Base struct {
	source   models.DataSource
	cfg      config.SourceConfig
	validate func() error

	HTTP     *http.Client
	Governor *ratelimit.Governor
	Switches Switches
	Logger   *zap.Logger

	limiter *rate.Limiter
	health  *health.Tracker
	tracer  trace.Tracer
	now     func() time.Time
}

func newBase(source models.DataSource, cfg config.SourceConfig, deps Deps, validate func() error) *Base {
	client := deps.HTTP
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	perSecond := cfg.RateLimit.PerSecond
	if perSecond <= 0 {
		perSecond = 2
	}
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 1
	}
	b := &Base{
		source:   source,
		cfg:      cfg,
		validate: validate,
		HTTP:     client,
		Governor: deps.Governor,
		Switches: deps.Switches,
		Logger:   logger.ForSource(deps.Logger, source),
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		tracer:   otel.Tracer("github.com/psehrawa/opportunities-finder/internal/datasource"),
		now:      time.Now,
	}
	b.health = health.NewTracker(health.DefaultTTL, nil)
	return b
}

func (b *Base) setCheck(p health.Check) {
	b.health = health.NewTracker(health.DefaultTTL, p)
}

func (b *Base) Source() models.DataSource { return b.source }

func (b *Base) IsEnabled(ctx context.Context) bool {
	if b == nil || !b.cfg.Enabled {
		return false
	}
	if b.validate != nil && b.validate() != nil {
		return false
	}
	if b.Switches == nil {
		return true
	}
	return b.Switches.IsEnabled(ctx, SwitchKey(b.source), true)
}

func (b *Base) RateLimitStatus(ctx context.Context) ratelimit.Budget {
	return b.Governor.Status(ctx, b.source)
}

func (b *Base) HealthStatus(ctx context.Context) health.Status {
	return b.health.Get(ctx)
}

// collectFunc gathers records. A non-nil error with records means a partial run.
type collectFunc func(ctx context.Context, q Query) ([]models.Opportunity, error)

// run wraps one discovery call with the shared template.
func (b *Base) run(ctx context.Context, q Query, collect collectFunc) (out []models.Opportunity) {
	ctx, span := b.tracer.Start(ctx, "datasource.discover", trace.WithAttributes(
		attribute.String("source", string(b.source)),
		attribute.Int("limit", q.Limit),
	))
	defer span.End()

	if budget := b.Governor.Status(ctx, b.source); budget.Limited() {
		b.Logger.Info("rate limit exhausted, skipping discovery", zap.Time("reset_at", budget.ResetAt))
		return []models.Opportunity{}
	}

	start := b.now()
	defer func() {
		if r := recover(); r != nil {
			b.Logger.Error("discovery panicked", zap.Any("panic", r))
			b.health.MarkDown(fmt.Sprintf("Error during discovery: %v", r))
			span.SetStatus(codes.Error, "panic")
			out = []models.Opportunity{}
		}
	}()

	recs, err := collect(ctx, q)
	switch {
	case err == nil:
		b.health.MarkUp(fmt.Sprintf("Discovered %d opportunities", len(recs)))
	case budgetOnly(err):
		b.Logger.Info("rate budget exhausted mid-discovery", zap.Int("collected", len(recs)))
	case len(recs) > 0:
		b.Logger.Warn("discovery partially failed", zap.Int("collected", len(recs)), zap.Error(err))
		b.health.MarkDegraded("Partial discovery: " + err.Error())
		span.RecordError(err)
	default:
		b.Logger.Error("discovery failed", zap.Error(err))
		b.health.MarkDown("Error during discovery: " + err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	out = b.finalize(recs, q.Limit)
	span.SetAttributes(attribute.Int("discovered", len(out)))
	b.Logger.Info("discovery completed", zap.Int("count", len(out)), zap.Duration("elapsed", b.now().Sub(start)))
	return out
}

// budgetOnly reports whether err, including every error joined into it, is a budget
// refusal. A real upstream failure in the same pass must still reach health.
func budgetOnly(err error) bool {
	if err == nil {
		return false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		if len(errs) == 0 {
			return false
		}
		for _, e := range errs {
			if !budgetOnly(e) {
				return false
			}
		}
		return true
	}
	if wrapped := errors.Unwrap(err); wrapped != nil {
		return budgetOnly(wrapped)
	}
	return errors.Is(err, ratelimit.ErrBudgetExhausted)
}

// finalize stamps base fields and truncates to limit.
func (b *Base) finalize(recs []models.Opportunity, limit int) []models.Opportunity {
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	now := b.now().UTC()
	out := make([]models.Opportunity, 0, len(recs))
	for _, o := range recs {
		o.Source = b.source
		o.IsActive = true
		if o.Status == "" {
			o.Status = models.StatusDiscovered
		}
		if o.DiscoveredAt.IsZero() {
			o.DiscoveredAt = now
		}
		if o.ConfidenceScore == nil {
			c := defaultConfidence
			o.ConfidenceScore = &c
		}
		out = append(out, o)
	}
	return out
}

// get performs one governed GET: it waits on the local pacer, consumes one unit of the
// shared budget per attempt and retries 429/5xx responses.
func (b *Base) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if ok, _ := b.Governor.Acquire(ctx, b.source); !ok {
			return nil, ratelimit.ErrBudgetExhausted
		}
		body, err := b.do(ctx, url, header)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, err
		}
		if attempt >= b.cfg.MaxRetries {
			return nil, lastErr
		}
		if err := sleep(ctx, b.cfg.RetryDelay); err != nil {
			return nil, err
		}
	}
}

func (b *Base) do(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := b.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		b.Logger.Warn("upstream rate limit exceeded", zap.String("url", url))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		b.Logger.Warn("upstream authentication failed", zap.Int("status", resp.StatusCode))
	}
	return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
}

// check is an ungoverned reachability request used for health refreshes.
func (b *Base) check(ctx context.Context, url string, header http.Header) health.Status {
	now := b.now()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := b.do(ctx, url, header); err != nil {
		b.Logger.Warn("health check failed", zap.Error(err))
		return health.Down("API is not responding", now)
	}
	return health.Up("API is responding", now)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

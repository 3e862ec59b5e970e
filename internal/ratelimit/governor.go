package ratelimit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/psehrawa/opportunities-finder/internal/cache"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

const (
	DefaultRequestsPerHour = 100
	Window                 = time.Hour
)

var ErrBudgetExhausted = errors.New("rate budget exhausted")

// Budget is a point-in-time view of one source's hourly request allowance.
type Budget struct {
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"reset_at"`
}

func (b Budget) Limited() bool {
	return b.Remaining <= 0
}

// Governor meters outbound calls per source through a shared counter store.
// The store is advisory: when it fails, calls are allowed.
type Governor struct {
	Store  cache.CounterStore
	Limits map[models.DataSource]int
	Logger *zap.Logger

	now func() time.Time
}

func NewGovernor(store cache.CounterStore, limits map[models.DataSource]int, logger *zap.Logger) *Governor {
	if limits == nil {
		limits = map[models.DataSource]int{}
	}
	return &Governor{Store: store, Limits: limits, Logger: logger, now: time.Now}
}

func Key(source models.DataSource) string {
	return "rate_limit:" + string(source) + ":requests"
}

func (g *Governor) clock() time.Time {
	if g == nil || g.now == nil {
		return time.Now()
	}
	return g.now()
}

func (g *Governor) Limit(source models.DataSource) int {
	if g == nil {
		return DefaultRequestsPerHour
	}
	if n, ok := g.Limits[source]; ok && n > 0 {
		return n
	}
	return DefaultRequestsPerHour
}

func (g *Governor) unlimited(source models.DataSource) Budget {
	limit := g.Limit(source)
	return Budget{Remaining: limit, Limit: limit, ResetAt: g.clock().Add(Window)}
}

// Status reads the budget without consuming it.
func (g *Governor) Status(ctx context.Context, source models.DataSource) Budget {
	if g == nil || g.Store == nil {
		return g.unlimited(source)
	}
	key := Key(source)
	v, found, err := g.Store.Get(ctx, key)
	if err != nil {
		g.warn("rate status read failed", source, err)
		return g.unlimited(source)
	}
	if !found {
		return g.unlimited(source)
	}
	b := Budget{Remaining: int(max(v, 0)), Limit: g.Limit(source), ResetAt: g.clock().Add(Window)}
	if ttl, ok, err := g.Store.TTL(ctx, key); err == nil && ok && ttl > 0 {
		b.ResetAt = g.clock().Add(ttl)
	}
	return b
}

// Acquire consumes one request unit. The counter window starts on the first call.
func (g *Governor) Acquire(ctx context.Context, source models.DataSource) (bool, Budget) {
	if g == nil || g.Store == nil {
		return true, g.unlimited(source)
	}
	limit := g.Limit(source)
	remaining, ok, err := g.Store.DecrementIfPositive(ctx, Key(source), int64(limit), Window)
	if err != nil {
		g.warn("rate acquire failed, allowing call", source, err)
		return true, g.unlimited(source)
	}
	b := Budget{Remaining: int(max(remaining, 0)), Limit: limit, ResetAt: g.clock().Add(Window)}
	if ttl, found, err := g.Store.TTL(ctx, Key(source)); err == nil && found && ttl > 0 {
		b.ResetAt = g.clock().Add(ttl)
	}
	return ok, b
}

func (g *Governor) Reset(ctx context.Context, source models.DataSource) error {
	if g == nil || g.Store == nil {
		return nil
	}
	return g.Store.Delete(ctx, Key(source))
}

func (g *Governor) warn(msg string, source models.DataSource, err error) {
	if g.Logger == nil {
		return
	}
	g.Logger.Warn(msg, zap.String("source", string(source)), zap.Error(err))
}

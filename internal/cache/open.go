package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/psehrawa/opportunities-finder/internal/config"
)

// Open returns the configured counter store. An unreachable Redis falls back to
// the in-process store so discovery keeps running with per-replica budgets.
func Open(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) CounterStore {
	if strings.ToLower(strings.TrimSpace(cfg.Backend)) != "redis" {
		return NewMemoryStore()
	}
	store := NewRedisStore(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		if logger != nil {
			logger.Warn("redis unavailable, using in-memory counters", zap.String("addr", cfg.Addr), zap.Error(err))
		}
		_ = store.Close()
		return NewMemoryStore()
	}
	return store
}

package cache

import (
	"context"
	"time"
)

// CounterStore is the shared integer counter store used for rate budgets.
// Implementations must make the decrement operations atomic across callers.
type CounterStore interface {
	Get(ctx context.Context, key string) (value int64, found bool, err error)
	Set(ctx context.Context, key string, value int64, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// TTL reports the remaining lifetime of key. found is false when the key is absent;
	// a found key without expiry reports 0.
	TTL(ctx context.Context, key string) (ttl time.Duration, found bool, err error)
	// DecrementAndExpire decrements key (creating it at -1) and applies ttl when the key has none.
	DecrementAndExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// DecrementIfPositive consumes one unit. An absent key is created at initial-1 with ttl.
	// ok is false when nothing was left to consume.
	DecrementIfPositive(ctx context.Context, key string, initial int64, ttl time.Duration) (remaining int64, ok bool, err error)
}

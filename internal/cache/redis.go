package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var decrementIfPositive = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  local init = tonumber(ARGV[1])
  if init <= 0 then
    return {0, 0}
  end
  redis.call('SET', KEYS[1], init - 1, 'PX', ARGV[2])
  return {init - 1, 1}
end
v = tonumber(v)
if v <= 0 then
  return {v, 0}
end
return {redis.call('DECR', KEYS[1]), 1}
`)

var decrementAndExpire = redis.NewScript(`
local v = redis.call('DECR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return v
`)

type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(opt *redis.Options) *RedisStore {
	return &RedisStore{Client: redis.NewClient(opt)}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, bool, error) {
	v, err := s.Client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	return s.Client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	d, err := s.Client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	switch {
	case d == -2:
		return 0, false, nil
	case d < 0:
		return 0, true, nil
	}
	return d, true, nil
}

func (s *RedisStore) DecrementAndExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return decrementAndExpire.Run(ctx, s.Client, []string{key}, ttl.Milliseconds()).Int64()
}

func (s *RedisStore) DecrementIfPositive(ctx context.Context, key string, initial int64, ttl time.Duration) (int64, bool, error) {
	vals, err := decrementIfPositive.Run(ctx, s.Client, []string{key}, initial, ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, false, err
	}
	if len(vals) != 2 {
		return 0, false, errors.New("unexpected script reply")
	}
	return vals[0], vals[1] == 1, nil
}

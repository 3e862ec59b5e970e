package cache

import (
	"context"
	"sync"
	"time"
)

type memItem struct {
	v       int64
	expires time.Time
	noexp   bool
}

func (it memItem) expired(now time.Time) bool {
	return !it.noexp && !it.expires.IsZero() && now.After(it.expires)
}

// MemoryStore keeps counters in-process. It is only a correct shared store for a single replica.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]memItem{}, now: time.Now}
}

// lookup must be called with mu held.
func (s *MemoryStore) lookup(key string) (memItem, bool) {
	it, ok := s.items[key]
	if !ok {
		return memItem{}, false
	}
	if it.expired(s.now()) {
		delete(s.items, key)
		return memItem{}, false
	}
	return it, true
}

func (s *MemoryStore) newItem(v int64, ttl time.Duration) memItem {
	it := memItem{v: v}
	if ttl <= 0 {
		it.noexp = true
	} else {
		it.expires = s.now().Add(ttl)
	}
	return it
}

func (s *MemoryStore) Get(ctx context.Context, key string) (int64, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.lookup(key)
	return it.v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	_ = ctx
	s.mu.Lock()
	s.items[key] = s.newItem(value, ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.lookup(key)
	if !ok {
		return 0, false, nil
	}
	if it.noexp {
		return 0, true, nil
	}
	return it.expires.Sub(s.now()), true, nil
}

func (s *MemoryStore) DecrementAndExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.lookup(key)
	if !ok {
		it = s.newItem(0, ttl)
	} else if it.noexp && ttl > 0 {
		it.noexp = false
		it.expires = s.now().Add(ttl)
	}
	it.v--
	s.items[key] = it
	return it.v, nil
}

func (s *MemoryStore) DecrementIfPositive(ctx context.Context, key string, initial int64, ttl time.Duration) (int64, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.lookup(key)
	if !ok {
		if initial <= 0 {
			return 0, false, nil
		}
		s.items[key] = s.newItem(initial-1, ttl)
		return initial - 1, true, nil
	}
	if it.v <= 0 {
		return it.v, false, nil
	}
	it.v--
	s.items[key] = it
	return it.v, true, nil
}

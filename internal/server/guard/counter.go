package guard

import (
	"context"
	"sync"
	"time"
)

// Policy is a fixed-window limit: at most Limit hits per Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Counter is the per-key window state.
type Counter struct {
	Count       int
	WindowStart time.Time
}

// HitResult reports the outcome of one Hit.
type HitResult struct {
	Allowed bool
	Counter Counter
}

// CounterStore owns the rate-limit counters. Hit must perform the
// reset-check-increment sequence for one key atomically: when now is more
// than Window past WindowStart the counter restarts at now; a counter that
// already reached Limit is rejected and left untouched; otherwise it is
// incremented.
type CounterStore interface {
	Hit(ctx context.Context, key string, now time.Time, p Policy) (HitResult, error)
}

// MemoryCounterStore keeps counters in process memory.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*Counter
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counters: make(map[string]*Counter)}
}

func (s *MemoryCounterStore) Hit(_ context.Context, key string, now time.Time, p Policy) (HitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok {
		c = &Counter{WindowStart: now}
		s.counters[key] = c
	}

	if now.Sub(c.WindowStart) > p.Window {
		c.Count = 0
		c.WindowStart = now
	}

	if c.Count >= p.Limit {
		return HitResult{Allowed: false, Counter: *c}, nil
	}

	c.Count++
	return HitResult{Allowed: true, Counter: *c}, nil
}

// Sweep drops counters whose window ended before now. Expired counters
// would be reset on their next hit anyway.
func (s *MemoryCounterStore) Sweep(now time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, c := range s.counters {
		if now.Sub(c.WindowStart) > window {
			delete(s.counters, k)
			n++
		}
	}
	return n
}

// Len reports the number of tracked keys.
func (s *MemoryCounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// Package ratelimit counts requests per client key in fixed time windows.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether the request identified by key fits in the window
type Limiter interface {
	Allow(ctx context.Context, key string) Decision
}

// MemoryLimiter is a fixed-window counter held in process memory
type MemoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	items  map[string]*window
	now    func() time.Time
	stop   chan struct{}
	once   sync.Once
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter creates a limiter allowing limit requests per window and
// starts a janitor that evicts finished windows. Call Stop to end it.
func NewMemoryLimiter(limit int, win time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 1
	}
	if win <= 0 {
		win = time.Minute
	}
	l := &MemoryLimiter{
		limit:  limit,
		window: win,
		items:  make(map[string]*window),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go l.janitor()
	return l
}

// Allow counts the request and reports whether it is within the limit
func (l *MemoryLimiter) Allow(_ context.Context, key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.items[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.window)}
		l.items[key] = w
	}
	w.count++

	return decide(w.count, l.limit, w.resetAt)
}

// Stop ends the janitor goroutine
func (l *MemoryLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) janitor() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evict()
		}
	}
}

func (l *MemoryLimiter) evict() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, w := range l.items {
		if !now.Before(w.resetAt) {
			delete(l.items, k)
		}
	}
}

func decide(count, limit int, resetAt time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Count:     count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// Package ratelimit provides an in-memory fixed-window rate limiter keyed by
// arbitrary strings (e.g. "login:<ip>"). State is process-local with no
// cross-instance coordination; in a multi-process deployment substitute a
// shared store behind the Limiter interface.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	// Remaining is how many calls are left in the current window (0 when denied).
	Remaining int
	// ResetAt is when the current window ends and the count resets.
	ResetAt time.Time
}

// Limiter decides whether a keyed call may proceed.
type Limiter interface {
	Allow(key string) Decision
}

type entry struct {
	count   int
	resetAt time.Time
}

// WindowLimiter counts calls per key within a fixed window. The first call
// of a window (or any call after the previous window elapsed) resets the
// count to 1; once the count reaches max, further calls are denied until
// ResetAt. Counts near a window boundary may be off by one under concurrent
// callers, which is acceptable for abuse limiting.
type WindowLimiter struct {
	max    int
	window time.Duration

	mu   sync.Mutex
	m    map[string]entry
	nowF func() time.Time
}

// NewWindowLimiter returns a limiter allowing max calls per key per window.
func NewWindowLimiter(max int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		max:    max,
		window: window,
		m:      make(map[string]entry),
		nowF:   time.Now,
	}
}

// Allow records one call for key and reports whether it may proceed.
func (l *WindowLimiter) Allow(key string) Decision {
	now := l.nowF()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.m[key]
	if !ok || !now.Before(e.resetAt) {
		e = entry{count: 1, resetAt: now.Add(l.window)}
		l.m[key] = e
		return Decision{Allowed: true, Remaining: l.max - 1, ResetAt: e.resetAt}
	}

	e.count++
	l.m[key] = e
	if e.count > l.max {
		return Decision{Allowed: false, Remaining: 0, ResetAt: e.resetAt}
	}
	return Decision{Allowed: true, Remaining: l.max - e.count, ResetAt: e.resetAt}
}

// Prune drops expired entries. Callers may run it periodically; the limiter
// works correctly without it, expired entries just hold memory until reused.
func (l *WindowLimiter) Prune() {
	now := l.nowF()
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.m {
		if !now.Before(e.resetAt) {
			delete(l.m, k)
		}
	}
}

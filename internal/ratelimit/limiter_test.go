package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(max int, window time.Duration) (*WindowLimiter, *time.Time) {
	l := NewWindowLimiter(max, window)
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	l.nowF = func() time.Time { return now }
	return l, &now
}

func TestAllow_DeniesAfterMax(t *testing.T) {
	l, _ := newTestLimiter(10, 10*time.Minute)

	for i := 1; i <= 10; i++ {
		d := l.Allow("login:1.2.3.4")
		if !d.Allowed {
			t.Fatalf("call %d denied, want allowed", i)
		}
		if d.Remaining != 10-i {
			t.Errorf("call %d: remaining = %d, want %d", i, d.Remaining, 10-i)
		}
	}

	d := l.Allow("login:1.2.3.4")
	if d.Allowed {
		t.Fatal("11th call allowed, want denied")
	}
	if d.Remaining != 0 {
		t.Errorf("denied remaining = %d, want 0", d.Remaining)
	}
}

func TestAllow_WindowReset(t *testing.T) {
	l, now := newTestLimiter(2, time.Minute)

	l.Allow("k")
	l.Allow("k")
	if d := l.Allow("k"); d.Allowed {
		t.Fatal("3rd call allowed, want denied")
	}

	*now = now.Add(time.Minute)
	d := l.Allow("k")
	if !d.Allowed {
		t.Fatal("call after window elapsed denied, want allowed")
	}
	if d.Remaining != 1 {
		t.Errorf("remaining = %d, want 1", d.Remaining)
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	if d := l.Allow("login:1.1.1.1"); !d.Allowed {
		t.Fatal("first key denied")
	}
	if d := l.Allow("login:1.1.1.1"); d.Allowed {
		t.Fatal("first key not limited")
	}
	if d := l.Allow("login:2.2.2.2"); !d.Allowed {
		t.Fatal("second key affected by first key's count")
	}
}

func TestAllow_ResetAt(t *testing.T) {
	l, now := newTestLimiter(5, 10*time.Minute)

	d := l.Allow("k")
	want := now.Add(10 * time.Minute)
	if !d.ResetAt.Equal(want) {
		t.Errorf("reset_at = %v, want %v", d.ResetAt, want)
	}

	// Later calls in the same window keep the original reset time.
	*now = now.Add(3 * time.Minute)
	if d := l.Allow("k"); !d.ResetAt.Equal(want) {
		t.Errorf("reset_at moved to %v, want %v", d.ResetAt, want)
	}
}

func TestPrune(t *testing.T) {
	l, now := newTestLimiter(5, time.Minute)

	l.Allow("old")
	*now = now.Add(2 * time.Minute)
	l.Allow("fresh")
	l.Prune()

	l.mu.Lock()
	_, oldKept := l.m["old"]
	_, freshKept := l.m["fresh"]
	l.mu.Unlock()
	if oldKept {
		t.Error("expired entry survived Prune")
	}
	if !freshKept {
		t.Error("live entry dropped by Prune")
	}
}

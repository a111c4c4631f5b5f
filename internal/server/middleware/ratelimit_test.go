package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"dayplanner-backend/internal/ratelimit"
)

func TestRateLimit_DeniesWith429AndRetryAfter(t *testing.T) {
	limiter := ratelimit.NewWindowLimiter(2, time.Minute)
	var hits int
	h := RateLimit(limiter, ClientIPKey("login"), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		r.RemoteAddr = "203.0.113.9:51234"
		h.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if hits != 2 {
		t.Errorf("handler ran %d times, want 2", hits)
	}
	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil || retryAfter < 1 || retryAfter > 61 {
		t.Errorf("Retry-After = %q, want seconds within the window", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimit_KeysByClientIP(t *testing.T) {
	limiter := ratelimit.NewWindowLimiter(1, time.Minute)
	h := RateLimit(limiter, ClientIPKey("login"), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, addr := range []string{"203.0.113.9:1000", "203.0.113.10:1000"} {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		r.RemoteAddr = addr
		h.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200 (independent budgets)", addr, rec.Code)
		}
	}

	// Same IP from a different source port shares the budget.
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	r.RemoteAddr = "203.0.113.9:2000"
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 (port must not split the key)", rec.Code)
	}
}

func TestClientIPKey(t *testing.T) {
	keyFn := ClientIPKey("login")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	if got := keyFn(r); got != "login:203.0.113.9" {
		t.Errorf("key = %q, want login:203.0.113.9", got)
	}

	// No port at all.
	r.RemoteAddr = "203.0.113.9"
	if got := keyFn(r); got != "login:203.0.113.9" {
		t.Errorf("key = %q, want login:203.0.113.9", got)
	}

	// IPv6 with port, then bare IPv6 as RealIP leaves it.
	r.RemoteAddr = "[2001:db8::1]:51234"
	if got := keyFn(r); got != "login:2001:db8::1" {
		t.Errorf("key = %q, want login:2001:db8::1", got)
	}
	r.RemoteAddr = "2001:db8::1"
	if got := keyFn(r); got != "login:2001:db8::1" {
		t.Errorf("key = %q, want login:2001:db8::1", got)
	}
}

func TestRateLimit_IPv6ClientsKeyedSeparately(t *testing.T) {
	limiter := ratelimit.NewWindowLimiter(1, time.Minute)
	h := RateLimit(limiter, ClientIPKey("login"), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, addr := range []string{"2001:db8::1", "2001:db8::2"} {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		r.RemoteAddr = addr
		h.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200 (addresses must not share a bucket)", addr, rec.Code)
		}
	}
}

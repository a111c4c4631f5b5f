package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dayplanner-backend/internal/security"
)

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetIdentity(ctx); ok {
		t.Error("GetIdentity on empty context reported ok")
	}

	want := &security.SessionIdentity{UserID: "user-1", Email: "alice@example.com"}
	ctx = WithIdentity(ctx, want)
	got, ok := GetIdentity(ctx)
	if !ok || got != want {
		t.Errorf("GetIdentity = %+v, %v", got, ok)
	}
}

func TestGetIdentity_NilValue(t *testing.T) {
	ctx := WithIdentity(context.Background(), nil)
	if _, ok := GetIdentity(ctx); ok {
		t.Error("nil identity reported ok")
	}
}

func TestClientIPContext(t *testing.T) {
	if got := GetClientIP(context.Background()); got != "" {
		t.Errorf("GetClientIP on empty context = %q, want empty", got)
	}
	ctx := WithClientIP(context.Background(), "203.0.113.9")
	if got := GetClientIP(ctx); got != "203.0.113.9" {
		t.Errorf("GetClientIP = %q", got)
	}
}

func TestClientIPMiddleware(t *testing.T) {
	var got string
	h := ClientIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClientIP(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	h.ServeHTTP(httptest.NewRecorder(), r)
	if got != "203.0.113.9" {
		t.Errorf("client ip = %q, want 203.0.113.9", got)
	}
}

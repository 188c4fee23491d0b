package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockLimiter struct {
	allow bool
	retry time.Duration
	err   error
}

func (m mockLimiter) Allow(context.Context, string, int, time.Duration) (bool, time.Duration, error) {
	return m.allow, m.retry, m.err
}

func TestDistributedRateLimiterFailOpenOnBackendError(t *testing.T) {
	rl := NewDistributedRateLimiter(
		mockLimiter{err: errors.New("redis down")},
		10,
		time.Minute,
		FailOpen,
		"api",
	)
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected fail-open to allow request, got %d", rr.Code)
	}
}

func TestDistributedRateLimiterFailClosedOnBackendError(t *testing.T) {
	rl := NewDistributedRateLimiter(
		mockLimiter{err: errors.New("redis down")},
		10,
		time.Minute,
		FailClosed,
		"api",
	)
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/funds", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected fail-closed to reject request, got %d", rr.Code)
	}
}

func TestDistributedRateLimiterDeniedSetsRetryAfter(t *testing.T) {
	rl := NewDistributedRateLimiter(
		mockLimiter{allow: false, retry: 5 * time.Second},
		1,
		time.Minute,
		FailClosed,
		"api",
	)
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestLocalFixedWindowLimiterCountsPerKey(t *testing.T) {
	limiter := NewLocalFixedWindowLimiter()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "a", 2, time.Minute)
		if err != nil || !allowed {
			t.Fatalf("request %d should be allowed: allowed=%v err=%v", i+1, allowed, err)
		}
	}
	allowed, retryAfter, err := limiter.Allow(ctx, "a", 2, time.Minute)
	if err != nil {
		t.Fatalf("third allow: %v", err)
	}
	if allowed {
		t.Fatal("expected third request over limit to be denied")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retryAfter)
	}

	allowed, _, err = limiter.Allow(ctx, "b", 2, time.Minute)
	if err != nil || !allowed {
		t.Fatalf("other key must have its own window: allowed=%v err=%v", allowed, err)
	}
}

func TestLocalFixedWindowLimiterWindowResets(t *testing.T) {
	limiter := NewLocalFixedWindowLimiter()
	ctx := context.Background()

	if allowed, _, _ := limiter.Allow(ctx, "a", 1, 20*time.Millisecond); !allowed {
		t.Fatal("first request should be allowed")
	}
	if allowed, _, _ := limiter.Allow(ctx, "a", 1, 20*time.Millisecond); allowed {
		t.Fatal("second request in window should be denied")
	}
	time.Sleep(25 * time.Millisecond)
	if allowed, _, _ := limiter.Allow(ctx, "a", 1, 20*time.Millisecond); !allowed {
		t.Fatal("request after window reset should be allowed")
	}
}

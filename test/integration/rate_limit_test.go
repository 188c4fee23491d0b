package integration

import (
	"net/http"
	"testing"

	"go-fund-registry-service/internal/config"
)

func TestAPIRateLimitBlocksAfterBudget(t *testing.T) {
	baseURL, client, closeFn := newTestServerWithOptions(t, testServerOptions{
		cfgOverride: func(cfg *config.Config) {
			cfg.APIRateLimitPerMin = 2
		},
	})
	defer closeFn()

	for i := 0; i < 2; i++ {
		resp, body := doRawText(t, client, http.MethodGet, baseURL+"/api/v1/funds", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 on request %d, got %d body=%q", i+1, resp.StatusCode, body)
		}
	}

	resp, env := doJSON(t, client, http.MethodGet, baseURL+"/api/v1/funds", nil, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected RATE_LIMITED envelope, got %#v", env.Error)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on limited response")
	}
}

func TestRateLimitDoesNotCoverHealthEndpoints(t *testing.T) {
	baseURL, client, closeFn := newTestServerWithOptions(t, testServerOptions{
		cfgOverride: func(cfg *config.Config) {
			cfg.APIRateLimitPerMin = 1
		},
	})
	defer closeFn()

	resp, _ := doRawText(t, client, http.MethodGet, baseURL+"/api/v1/funds", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected first api request 200, got %d", resp.StatusCode)
	}
	resp, _ = doRawText(t, client, http.MethodGet, baseURL+"/api/v1/funds", nil, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected second api request 429, got %d", resp.StatusCode)
	}

	for i := 0; i < 3; i++ {
		resp, _ = doRawText(t, client, http.MethodGet, baseURL+"/healthz", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected health check to bypass the limiter, got %d", resp.StatusCode)
		}
	}
}

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-fund-registry-service/internal/config"
	"go-fund-registry-service/internal/database"
	"go-fund-registry-service/internal/http/handler"
	"go-fund-registry-service/internal/http/router"
	"go-fund-registry-service/internal/repository"
	"go-fund-registry-service/internal/service"
)

type testServerOptions struct {
	cfgOverride func(cfg *config.Config)
}

func newTestServer(t *testing.T) (string, *http.Client, func()) {
	return newTestServerWithOptions(t, testServerOptions{})
}

func newTestServerWithOptions(t *testing.T, opts testServerOptions) (string, *http.Client, func()) {
	t.Helper()

	cfg := &config.Config{
		Env:                "test",
		IdempotencyEnabled: false,
		IdempotencyTTL:     24 * time.Hour,
		APIRateLimitPerMin: 1000,
	}
	if opts.cfgOverride != nil {
		opts.cfgOverride(cfg)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	funds := repository.NewFundRepository(db)
	investors := repository.NewInvestorRepository(db)
	investments := repository.NewInvestmentRepository(db)

	h := router.New(router.Dependencies{
		Logger: log,

		FundHandler:       handler.NewFundHandler(service.NewFundService(funds, log)),
		InvestorHandler:   handler.NewInvestorHandler(service.NewInvestorService(investors, log)),
		InvestmentHandler: handler.NewInvestmentHandler(service.NewInvestmentService(db, funds, investors, investments, log)),
		AnalyticsHandler:  handler.NewAnalyticsHandler(service.NewAnalyticsService(funds, investments)),
		HealthHandler:     handler.NewHealthHandler(db),

		IdempotencyStore:    service.NewDBIdempotencyStore(db),
		IdempotencyEnabled:  cfg.IdempotencyEnabled,
		IdempotencyRequired: cfg.IdempotencyRequired,
		IdempotencyTTL:      cfg.IdempotencyTTL,

		APIRateLimitRPM: cfg.APIRateLimitPerMin,
	})

	srv := httptest.NewServer(h)
	closeFn := func() {
		srv.Close()
		_ = database.Close(db)
	}
	return srv.URL, srv.Client(), closeFn
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// doRawText sends body as-is when it is a string, otherwise JSON-encodes it.
func doRawText(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp, string(raw)
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()
	resp, raw := doRawText(t, client, method, url, body, headers)
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%q", err, raw)
	}
	return resp, env
}

func createFund(t *testing.T, client *http.Client, baseURL, status string, headers map[string]string) string {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/funds", map[string]any{
		"name":            "Meridian Growth IV",
		"vintage_year":    2025,
		"target_size_usd": "250000000",
		"status":          status,
	}, headers)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create fund: status=%d error=%+v", resp.StatusCode, env.Error)
	}
	var fund struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &fund); err != nil {
		t.Fatalf("decode fund: %v", err)
	}
	return fund.ID
}

func createInvestor(t *testing.T, client *http.Client, baseURL, email string) string {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/investors", map[string]any{
		"name":          "Acme Pension",
		"investor_type": "Institution",
		"email":         email,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create investor: status=%d error=%+v", resp.StatusCode, env.Error)
	}
	var investor struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &investor); err != nil {
		t.Fatalf("decode investor: %v", err)
	}
	return investor.ID
}

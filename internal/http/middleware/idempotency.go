package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go-fund-registry-service/internal/http/response"
	"go-fund-registry-service/internal/observability"
	"go-fund-registry-service/internal/service"
)

const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"

	maxIdempotencyKeyLength = 255
)

// Idempotency coordinates retried writes on a single route. The first
// attempt for a key reserves it, runs the handler, and caches the
// response on success; any later attempt with the same key and payload
// replays the cached bytes instead of executing again. A reused key with
// a different payload is a conflict, as is a retry racing an attempt that
// is still running.
//
// Requests without a key pass through untouched unless required is set.
type Idempotency struct {
	store    service.IdempotencyStore
	scope    string
	ttl      time.Duration
	required bool
	logger   *slog.Logger
}

func NewIdempotency(store service.IdempotencyStore, scope string, ttl time.Duration, required bool, logger *slog.Logger) *Idempotency {
	return &Idempotency{store: store, scope: scope, ttl: ttl, required: required, logger: logger}
}

func (i *Idempotency) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" {
				if i.required {
					observability.RecordIdempotencyEvent(r.Context(), i.scope, "missing_key")
					response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing Idempotency-Key header", nil)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLength {
				response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "Idempotency-Key header too long", nil)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "failed to read request body", nil)
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
			fingerprint := requestFingerprint(r.Method, r.URL.Path, body)

			begin, err := i.store.Begin(r.Context(), i.scope, key, fingerprint, i.ttl)
			if err != nil {
				observability.RecordIdempotencyEvent(r.Context(), i.scope, "store_error")
				response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "idempotency store unavailable", nil)
				return
			}

			switch begin.State {
			case service.IdempotencyStateReplay:
				observability.RecordIdempotencyEvent(r.Context(), i.scope, "replay")
				writeReplay(w, key, begin.Cached)
				return
			case service.IdempotencyStateConflict:
				observability.RecordIdempotencyEvent(r.Context(), i.scope, "conflict")
				response.Error(w, r, http.StatusConflict, "CONFLICT", "idempotency key reused with a different payload", nil)
				return
			case service.IdempotencyStateInProgress:
				observability.RecordIdempotencyEvent(r.Context(), i.scope, "in_progress")
				response.Error(w, r, http.StatusConflict, "CONFLICT", "request with this idempotency key is still being processed", nil)
				return
			}

			w.Header().Set(IdempotencyKeyHeader, key)
			rec := newResponseRecorder(w)
			next.ServeHTTP(rec, r)

			// The handler has returned, so the guarded write is already
			// committed or rolled back. Cache only committed outcomes; a
			// failed attempt releases the key so the client can retry.
			// The request context may already be canceled at this point
			// (client gone, deadline hit); the store calls must still run
			// or the reservation would pin the key until the TTL expires.
			ctx := context.WithoutCancel(r.Context())
			if rec.status >= 200 && rec.status < 300 {
				cached := service.CachedHTTPResponse{
					StatusCode:  rec.status,
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.body.Bytes(),
				}
				if err := i.store.Complete(ctx, i.scope, key, fingerprint, cached, i.ttl); err != nil {
					observability.RecordIdempotencyEvent(ctx, i.scope, "store_error")
					i.logger.ErrorContext(ctx, "failed to cache idempotent response",
						"scope", i.scope, "error", err)
					return
				}
				observability.RecordIdempotencyEvent(ctx, i.scope, "miss")
				return
			}
			if err := i.store.Release(ctx, i.scope, key); err != nil {
				observability.RecordIdempotencyEvent(ctx, i.scope, "store_error")
				i.logger.WarnContext(ctx, "failed to release idempotency key",
					"scope", i.scope, "error", err)
			}
		})
	}
}

func requestFingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func writeReplay(w http.ResponseWriter, key string, cached *service.CachedHTTPResponse) {
	if cached.ContentType != "" {
		w.Header().Set("Content-Type", cached.ContentType)
	}
	w.Header().Set(IdempotencyKeyHeader, key)
	w.Header().Set(IdempotencyReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

// responseRecorder tees the response so the bytes sent to the client are
// exactly the bytes cached for replay.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *responseRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}

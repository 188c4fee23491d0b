package service

import (
	"context"
	"time"
)

type IdempotencyState string

const (
	IdempotencyStateNew        IdempotencyState = "new"
	IdempotencyStateReplay     IdempotencyState = "replay"
	IdempotencyStateConflict   IdempotencyState = "conflict"
	IdempotencyStateInProgress IdempotencyState = "in_progress"
)

// CachedHTTPResponse is the byte-for-byte replay value of a completed
// write: callers must observe the identical status and body the first
// attempt produced.
type CachedHTTPResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type IdempotencyBeginResult struct {
	State  IdempotencyState
	Cached *CachedHTTPResponse
}

// IdempotencyStore reserves keys with an atomic conditional insert, so two
// concurrent first attempts for the same unseen key can never both run the
// underlying operation: exactly one sees "new", the other "in_progress".
//
// Begin treats an expired record as absent and deletes it as a side
// effect. Complete must only be called after the guarded write committed;
// a failed attempt calls Release instead so the key stays retryable.
type IdempotencyStore interface {
	Begin(ctx context.Context, scope, key, fingerprint string, ttl time.Duration) (IdempotencyBeginResult, error)
	Complete(ctx context.Context, scope, key, fingerprint string, response CachedHTTPResponse, ttl time.Duration) error
	Release(ctx context.Context, scope, key string) error
	CleanupExpired(ctx context.Context, now time.Time, batch int) (int64, error)
}

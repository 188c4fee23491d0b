package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"go-fund-registry-service/internal/domain"
)

const (
	idempotencyStatusNew       = "new"
	idempotencyStatusCompleted = "completed"
)

// DBIdempotencyStore keeps records in the primary relational store. The
// unique index on (scope, key) makes the reservation in Begin atomic
// across processes.
type DBIdempotencyStore struct {
	db *gorm.DB
}

func NewDBIdempotencyStore(db *gorm.DB) *DBIdempotencyStore {
	return &DBIdempotencyStore{db: db}
}

func (s *DBIdempotencyStore) Begin(ctx context.Context, scope, key, fingerprint string, ttl time.Duration) (IdempotencyBeginResult, error) {
	// One retry: the only way the second insert can still conflict is a
	// concurrent reservation, which is exactly the in_progress answer.
	for attempt := 0; attempt < 2; attempt++ {
		record := domain.IdempotencyRecord{
			Scope:           scope,
			IdempotencyKey:  key,
			FingerprintHash: fingerprint,
			Status:          idempotencyStatusNew,
			ExpiresAt:       time.Now().UTC().Add(ttl),
		}
		err := s.db.WithContext(ctx).Create(&record).Error
		if err == nil {
			return IdempotencyBeginResult{State: IdempotencyStateNew}, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return IdempotencyBeginResult{}, fmt.Errorf("reserve idempotency key: %w", err)
		}

		var existing domain.IdempotencyRecord
		findErr := s.db.WithContext(ctx).
			Where("scope = ? AND idempotency_key = ?", scope, key).
			First(&existing).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			// Deleted between our insert and lookup; loop and re-reserve.
			continue
		}
		if findErr != nil {
			return IdempotencyBeginResult{}, fmt.Errorf("load idempotency record: %w", findErr)
		}

		if time.Now().UTC().After(existing.ExpiresAt) {
			if delErr := s.db.WithContext(ctx).Delete(&domain.IdempotencyRecord{}, existing.ID).Error; delErr != nil {
				return IdempotencyBeginResult{}, fmt.Errorf("delete expired idempotency record: %w", delErr)
			}
			continue
		}
		if existing.FingerprintHash != fingerprint {
			return IdempotencyBeginResult{State: IdempotencyStateConflict}, nil
		}
		if existing.Status == idempotencyStatusCompleted {
			return IdempotencyBeginResult{
				State: IdempotencyStateReplay,
				Cached: &CachedHTTPResponse{
					StatusCode:  existing.ResponseStatus,
					ContentType: existing.ContentType,
					Body:        append([]byte(nil), existing.ResponseBody...),
				},
			}, nil
		}
		return IdempotencyBeginResult{State: IdempotencyStateInProgress}, nil
	}
	return IdempotencyBeginResult{State: IdempotencyStateInProgress}, nil
}

func (s *DBIdempotencyStore) Complete(ctx context.Context, scope, key, fingerprint string, response CachedHTTPResponse, ttl time.Duration) error {
	res := s.db.WithContext(ctx).Model(&domain.IdempotencyRecord{}).
		Where("scope = ? AND idempotency_key = ? AND fingerprint_hash = ? AND status <> ?",
			scope, key, fingerprint, idempotencyStatusCompleted).
		Updates(map[string]any{
			"status":          idempotencyStatusCompleted,
			"response_status": response.StatusCode,
			"response_body":   response.Body,
			"content_type":    response.ContentType,
			"expires_at":      time.Now().UTC().Add(ttl),
		})
	if res.Error != nil {
		return fmt.Errorf("complete idempotency record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("complete idempotency record: reservation for %s/%s is gone or already completed", scope, key)
	}
	return nil
}

func (s *DBIdempotencyStore) Release(ctx context.Context, scope, key string) error {
	err := s.db.WithContext(ctx).
		Where("scope = ? AND idempotency_key = ? AND status = ?", scope, key, idempotencyStatusNew).
		Delete(&domain.IdempotencyRecord{}).Error
	if err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func (s *DBIdempotencyStore) CleanupExpired(ctx context.Context, now time.Time, batch int) (int64, error) {
	// Two-step delete keeps the statement portable; postgres has no
	// DELETE ... LIMIT.
	var ids []uint
	err := s.db.WithContext(ctx).Model(&domain.IdempotencyRecord{}).
		Where("expires_at < ?", now).
		Order("id asc").Limit(batch).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("select expired idempotency records: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Delete(&domain.IdempotencyRecord{}, ids)
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired idempotency records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

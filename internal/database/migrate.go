package database

import (
	"go-fund-registry-service/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Fund{},
		&domain.Investor{},
		&domain.Investment{},
		&domain.IdempotencyRecord{},
	)
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/observability"
)

type InvestmentRepository interface {
	WithTx(tx *gorm.DB) InvestmentRepository
	ListByFund(ctx context.Context, fundID string) ([]domain.Investment, error)
	ListByFundWithInvestors(ctx context.Context, fundID string) ([]domain.Investment, error)
	Create(ctx context.Context, investment *domain.Investment) error
	CountByFund(ctx context.Context, fundID string) (int64, error)
}

type GormInvestmentRepository struct{ db *gorm.DB }

func NewInvestmentRepository(db *gorm.DB) InvestmentRepository {
	return &GormInvestmentRepository{db: db}
}

func (r *GormInvestmentRepository) WithTx(tx *gorm.DB) InvestmentRepository {
	return &GormInvestmentRepository{db: tx}
}

func (r *GormInvestmentRepository) ListByFund(ctx context.Context, fundID string) ([]domain.Investment, error) {
	var investments []domain.Investment
	err := r.db.WithContext(ctx).Where("fund_id = ?", fundID).
		Order("created_at desc").Order("id asc").
		Find(&investments).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "investment", "list_by_fund", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "investment", "list_by_fund", "success")
	return investments, nil
}

func (r *GormInvestmentRepository) ListByFundWithInvestors(ctx context.Context, fundID string) ([]domain.Investment, error) {
	var investments []domain.Investment
	err := r.db.WithContext(ctx).Preload("Investor").
		Where("fund_id = ?", fundID).
		Order("created_at desc").Order("id asc").
		Find(&investments).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "investment", "list_with_investors", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "investment", "list_with_investors", "success")
	return investments, nil
}

func (r *GormInvestmentRepository) Create(ctx context.Context, investment *domain.Investment) error {
	if err := r.db.WithContext(ctx).Create(investment).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "investment", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "investment", "create", "success")
	return nil
}

func (r *GormInvestmentRepository) CountByFund(ctx context.Context, fundID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Investment{}).Where("fund_id = ?", fundID).Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "investment", "count_by_fund", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "investment", "count_by_fund", "success")
	return count, nil
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/observability"
)

var ErrInvestorNotFound = errors.New("investor not found")

type InvestorRepository interface {
	WithTx(tx *gorm.DB) InvestorRepository
	ListPaged(ctx context.Context, page PageRequest) (PageResult[domain.Investor], error)
	FindByID(ctx context.Context, id string) (*domain.Investor, error)
	Create(ctx context.Context, investor *domain.Investor) error
}

type GormInvestorRepository struct{ db *gorm.DB }

func NewInvestorRepository(db *gorm.DB) InvestorRepository {
	return &GormInvestorRepository{db: db}
}

func (r *GormInvestorRepository) WithTx(tx *gorm.DB) InvestorRepository {
	return &GormInvestorRepository{db: tx}
}

func (r *GormInvestorRepository) ListPaged(ctx context.Context, page PageRequest) (PageResult[domain.Investor], error) {
	page = normalizePageRequest(page)

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Investor{}).Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "investor", "list", "error")
		return PageResult[domain.Investor]{}, err
	}

	var investors []domain.Investor
	err := r.db.WithContext(ctx).Order("created_at desc").Order("id asc").
		Offset((page.Page - 1) * page.PageSize).Limit(page.PageSize).
		Find(&investors).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "investor", "list", "error")
		return PageResult[domain.Investor]{}, err
	}
	observability.RecordRepositoryOperation(ctx, "investor", "list", "success")
	return PageResult[domain.Investor]{
		Items:      investors,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}

func (r *GormInvestorRepository) FindByID(ctx context.Context, id string) (*domain.Investor, error) {
	var investor domain.Investor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&investor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "investor", "find_by_id", "not_found")
			return nil, ErrInvestorNotFound
		}
		observability.RecordRepositoryOperation(ctx, "investor", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "investor", "find_by_id", "success")
	return &investor, nil
}

func (r *GormInvestorRepository) Create(ctx context.Context, investor *domain.Investor) error {
	if err := r.db.WithContext(ctx).Create(investor).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "investor", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "investor", "create", "success")
	return nil
}

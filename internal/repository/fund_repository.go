package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/observability"
)

var ErrFundNotFound = errors.New("fund not found")

type FundListQuery struct {
	PageRequest
	Status domain.FundStatus
}

type FundRepository interface {
	WithTx(tx *gorm.DB) FundRepository
	ListPaged(ctx context.Context, q FundListQuery) (PageResult[domain.Fund], error)
	FindByID(ctx context.Context, id string) (*domain.Fund, error)
	// FindByIDForUpdate locks the fund row for the duration of the
	// surrounding transaction so a concurrent close cannot slip in
	// between the status check and the investment insert.
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Fund, error)
	Create(ctx context.Context, fund *domain.Fund) error
	Update(ctx context.Context, fund *domain.Fund) error
}

type GormFundRepository struct{ db *gorm.DB }

func NewFundRepository(db *gorm.DB) FundRepository {
	return &GormFundRepository{db: db}
}

func (r *GormFundRepository) WithTx(tx *gorm.DB) FundRepository {
	return &GormFundRepository{db: tx}
}

func (r *GormFundRepository) ListPaged(ctx context.Context, q FundListQuery) (PageResult[domain.Fund], error) {
	page := normalizePageRequest(q.PageRequest)
	query := r.db.WithContext(ctx).Model(&domain.Fund{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "fund", "list", "error")
		return PageResult[domain.Fund]{}, err
	}

	var funds []domain.Fund
	err := query.Order("created_at desc").Order("id asc").
		Offset((page.Page - 1) * page.PageSize).Limit(page.PageSize).
		Find(&funds).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "fund", "list", "error")
		return PageResult[domain.Fund]{}, err
	}
	observability.RecordRepositoryOperation(ctx, "fund", "list", "success")
	return PageResult[domain.Fund]{
		Items:      funds,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}

func (r *GormFundRepository) FindByID(ctx context.Context, id string) (*domain.Fund, error) {
	return r.findByID(ctx, id, false)
}

func (r *GormFundRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Fund, error) {
	return r.findByID(ctx, id, true)
}

func (r *GormFundRepository) findByID(ctx context.Context, id string, forUpdate bool) (*domain.Fund, error) {
	query := r.db.WithContext(ctx)
	// sqlite has no FOR UPDATE; its single-writer model gives the same
	// guarantee inside a write transaction.
	if forUpdate && r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var fund domain.Fund
	if err := query.Where("id = ?", id).First(&fund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "fund", "find_by_id", "not_found")
			return nil, ErrFundNotFound
		}
		observability.RecordRepositoryOperation(ctx, "fund", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "fund", "find_by_id", "success")
	return &fund, nil
}

func (r *GormFundRepository) Create(ctx context.Context, fund *domain.Fund) error {
	if err := r.db.WithContext(ctx).Create(fund).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "fund", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "fund", "create", "success")
	return nil
}

func (r *GormFundRepository) Update(ctx context.Context, fund *domain.Fund) error {
	res := r.db.WithContext(ctx).Model(&domain.Fund{}).Where("id = ?", fund.ID).Updates(map[string]any{
		"name":            fund.Name,
		"vintage_year":    fund.VintageYear,
		"target_size_usd": fund.TargetSizeUSD,
		"status":          fund.Status,
	})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "fund", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "fund", "update", "not_found")
		return ErrFundNotFound
	}
	observability.RecordRepositoryOperation(ctx, "fund", "update", "success")
	return nil
}

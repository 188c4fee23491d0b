package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-fund-registry-service/internal/apperror"
	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/repository"
)

type CreateFundInput struct {
	Name          string
	VintageYear   int
	TargetSizeUSD decimal.Decimal
	Status        domain.FundStatus
}

type UpdateFundInput struct {
	ID            string
	Name          string
	VintageYear   int
	TargetSizeUSD decimal.Decimal
	Status        domain.FundStatus
}

type FundService interface {
	List(ctx context.Context, q repository.FundListQuery) (repository.PageResult[domain.Fund], error)
	GetByID(ctx context.Context, id string) (*domain.Fund, error)
	Create(ctx context.Context, in CreateFundInput) (*domain.Fund, error)
	Update(ctx context.Context, in UpdateFundInput) (*domain.Fund, error)
}

type fundService struct {
	funds  repository.FundRepository
	logger *slog.Logger
}

func NewFundService(funds repository.FundRepository, logger *slog.Logger) FundService {
	return &fundService{funds: funds, logger: logger}
}

func (s *fundService) List(ctx context.Context, q repository.FundListQuery) (repository.PageResult[domain.Fund], error) {
	page, err := s.funds.ListPaged(ctx, q)
	if err != nil {
		return repository.PageResult[domain.Fund]{}, apperror.Internal("failed to list funds", err)
	}
	return page, nil
}

func (s *fundService) GetByID(ctx context.Context, id string) (*domain.Fund, error) {
	fund, err := s.funds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFundNotFound) {
			return nil, apperror.NotFound("fund not found")
		}
		return nil, apperror.Internal("failed to load fund", err)
	}
	return fund, nil
}

func (s *fundService) Create(ctx context.Context, in CreateFundInput) (*domain.Fund, error) {
	if in.Status == "" {
		in.Status = domain.FundStatusFundraising
	}
	if err := validateFundFields(in.Name, in.VintageYear, in.TargetSizeUSD, in.Status); err != nil {
		return nil, err
	}

	fund := &domain.Fund{
		Name:          strings.TrimSpace(in.Name),
		VintageYear:   in.VintageYear,
		TargetSizeUSD: in.TargetSizeUSD,
		Status:        in.Status,
	}
	if err := s.funds.Create(ctx, fund); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("fund already exists")
		}
		return nil, apperror.Internal("failed to create fund", err)
	}
	s.logger.InfoContext(ctx, "fund created", "fund_id", fund.ID, "name", fund.Name)
	return fund, nil
}

func (s *fundService) Update(ctx context.Context, in UpdateFundInput) (*domain.Fund, error) {
	if err := validateFundFields(in.Name, in.VintageYear, in.TargetSizeUSD, in.Status); err != nil {
		return nil, err
	}

	fund := &domain.Fund{
		ID:            in.ID,
		Name:          strings.TrimSpace(in.Name),
		VintageYear:   in.VintageYear,
		TargetSizeUSD: in.TargetSizeUSD,
		Status:        in.Status,
	}
	if err := s.funds.Update(ctx, fund); err != nil {
		if errors.Is(err, repository.ErrFundNotFound) {
			return nil, apperror.NotFound("fund not found")
		}
		return nil, apperror.Internal("failed to update fund", err)
	}
	s.logger.InfoContext(ctx, "fund updated", "fund_id", in.ID, "status", in.Status)
	return s.GetByID(ctx, in.ID)
}

func validateFundFields(name string, vintageYear int, targetSize decimal.Decimal, status domain.FundStatus) error {
	if strings.TrimSpace(name) == "" {
		return apperror.Validation("name is required")
	}
	if vintageYear < 1900 || vintageYear > 2100 {
		return apperror.Validation("vintage_year must be between 1900 and 2100")
	}
	if !targetSize.IsPositive() {
		return apperror.Validation("target_size_usd must be positive")
	}
	if !status.Valid() {
		return apperror.Validation("invalid fund status")
	}
	return nil
}

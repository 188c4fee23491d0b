package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-fund-registry-service/internal/apperror"
	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/observability"
	"go-fund-registry-service/internal/repository"
)

type CreateInvestmentInput struct {
	InvestorID     string
	AmountUSD      decimal.Decimal
	InvestmentDate time.Time
}

type InvestmentService interface {
	ListByFund(ctx context.Context, fundID string) ([]domain.Investment, error)
	Create(ctx context.Context, fundID string, in CreateInvestmentInput) (*domain.Investment, error)
}

type investmentService struct {
	db          *gorm.DB
	funds       repository.FundRepository
	investors   repository.InvestorRepository
	investments repository.InvestmentRepository
	logger      *slog.Logger
}

func NewInvestmentService(
	db *gorm.DB,
	funds repository.FundRepository,
	investors repository.InvestorRepository,
	investments repository.InvestmentRepository,
	logger *slog.Logger,
) InvestmentService {
	return &investmentService{
		db:          db,
		funds:       funds,
		investors:   investors,
		investments: investments,
		logger:      logger,
	}
}

func (s *investmentService) ListByFund(ctx context.Context, fundID string) ([]domain.Investment, error) {
	if _, err := s.funds.FindByID(ctx, fundID); err != nil {
		if errors.Is(err, repository.ErrFundNotFound) {
			return nil, apperror.NotFound("fund not found")
		}
		return nil, apperror.Internal("failed to load fund", err)
	}
	investments, err := s.investments.ListByFund(ctx, fundID)
	if err != nil {
		return nil, apperror.Internal("failed to list investments", err)
	}
	return investments, nil
}

// Create enforces the closed-fund invariant inside one transaction: the
// fund row stays locked from the status check until commit, so a
// concurrent transition to Closed can never interleave with the insert.
// Every failure path rolls the whole unit back.
func (s *investmentService) Create(ctx context.Context, fundID string, in CreateInvestmentInput) (*domain.Investment, error) {
	if !in.AmountUSD.IsPositive() {
		return nil, apperror.Validation("amount_usd must be positive")
	}
	if in.InvestmentDate.IsZero() {
		return nil, apperror.Validation("investment_date is required")
	}

	investment := &domain.Investment{
		FundID:         fundID,
		InvestorID:     in.InvestorID,
		AmountUSD:      in.AmountUSD,
		InvestmentDate: in.InvestmentDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fund, err := s.funds.WithTx(tx).FindByIDForUpdate(ctx, fundID)
		if err != nil {
			if errors.Is(err, repository.ErrFundNotFound) {
				return apperror.NotFound("fund not found")
			}
			return apperror.Internal("failed to load fund", err)
		}
		if fund.Status == domain.FundStatusClosed {
			s.logger.WarnContext(ctx, "investment into closed fund rejected", "fund_id", fundID)
			observability.RecordBusinessRuleRejection(ctx, "fund_closed")
			return apperror.BusinessRule("cannot invest in a closed fund")
		}

		if _, err := s.investors.WithTx(tx).FindByID(ctx, in.InvestorID); err != nil {
			if errors.Is(err, repository.ErrInvestorNotFound) {
				return apperror.NotFound("investor not found")
			}
			return apperror.Internal("failed to load investor", err)
		}

		if err := s.investments.WithTx(tx).Create(ctx, investment); err != nil {
			return apperror.Internal("failed to create investment", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.Internal("investment transaction failed", err)
	}

	s.logger.InfoContext(ctx, "investment created",
		"investment_id", investment.ID,
		"fund_id", fundID,
		"investor_id", in.InvestorID,
	)
	return investment, nil
}

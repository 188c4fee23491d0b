package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"go-fund-registry-service/internal/apperror"
	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/repository"
)

type CreateInvestorInput struct {
	Name         string
	InvestorType string
	Email        string
}

type InvestorService interface {
	List(ctx context.Context, page repository.PageRequest) (repository.PageResult[domain.Investor], error)
	Create(ctx context.Context, in CreateInvestorInput) (*domain.Investor, error)
}

type investorService struct {
	investors repository.InvestorRepository
	logger    *slog.Logger
}

func NewInvestorService(investors repository.InvestorRepository, logger *slog.Logger) InvestorService {
	return &investorService{investors: investors, logger: logger}
}

func (s *investorService) List(ctx context.Context, page repository.PageRequest) (repository.PageResult[domain.Investor], error) {
	result, err := s.investors.ListPaged(ctx, page)
	if err != nil {
		return repository.PageResult[domain.Investor]{}, apperror.Internal("failed to list investors", err)
	}
	return result, nil
}

func (s *investorService) Create(ctx context.Context, in CreateInvestorInput) (*domain.Investor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	investorType, ok := domain.ParseInvestorType(in.InvestorType)
	if !ok {
		return nil, apperror.Validation("invalid investor type")
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.Validation("invalid email address")
	}

	investor := &domain.Investor{Name: name, InvestorType: investorType, Email: email}
	if err := s.investors.Create(ctx, investor); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("investor email already exists")
		}
		return nil, apperror.Internal("failed to create investor", err)
	}
	s.logger.InfoContext(ctx, "investor created", "investor_id", investor.ID, "email", investor.Email)
	return investor, nil
}

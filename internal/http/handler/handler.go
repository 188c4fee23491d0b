package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go-fund-registry-service/internal/apperror"
	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/http/response"
	"go-fund-registry-service/internal/repository"
)

const dateLayout = "2006-01-02"

// writeAppError maps the service error taxonomy onto transport status
// codes. Internal causes never reach the wire; only the service-chosen
// message does.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	message := "internal server error"
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", message, nil)
	case apperror.KindBusinessRule:
		response.Error(w, r, http.StatusUnprocessableEntity, "BUSINESS_RULE_VIOLATION", message, nil)
	case apperror.KindConflict:
		response.Error(w, r, http.StatusConflict, "CONFLICT", message, nil)
	case apperror.KindValidation:
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", message, nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}

func pageRequestFromQuery(r *http.Request) repository.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return repository.PageRequest{Page: page, PageSize: pageSize}
}

type pageView[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type fundView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	VintageYear   int    `json:"vintage_year"`
	TargetSizeUSD string `json:"target_size_usd"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func newFundView(f *domain.Fund) fundView {
	return fundView{
		ID:            f.ID,
		Name:          f.Name,
		VintageYear:   f.VintageYear,
		TargetSizeUSD: f.TargetSizeUSD.StringFixed(2),
		Status:        string(f.Status),
		CreatedAt:     f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type investorView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	InvestorType string `json:"investor_type"`
	Email        string `json:"email"`
	CreatedAt    string `json:"created_at"`
}

func newInvestorView(i *domain.Investor) investorView {
	return investorView{
		ID:           i.ID,
		Name:         i.Name,
		InvestorType: i.InvestorType.APIValue(),
		Email:        i.Email,
		CreatedAt:    i.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type investmentView struct {
	ID             string `json:"id"`
	FundID         string `json:"fund_id"`
	InvestorID     string `json:"investor_id"`
	AmountUSD      string `json:"amount_usd"`
	InvestmentDate string `json:"investment_date"`
	CreatedAt      string `json:"created_at"`
}

func newInvestmentView(i *domain.Investment) investmentView {
	return investmentView{
		ID:             i.ID,
		FundID:         i.FundID,
		InvestorID:     i.InvestorID,
		AmountUSD:      i.AmountUSD.StringFixed(2),
		InvestmentDate: i.InvestmentDate.UTC().Format(dateLayout),
		CreatedAt:      i.CreatedAt.UTC().Format(time.RFC3339),
	}
}

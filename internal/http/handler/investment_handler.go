package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"go-fund-registry-service/internal/http/response"
	"go-fund-registry-service/internal/observability"
	"go-fund-registry-service/internal/service"
)

type InvestmentHandler struct {
	investmentSvc service.InvestmentService
}

func NewInvestmentHandler(investmentSvc service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investmentSvc: investmentSvc}
}

type investmentRequest struct {
	InvestorID     string          `json:"investor_id"`
	AmountUSD      decimal.Decimal `json:"amount_usd"`
	InvestmentDate string          `json:"investment_date"`
}

func (h *InvestmentHandler) ListByFund(w http.ResponseWriter, r *http.Request) {
	investments, err := h.investmentSvc.ListByFund(r.Context(), chi.URLParam(r, "fund_id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	items := make([]investmentView, 0, len(investments))
	for i := range investments {
		items = append(items, newInvestmentView(&investments[i]))
	}
	response.JSON(w, r, http.StatusOK, items)
}

func (h *InvestmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req investmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	date, err := time.Parse(dateLayout, req.InvestmentDate)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "investment_date must be YYYY-MM-DD", nil)
		return
	}

	fundID := chi.URLParam(r, "fund_id")
	investment, err := h.investmentSvc.Create(r.Context(), fundID, service.CreateInvestmentInput{
		InvestorID:     req.InvestorID,
		AmountUSD:      req.AmountUSD,
		InvestmentDate: date,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "investment.create",
		TargetType: "investment",
		TargetID:   investment.ID,
		Action:     "create",
		Outcome:    "success",
		Reason:     "investment_recorded",
	}, "fund_id", fundID, "investor_id", investment.InvestorID, "amount_usd", investment.AmountUSD.StringFixed(2))
	response.JSON(w, r, http.StatusCreated, newInvestmentView(investment))
}

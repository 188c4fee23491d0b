package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/http/response"
	"go-fund-registry-service/internal/observability"
	"go-fund-registry-service/internal/repository"
	"go-fund-registry-service/internal/service"
)

type FundHandler struct {
	fundSvc service.FundService
}

func NewFundHandler(fundSvc service.FundService) *FundHandler {
	return &FundHandler{fundSvc: fundSvc}
}

type fundRequest struct {
	Name          string          `json:"name"`
	VintageYear   int             `json:"vintage_year"`
	TargetSizeUSD decimal.Decimal `json:"target_size_usd"`
	Status        string          `json:"status"`
}

func (h *FundHandler) List(w http.ResponseWriter, r *http.Request) {
	q := repository.FundListQuery{
		PageRequest: pageRequestFromQuery(r),
		Status:      domain.FundStatus(r.URL.Query().Get("status")),
	}
	if q.Status != "" && !q.Status.Valid() {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status filter", nil)
		return
	}

	page, err := h.fundSvc.List(r.Context(), q)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	items := make([]fundView, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newFundView(&page.Items[i]))
	}
	response.JSON(w, r, http.StatusOK, pageView[fundView]{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

func (h *FundHandler) Get(w http.ResponseWriter, r *http.Request) {
	fund, err := h.fundSvc.GetByID(r.Context(), chi.URLParam(r, "fund_id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, newFundView(fund))
}

func (h *FundHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	fund, err := h.fundSvc.Create(r.Context(), service.CreateFundInput{
		Name:          req.Name,
		VintageYear:   req.VintageYear,
		TargetSizeUSD: req.TargetSizeUSD,
		Status:        domain.FundStatus(req.Status),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "fund.create",
		TargetType: "fund",
		TargetID:   fund.ID,
		Action:     "create",
		Outcome:    "success",
		Reason:     "fund_created",
	}, "name", fund.Name, "status", string(fund.Status))
	response.JSON(w, r, http.StatusCreated, newFundView(fund))
}

func (h *FundHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	fundID := chi.URLParam(r, "fund_id")
	fund, err := h.fundSvc.Update(r.Context(), service.UpdateFundInput{
		ID:            fundID,
		Name:          req.Name,
		VintageYear:   req.VintageYear,
		TargetSizeUSD: req.TargetSizeUSD,
		Status:        domain.FundStatus(req.Status),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "fund.update",
		TargetType: "fund",
		TargetID:   fund.ID,
		Action:     "update",
		Outcome:    "success",
		Reason:     "fund_updated",
	}, "status", string(fund.Status))
	response.JSON(w, r, http.StatusOK, newFundView(fund))
}

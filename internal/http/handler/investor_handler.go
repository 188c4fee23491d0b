package handler

import (
	"encoding/json"
	"net/http"

	"go-fund-registry-service/internal/http/response"
	"go-fund-registry-service/internal/observability"
	"go-fund-registry-service/internal/service"
)

type InvestorHandler struct {
	investorSvc service.InvestorService
}

func NewInvestorHandler(investorSvc service.InvestorService) *InvestorHandler {
	return &InvestorHandler{investorSvc: investorSvc}
}

type investorRequest struct {
	Name         string `json:"name"`
	InvestorType string `json:"investor_type"`
	Email        string `json:"email"`
}

func (h *InvestorHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.investorSvc.List(r.Context(), pageRequestFromQuery(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	items := make([]investorView, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newInvestorView(&page.Items[i]))
	}
	response.JSON(w, r, http.StatusOK, pageView[investorView]{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

func (h *InvestorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req investorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	investor, err := h.investorSvc.Create(r.Context(), service.CreateInvestorInput{
		Name:         req.Name,
		InvestorType: req.InvestorType,
		Email:        req.Email,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "investor.create",
		TargetType: "investor",
		TargetID:   investor.ID,
		Action:     "create",
		Outcome:    "success",
		Reason:     "investor_created",
	}, "investor_type", investor.InvestorType.APIValue())
	response.JSON(w, r, http.StatusCreated, newInvestorView(investor))
}

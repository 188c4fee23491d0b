package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-fund-registry-service/internal/http/response"
	"go-fund-registry-service/internal/service"
)

type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

func (h *AnalyticsHandler) FundAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.analyticsSvc.FundAnalytics(r.Context(), chi.URLParam(r, "fund_id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, analytics)
}

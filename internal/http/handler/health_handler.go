package handler

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"go-fund-registry-service/internal/http/response"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "database not configured", nil)
		return
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "database unavailable", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "database unavailable", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
}

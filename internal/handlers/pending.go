package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
)

// PendingLister defines the interface that the service must implement.
type PendingLister interface {
	ListPending(ctx context.Context, page, pageSize int) ([]models.DepositDB, int64, error)
}

// PendingDepositsResponse represents a page of pending deposits
// swagger:model PendingDepositsResponse
type PendingDepositsResponse struct {
	Deposits []models.DepositDB `json:"deposits"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Total    int64              `json:"total"`
}

// PendingDepositsErrorResponse represents an error response for the pending queue
// swagger:model PendingDepositsErrorResponse
type PendingDepositsErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewPendingDepositsHandler returns an HTTP handler listing pending deposits.
// @Summary List pending deposits
// @Description Returns the admin approval queue, oldest first
// @Tags admin
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} handlers.PendingDepositsResponse "Pending deposits"
// @Failure 500 {object} handlers.PendingDepositsErrorResponse "Internal server error"
// @Router /admin/deposits [get]
// @Security BearerAuth
func NewPendingDepositsHandler(svc PendingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		page := 1
		pageSize := 20
		if p := r.URL.Query().Get("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v
			}
		}
		if ps := r.URL.Query().Get("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v
			}
		}

		deposits, total, err := svc.ListPending(ctx, page, pageSize)
		if err != nil {
			logger.Log.Errorw("failed to list pending deposits", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(PendingDepositsErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(PendingDepositsResponse{
			Deposits: deposits,
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		})
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/services"
)

// StatsGetter defines the interface that the service must implement.
type StatsGetter interface {
	Get(ctx context.Context) (*services.Stats, error)
}

// StatsErrorResponse represents an error response for the stats endpoint
// swagger:model StatsErrorResponse
type StatsErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewStatsHandler returns an HTTP handler for the admin dashboard aggregate.
// @Summary Get dashboard stats
// @Description Returns reporting aggregates over the ledger, including the unaccounted figure (approved deposits minus completed withdrawals minus system balance)
// @Tags admin
// @Produce json
// @Success 200 {object} services.Stats "Dashboard stats"
// @Failure 500 {object} handlers.StatsErrorResponse "Internal server error"
// @Router /admin/stats [get]
// @Security BearerAuth
func NewStatsHandler(svc StatsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Get(r.Context())
		if err != nil {
			logger.Log.Errorw("failed to get stats", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(StatsErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(stats)
	}
}

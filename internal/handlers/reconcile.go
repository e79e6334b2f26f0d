package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/services"
)

// Reconciler defines the interface that the service must implement.
type Reconciler interface {
	ReconcileUser(ctx context.Context, userID uuid.UUID) (*services.UserReconciliation, error)
}

// ReconcileErrorResponse represents an error response for reconciliation
// swagger:model ReconcileErrorResponse
type ReconcileErrorResponse struct {
	// Error message
	// default: Wallet not found
	Error string `json:"error"`
}

// NewReconcileHandler returns an HTTP handler comparing a wallet balance
// against the sum of the user's ledger entries.
// @Summary Reconcile a wallet
// @Description Compares the stored wallet balance with the signed sum of the user's ledger entries
// @Tags admin
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} services.UserReconciliation "Reconciliation result"
// @Failure 400 {object} handlers.ReconcileErrorResponse "Invalid user ID"
// @Failure 404 {object} handlers.ReconcileErrorResponse "Wallet not found"
// @Failure 500 {object} handlers.ReconcileErrorResponse "Internal server error"
// @Router /admin/wallets/{userID}/reconcile [get]
// @Security BearerAuth
func NewReconcileHandler(svc Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ReconcileErrorResponse{Error: "Invalid user ID"})
			return
		}

		result, err := svc.ReconcileUser(ctx, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ReconcileErrorResponse{Error: "Wallet not found"})
			default:
				logger.Log.Errorw("failed to reconcile wallet", "user_id", userID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ReconcileErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(result)
	}
}

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

// Rejecter defines the interface that the approval workflow must implement.
type Rejecter interface {
	Reject(ctx context.Context, depositID uuid.UUID, reason string) error
}

// RejectRequest represents the JSON body for rejecting a deposit
// swagger:model RejectRequest
type RejectRequest struct {
	// Reason recorded on the deposit
	// required: true
	// default: Receipt does not match the claimed amount
	Reason string `json:"reason"`
}

// RejectResponse represents a successful rejection response
// swagger:model RejectResponse
type RejectResponse struct {
	// Success message
	// default: Deposit rejected
	Message string `json:"message"`

	// Rejected deposit id
	DepositID string `json:"deposit_id"`
}

// RejectErrorResponse represents an error response for rejection
// swagger:model RejectErrorResponse
type RejectErrorResponse struct {
	// Error message
	// default: Deposit is not pending
	Error string `json:"error"`
}

// NewRejectHandler returns an HTTP handler for rejecting a pending deposit.
// @Summary Reject deposit
// @Description Mark the deposit rejected. Never touches any wallet balance.
// @Tags admin
// @Accept json
// @Produce json
// @Param depositID path string true "Deposit ID"
// @Param request body handlers.RejectRequest true "Reject Request"
// @Success 200 {object} handlers.RejectResponse "Deposit rejected"
// @Failure 400 {object} handlers.RejectErrorResponse "Invalid deposit id or request body"
// @Failure 404 {object} handlers.RejectErrorResponse "Deposit not found"
// @Failure 409 {object} handlers.RejectErrorResponse "Deposit is not pending"
// @Failure 500 {object} handlers.RejectErrorResponse "Internal server error"
// @Router /admin/deposits/{depositID}/reject [post]
// @Security BearerAuth
func NewRejectHandler(svc Rejecter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		depositID, err := uuid.Parse(chi.URLParam(r, "depositID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RejectErrorResponse{Error: "Invalid deposit id"})
			return
		}

		var req RejectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RejectErrorResponse{Error: "Invalid request body"})
			return
		}

		if err := svc.Reject(ctx, depositID, req.Reason); err != nil {
			switch {
			case errors.Is(err, services.ErrDepositNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(RejectErrorResponse{Error: "Deposit not found"})
			case errors.Is(err, services.ErrInvalidDepositState):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(RejectErrorResponse{Error: "Deposit is not pending"})
			default:
				logger.Log.Errorw("failed to reject deposit", "deposit_id", depositID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RejectErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(RejectResponse{
			Message:   "Deposit rejected",
			DepositID: depositID.String(),
		})
	}
}

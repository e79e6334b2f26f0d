package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"github.com/sbilibin2017/gw-deposit-approval/internal/services"
	"github.com/shopspring/decimal"
)

// Adjuster defines the ledger interface this handler credits through.
type Adjuster interface {
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, description string, reference *uuid.UUID) (*models.TransactionDB, error)
}

// AdjustmentRequest represents the JSON body for a manual balance adjustment
// swagger:model AdjustmentRequest
type AdjustmentRequest struct {
	// Signed amount; negative for debits
	// required: true
	// default: -25.00
	Amount decimal.Decimal `json:"amount"`

	// Reason recorded on the ledger entry
	// required: true
	// default: Chargeback correction
	Description string `json:"description"`
}

// AdjustmentResponse represents a successful adjustment response
// swagger:model AdjustmentResponse
type AdjustmentResponse struct {
	// Success message
	// default: Balance adjusted
	Message string `json:"message"`

	// Ledger entry created for the adjustment
	Transaction *models.TransactionDB `json:"transaction"`
}

// AdjustmentErrorResponse represents an error response for adjustments
// swagger:model AdjustmentErrorResponse
type AdjustmentErrorResponse struct {
	// Error message
	// default: Debit would drive balance below zero
	Error string `json:"error"`
}

// NewAdjustmentHandler returns an HTTP handler for manual balance adjustments.
// @Summary Adjust wallet balance
// @Description Apply a signed manual adjustment to a user's wallet. Debits that would drive the balance below zero are refused.
// @Tags admin
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param request body handlers.AdjustmentRequest true "Adjustment Request"
// @Success 200 {object} handlers.AdjustmentResponse "Balance adjusted"
// @Failure 400 {object} handlers.AdjustmentErrorResponse "Invalid request"
// @Failure 404 {object} handlers.AdjustmentErrorResponse "Wallet not found"
// @Failure 409 {object} handlers.AdjustmentErrorResponse "Debit would drive balance below zero"
// @Failure 500 {object} handlers.AdjustmentErrorResponse "Internal server error"
// @Router /admin/wallets/{userID}/adjustment [post]
// @Security BearerAuth
func NewAdjustmentHandler(svc Adjuster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(AdjustmentErrorResponse{Error: "Invalid user id"})
			return
		}

		var req AdjustmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(AdjustmentErrorResponse{Error: "Invalid request body"})
			return
		}

		if req.Amount.IsZero() || req.Description == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(AdjustmentErrorResponse{Error: "Amount and description are required"})
			return
		}

		txn, err := svc.Credit(ctx, userID, req.Amount.Round(2), models.TransactionTypeManualAdjustment, req.Description, nil)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(AdjustmentErrorResponse{Error: "Wallet not found"})
			case errors.Is(err, services.ErrNegativeBalance):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(AdjustmentErrorResponse{Error: "Debit would drive balance below zero"})
			default:
				logger.Log.Errorw("failed to adjust balance", "user_id", userID, "amount", req.Amount, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(AdjustmentErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(AdjustmentResponse{
			Message:     "Balance adjusted",
			Transaction: txn,
		})
	}
}

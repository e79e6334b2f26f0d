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
	"github.com/shopspring/decimal"
)

// Approver defines the interface that the approval workflow must implement.
type Approver interface {
	Approve(ctx context.Context, depositID uuid.UUID, notes *string) (*services.ApprovalResult, error)
}

// ApproveRequest represents the JSON body for approving a deposit
// swagger:model ApproveRequest
type ApproveRequest struct {
	// Admin notes recorded on the deposit, optional
	Notes *string `json:"notes,omitempty"`
}

// CommissionInfo reports the referral commission evaluated for an approval
// swagger:model CommissionInfo
type CommissionInfo struct {
	// The referring user credited
	Payee string `json:"payee"`

	// Tier rate applied
	// default: 0.03
	Rate decimal.Decimal `json:"rate"`

	// Commission amount
	// default: 30.00
	Amount decimal.Decimal `json:"amount"`

	// Whether the commission credit succeeded; false means it was left for
	// manual reconciliation
	Paid bool `json:"paid"`
}

// ApproveResponse represents a successful approval response
// swagger:model ApproveResponse
type ApproveResponse struct {
	// Success message
	// default: Deposit approved
	Message string `json:"message"`

	// Approved deposit id
	DepositID string `json:"deposit_id"`

	// Depositor's balance after the credit
	NewBalance decimal.Decimal `json:"new_balance"`

	// Commission outcome, omitted when no commission was owed
	Commission *CommissionInfo `json:"commission,omitempty"`
}

// ApproveErrorResponse represents an error response for approval
// swagger:model ApproveErrorResponse
type ApproveErrorResponse struct {
	// Error message
	// default: Deposit is not pending
	Error string `json:"error"`
}

// NewApproveHandler returns an HTTP handler for approving a pending deposit.
// @Summary Approve deposit
// @Description Credit the depositor's wallet, pay any referral commission and mark the deposit approved. One-shot: a deposit already in a terminal state is rejected with 409.
// @Tags admin
// @Accept json
// @Produce json
// @Param depositID path string true "Deposit ID"
// @Param request body handlers.ApproveRequest false "Approve Request"
// @Success 200 {object} handlers.ApproveResponse "Deposit approved"
// @Failure 400 {object} handlers.ApproveErrorResponse "Invalid deposit id"
// @Failure 404 {object} handlers.ApproveErrorResponse "Deposit not found"
// @Failure 409 {object} handlers.ApproveErrorResponse "Deposit is not pending"
// @Failure 500 {object} handlers.ApproveErrorResponse "Internal server error"
// @Router /admin/deposits/{depositID}/approve [post]
// @Security BearerAuth
func NewApproveHandler(svc Approver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		depositID, err := uuid.Parse(chi.URLParam(r, "depositID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ApproveErrorResponse{Error: "Invalid deposit id"})
			return
		}

		var req ApproveRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ApproveErrorResponse{Error: "Invalid request body"})
				return
			}
		}

		result, err := svc.Approve(ctx, depositID, req.Notes)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDepositNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ApproveErrorResponse{Error: "Deposit not found"})
			case errors.Is(err, services.ErrInvalidDepositState):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(ApproveErrorResponse{Error: "Deposit is not pending"})
			case errors.Is(err, services.ErrDuplicateReference):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(ApproveErrorResponse{Error: "Deposit already credited"})
			default:
				logger.Log.Errorw("failed to approve deposit", "deposit_id", depositID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ApproveErrorResponse{Error: "Internal server error"})
			}
			return
		}

		resp := ApproveResponse{
			Message:    "Deposit approved",
			DepositID:  depositID.String(),
			NewBalance: result.NewBalance,
		}
		if result.Commission != nil {
			resp.Commission = &CommissionInfo{
				Payee:  result.Commission.Payee.String(),
				Rate:   result.Commission.Rate,
				Amount: result.Commission.Amount,
				Paid:   result.CommissionPaid,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/jwt"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"github.com/sbilibin2017/gw-deposit-approval/internal/services"
	"github.com/shopspring/decimal"
)

// DepositTokener defines only the methods needed by this handler.
type DepositTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// DepositSubmitter defines the interface that the service must implement.
type DepositSubmitter interface {
	Submit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, paymentMethod, reference string, receiptURL *string) (*models.DepositDB, error)
}

// SubmitDepositRequest represents the JSON body for submitting a funding request
// swagger:model SubmitDepositRequest
type SubmitDepositRequest struct {
	// Amount to deposit
	// required: true
	// default: 100.00
	Amount decimal.Decimal `json:"amount"`

	// Payment method
	// required: true
	// default: bank_transfer
	PaymentMethod string `json:"payment_method"`

	// External payment reference
	// default: TRX-12345
	Reference string `json:"reference"`

	// Uploaded receipt image URL, optional
	ReceiptURL *string `json:"receipt_url,omitempty"`
}

// SubmitDepositResponse represents a successful deposit submission response
// swagger:model SubmitDepositResponse
type SubmitDepositResponse struct {
	// Success message
	// default: Deposit request submitted
	Message string `json:"message"`

	// The created pending deposit
	Deposit *models.DepositDB `json:"deposit"`
}

// SubmitDepositErrorResponse represents an error response for deposit submission
// swagger:model SubmitDepositErrorResponse
type SubmitDepositErrorResponse struct {
	// Error message
	// default: Invalid amount or payment method
	Error string `json:"error"`
}

// NewSubmitDepositHandler returns an HTTP handler for submitting a funding request.
// @Summary Submit deposit request
// @Description Create a pending deposit request awaiting admin approval
// @Tags deposits
// @Accept json
// @Produce json
// @Param request body handlers.SubmitDepositRequest true "Submit Deposit Request"
// @Success 201 {object} handlers.SubmitDepositResponse "Deposit request submitted"
// @Failure 400 {object} handlers.SubmitDepositErrorResponse "Invalid amount or payment method"
// @Failure 401 {object} handlers.SubmitDepositErrorResponse "Unauthorized"
// @Router /deposits [post]
// @Security BearerAuth
func NewSubmitDepositHandler(
	svc DepositSubmitter,
	tokenGetter DepositTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(SubmitDepositErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(SubmitDepositErrorResponse{Error: "Unauthorized"})
			return
		}

		var req SubmitDepositRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode deposit request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SubmitDepositErrorResponse{Error: "Invalid request body"})
			return
		}

		deposit, err := svc.Submit(ctx, claims.UserID, req.Amount, req.PaymentMethod, req.Reference, req.ReceiptURL)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidDepositAmount),
				errors.Is(err, services.ErrInvalidPaymentMethod):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(SubmitDepositErrorResponse{Error: "Invalid amount or payment method"})
			default:
				logger.Log.Errorw("failed to submit deposit", "userID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(SubmitDepositErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(SubmitDepositResponse{
			Message: "Deposit request submitted",
			Deposit: deposit,
		})
	}
}

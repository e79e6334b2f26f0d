package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/jwt"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/services"
	"github.com/shopspring/decimal"
)

// BalanceTokener defines only the methods needed by this handler.
type BalanceTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// BalanceReader defines the interface that the service must implement.
type BalanceReader interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

// BalanceResponse represents a successful response with the user balance
// swagger:model BalanceResponse
type BalanceResponse struct {
	// Current balance
	// default: 100.00
	Balance decimal.Decimal `json:"balance"`
}

// BalanceErrorResponse represents an error response when fetching balance
// swagger:model BalanceErrorResponse
type BalanceErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewGetBalanceHandler returns an HTTP handler for fetching the user balance.
// @Summary Get user balance
// @Description Returns the authenticated user's wallet balance
// @Tags wallet
// @Produce json
// @Success 200 {object} handlers.BalanceResponse "User balance"
// @Failure 401 {object} handlers.BalanceErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.BalanceErrorResponse "Wallet not found"
// @Failure 500 {object} handlers.BalanceErrorResponse "Internal server error"
// @Router /balance [get]
// @Security BearerAuth
func NewGetBalanceHandler(
	svc BalanceReader,
	tokenGetter BalanceTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Unauthorized"})
			return
		}

		balance, err := svc.GetBalance(ctx, claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Wallet not found"})
			default:
				logger.Log.Errorw("failed to get balance", "userID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(BalanceResponse{Balance: balance})
	}
}

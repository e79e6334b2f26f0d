package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/jwt"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
)

// HistoryTokener defines only the methods needed by this handler.
type HistoryTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// HistoryReader defines the interface that the service must implement.
type HistoryReader interface {
	ListTransactions(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.TransactionDB, int64, error)
}

// HistoryResponse represents a page of the user's ledger history
// swagger:model HistoryResponse
type HistoryResponse struct {
	Transactions []models.TransactionDB `json:"transactions"`
	Page         int                    `json:"page"`
	PageSize     int                    `json:"page_size"`
	Total        int64                  `json:"total"`
}

// HistoryErrorResponse represents an error response for history
// swagger:model HistoryErrorResponse
type HistoryErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewHistoryHandler returns an HTTP handler for the user's transaction history.
// @Summary Get transaction history
// @Description Returns the authenticated user's ledger entries, newest first
// @Tags wallet
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} handlers.HistoryResponse "Transaction history"
// @Failure 401 {object} handlers.HistoryErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.HistoryErrorResponse "Internal server error"
// @Router /transactions [get]
// @Security BearerAuth
func NewHistoryHandler(
	svc HistoryReader,
	tokenGetter HistoryTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(HistoryErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(HistoryErrorResponse{Error: "Unauthorized"})
			return
		}

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

		txns, total, err := svc.ListTransactions(ctx, claims.UserID, page, pageSize)
		if err != nil {
			logger.Log.Errorw("failed to list transactions", "userID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(HistoryErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(HistoryResponse{
			Transactions: txns,
			Page:         page,
			PageSize:     pageSize,
			Total:        total,
		})
	}
}

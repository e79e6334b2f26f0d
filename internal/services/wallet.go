package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"github.com/shopspring/decimal"
)

// WalletReader defines read-only wallet access.
type WalletReader interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.WalletDB, error)
}

// TransactionLister pages through a user's ledger entries.
type TransactionLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TransactionDB, int64, error)
}

// WalletService serves balance and history reads. Balances go through the
// Redis cache; the ledger invalidates the cache on every credit.
type WalletService struct {
	wallets WalletReader
	txns    TransactionLister
	cache   *WalletCache
}

// NewWalletService creates a new WalletService instance.
func NewWalletService(wallets WalletReader, txns TransactionLister, cache *WalletCache) *WalletService {
	return &WalletService{
		wallets: wallets,
		txns:    txns,
		cache:   cache,
	}
}

// GetBalance returns the user's current balance, cache first.
func (svc *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if svc.cache != nil {
		if cached, err := svc.cache.GetBalance(ctx, userID); err != nil {
			logger.Log.Warnw("balance cache read failed", "user_id", userID, "error", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	wallet, err := svc.wallets.GetByUserID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get wallet", "user_id", userID, "error", err)
		return decimal.Zero, err
	}
	if wallet == nil {
		return decimal.Zero, ErrWalletNotFound
	}

	if svc.cache != nil {
		if err := svc.cache.SetBalance(ctx, userID, wallet.Balance); err != nil {
			logger.Log.Warnw("balance cache write failed", "user_id", userID, "error", err)
		}
	}

	return wallet.Balance, nil
}

// ListTransactions returns a page of the user's ledger history, newest first.
func (svc *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.TransactionDB, int64, error) {
	offset := (page - 1) * pageSize
	txns, total, err := svc.txns.ListByUser(ctx, userID, pageSize, offset)
	if err != nil {
		logger.Log.Errorw("failed to list transactions", "user_id", userID, "error", err)
		return nil, 0, err
	}
	return txns, total, nil
}

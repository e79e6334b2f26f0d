package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/shopspring/decimal"
)

// StatsReader computes the dashboard aggregates.
type StatsReader interface {
	TotalApprovedDeposits(ctx context.Context) (decimal.Decimal, error)
	TotalCompletedWithdrawals(ctx context.Context) (decimal.Decimal, error)
	SystemBalance(ctx context.Context) (decimal.Decimal, error)
}

// LedgerSummer sums a user's ledger entries.
type LedgerSummer interface {
	SumAmountByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

// Stats is the admin dashboard aggregate. Unaccounted is approved deposits
// minus completed withdrawals minus the system balance: a reporting figure
// for the gap between net-deposited funds and current wallet balances. It is
// not a ledger invariant and nothing enforces it.
type Stats struct {
	TotalApprovedDeposits     decimal.Decimal `json:"total_approved_deposits"`
	TotalCompletedWithdrawals decimal.Decimal `json:"total_completed_withdrawals"`
	SystemBalance             decimal.Decimal `json:"system_balance"`
	Unaccounted               decimal.Decimal `json:"unaccounted"`
}

// UserReconciliation compares a wallet balance against the sum of the user's
// ledger entries. The two must agree; a non-zero delta is data to
// investigate, not something this service repairs.
type UserReconciliation struct {
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	LedgerSum decimal.Decimal `json:"ledger_sum"`
	Delta     decimal.Decimal `json:"delta"`
	Balanced  bool            `json:"balanced"`
}

// StatsService serves the dashboard aggregate, cached in Redis, and per-user
// ledger reconciliation.
type StatsService struct {
	reader  StatsReader
	wallets WalletReader
	ledger  LedgerSummer
	cache   *WalletCache
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(reader StatsReader, wallets WalletReader, ledger LedgerSummer, cache *WalletCache) *StatsService {
	return &StatsService{reader: reader, wallets: wallets, ledger: ledger, cache: cache}
}

// ReconcileUser checks a single wallet against its ledger.
func (svc *StatsService) ReconcileUser(ctx context.Context, userID uuid.UUID) (*UserReconciliation, error) {
	wallet, err := svc.wallets.GetByUserID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get wallet", "user_id", userID, "error", err)
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	sum, err := svc.ledger.SumAmountByUser(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to sum ledger entries", "user_id", userID, "error", err)
		return nil, err
	}

	delta := wallet.Balance.Sub(sum)
	return &UserReconciliation{
		UserID:    userID,
		Balance:   wallet.Balance,
		LedgerSum: sum,
		Delta:     delta,
		Balanced:  delta.IsZero(),
	}, nil
}

// Get returns the current dashboard aggregate, cache first.
func (svc *StatsService) Get(ctx context.Context) (*Stats, error) {
	if svc.cache != nil {
		var cached Stats
		if found, err := svc.cache.GetStats(ctx, &cached); err != nil {
			logger.Log.Warnw("stats cache read failed", "error", err)
		} else if found {
			return &cached, nil
		}
	}

	deposits, err := svc.reader.TotalApprovedDeposits(ctx)
	if err != nil {
		logger.Log.Errorw("failed to sum approved deposits", "error", err)
		return nil, err
	}
	withdrawals, err := svc.reader.TotalCompletedWithdrawals(ctx)
	if err != nil {
		logger.Log.Errorw("failed to sum completed withdrawals", "error", err)
		return nil, err
	}
	balance, err := svc.reader.SystemBalance(ctx)
	if err != nil {
		logger.Log.Errorw("failed to sum system balance", "error", err)
		return nil, err
	}

	stats := &Stats{
		TotalApprovedDeposits:     deposits,
		TotalCompletedWithdrawals: withdrawals,
		SystemBalance:             balance,
		Unaccounted:               deposits.Sub(withdrawals).Sub(balance),
	}

	if svc.cache != nil {
		if err := svc.cache.SetStats(ctx, stats); err != nil {
			logger.Log.Warnw("stats cache write failed", "error", err)
		}
	}

	return stats, nil
}

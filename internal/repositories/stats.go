package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/shopspring/decimal"
)

// StatsRepository computes reporting aggregates over the ledger. These are
// dashboard figures, not invariants: nothing here participates in the
// approval flow.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// TotalApprovedDeposits returns the sum of all approved deposit amounts.
func (r *StatsRepository) TotalApprovedDeposits(ctx context.Context) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM deposits
		WHERE status = 'approved'
	`
	return r.sum(ctx, query)
}

// TotalCompletedWithdrawals returns the magnitude of all completed
// withdrawal ledger entries (entries carry negative amounts).
func (r *StatsRepository) TotalCompletedWithdrawals(ctx context.Context) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(-SUM(amount), 0)
		FROM transactions
		WHERE type = 'withdrawal' AND status = 'completed'
	`
	return r.sum(ctx, query)
}

// SystemBalance returns the sum of all wallet balances.
func (r *StatsRepository) SystemBalance(ctx context.Context) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(balance), 0)
		FROM wallets
	`
	return r.sum(ctx, query)
}

func (r *StatsRepository) sum(ctx context.Context, query string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, query)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"result", total,
		"error", err,
	)

	return total, err
}

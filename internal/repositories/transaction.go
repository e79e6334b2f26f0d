package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"github.com/shopspring/decimal"
)

// TransactionWriteRepository appends ledger entries. The transactions table
// is append-only; there is deliberately no update or delete here.
type TransactionWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewTransactionWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a ledger entry with its balance snapshot.
func (r *TransactionWriteRepository) Save(ctx context.Context, txn *models.TransactionDB) error {
	query := `
		INSERT INTO transactions (transaction_id, user_id, type, amount,
		                          balance_before, balance_after, status,
		                          description, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	args := []any{
		txn.TransactionID, txn.UserID, txn.Type, txn.Amount,
		txn.BalanceBefore, txn.BalanceAfter, txn.Status,
		txn.Description, txn.Reference,
	}

	var executor sqlx.ExtContext = r.db
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			executor = tx
		}
	}

	_, err := executor.ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	return err
}

// TransactionReadRepository handles ledger read operations
type TransactionReadRepository struct {
	db *sqlx.DB
}

func NewTransactionReadRepository(db *sqlx.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// ExistsByReference reports whether a ledger entry of the given type already
// references the given deposit. Used as idempotency evidence for retries.
func (r *TransactionReadRepository) ExistsByReference(ctx context.Context, reference uuid.UUID, txType models.TransactionType) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM transactions WHERE reference = $1 AND type = $2
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, reference, txType)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{reference, txType},
		"result", exists,
		"error", err,
	)

	return exists, err
}

// SumAmountByUser returns the signed sum of all ledger entries for a user.
// Reconciliation: this must always equal the wallet balance.
func (r *TransactionReadRepository) SumAmountByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1
	`

	var sum decimal.Decimal
	err := r.db.GetContext(ctx, &sum, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", sum,
		"error", err,
	)

	return sum, err
}

// ListByUser returns a page of the user's ledger entries, newest first,
// together with the total count for pagination.
func (r *TransactionReadRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TransactionDB, int64, error) {
	const countQuery = `SELECT COUNT(*) FROM transactions WHERE user_id = $1`
	const listQuery = `
		SELECT transaction_id, user_id, type, amount, balance_before,
		       balance_after, status, description, reference, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	var txns []models.TransactionDB
	err := r.db.SelectContext(ctx, &txns, listQuery, userID, limit, offset)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(listQuery), " "),
		"args", []any{userID, limit, offset},
		"result", len(txns),
		"error", err,
	)

	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"github.com/shopspring/decimal"
)

// WalletRepository is the single writer for wallet balances. Every balance
// change goes through ApplyDelta; nothing else updates the wallets table.
type WalletRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewWalletRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *WalletRepository {
	return &WalletRepository{db: db, txGetter: txGetter}
}

// GetByUserID returns the user's wallet, or nil if it does not exist.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.WalletDB, error) {
	const query = `
		SELECT wallet_id, user_id, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	var executor sqlx.ExtContext = r.db
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			executor = tx
		}
	}

	var wallet models.WalletDB
	err := sqlx.GetContext(ctx, executor, &wallet, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// CreateIfAbsent provisions a zero-balance wallet for the user. Safe to call
// more than once; an existing wallet is left untouched.
func (r *WalletRepository) CreateIfAbsent(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO wallets (wallet_id, user_id, balance, created_at, updated_at)
		VALUES ($1, $2, 0, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	var executor sqlx.ExtContext = r.db
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			executor = tx
		}
	}

	_, err := executor.ExecContext(ctx, query, uuid.New(), userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"error", err,
	)

	return err
}

// ApplyDelta adjusts the wallet balance by delta (negative for debits) in a
// single guarded statement and returns the new balance. The UPDATE takes the
// row lock, which serializes concurrent changes to the same wallet; the WHERE
// guard refuses any change that would drive the balance below zero.
// Returns sql.ErrNoRows when the wallet is missing or the guard rejected the
// delta; callers disambiguate with GetByUserID.
func (r *WalletRepository) ApplyDelta(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1 AND balance + $2 >= 0
		RETURNING balance
	`

	var executor sqlx.ExtContext = r.db
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			executor = tx
		}
	}

	var balance decimal.Decimal
	err := sqlx.GetContext(ctx, executor, &balance, query, userID, delta)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, delta},
		"result", balance,
		"error", err,
	)

	return balance, err
}

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
)

// DepositReadRepository handles deposit read operations
type DepositReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewDepositReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *DepositReadRepository {
	return &DepositReadRepository{db: db, txGetter: txGetter}
}

// GetByID returns the deposit with the given id, or nil if it does not exist.
func (r *DepositReadRepository) GetByID(ctx context.Context, depositID uuid.UUID) (*models.DepositDB, error) {
	const query = `
		SELECT deposit_id, user_id, amount, status, payment_method, reference,
		       receipt_url, admin_notes, created_at, updated_at
		FROM deposits
		WHERE deposit_id = $1
	`
	return r.get(ctx, query, depositID)
}

// GetByIDForUpdate reads the deposit under a row lock. Callers must run it
// inside a transaction; the lock is what serializes concurrent approvals of
// the same deposit.
func (r *DepositReadRepository) GetByIDForUpdate(ctx context.Context, depositID uuid.UUID) (*models.DepositDB, error) {
	const query = `
		SELECT deposit_id, user_id, amount, status, payment_method, reference,
		       receipt_url, admin_notes, created_at, updated_at
		FROM deposits
		WHERE deposit_id = $1
		FOR UPDATE
	`
	return r.get(ctx, query, depositID)
}

func (r *DepositReadRepository) get(ctx context.Context, query string, depositID uuid.UUID) (*models.DepositDB, error) {
	var executor sqlx.ExtContext = r.db
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			executor = tx
		}
	}

	var deposit models.DepositDB
	err := sqlx.GetContext(ctx, executor, &deposit, query, depositID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{depositID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &deposit, nil
}

// ListByStatus returns a page of deposits in the given status, oldest first,
// together with the total count for pagination.
func (r *DepositReadRepository) ListByStatus(ctx context.Context, status models.DepositStatus, limit, offset int) ([]models.DepositDB, int64, error) {
	const countQuery = `SELECT COUNT(*) FROM deposits WHERE status = $1`
	const listQuery = `
		SELECT deposit_id, user_id, amount, status, payment_method, reference,
		       receipt_url, admin_notes, created_at, updated_at
		FROM deposits
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, status); err != nil {
		return nil, 0, err
	}

	var deposits []models.DepositDB
	err := r.db.SelectContext(ctx, &deposits, listQuery, status, limit, offset)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(listQuery), " "),
		"args", []any{status, limit, offset},
		"result", len(deposits),
		"error", err,
	)

	if err != nil {
		return nil, 0, err
	}
	return deposits, total, nil
}

// DepositWriteRepository handles deposit write operations
type DepositWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewDepositWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *DepositWriteRepository {
	return &DepositWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a new pending deposit request.
func (r *DepositWriteRepository) Save(ctx context.Context, deposit *models.DepositDB) error {
	query := `
		INSERT INTO deposits (deposit_id, user_id, amount, status, payment_method,
		                      reference, receipt_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	args := []any{
		deposit.DepositID, deposit.UserID, deposit.Amount, deposit.Status,
		deposit.PaymentMethod, deposit.Reference, deposit.ReceiptURL,
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

// UpdateStatusIfPending transitions the deposit to newStatus only if its
// stored status is still pending (compare-and-set). Returns false when the
// row does not exist or another caller already moved it to a terminal state.
func (r *DepositWriteRepository) UpdateStatusIfPending(ctx context.Context, depositID uuid.UUID, newStatus models.DepositStatus, notes *string) (bool, error) {
	query := `
		UPDATE deposits
		SET status = $2, admin_notes = $3, updated_at = NOW()
		WHERE deposit_id = $1 AND status = 'pending'
	`
	args := []any{depositID, newStatus, notes}

	var executor sqlx.ExtContext = r.db
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			executor = tx
		}
	}

	res, err := executor.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

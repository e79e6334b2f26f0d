package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/middlewares"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrWalletNotFound is returned when the target wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrNegativeBalance is returned when a debit would drive a wallet below zero.
	ErrNegativeBalance = errors.New("debit would drive balance below zero")
	// ErrInvalidTransactionType is returned for unknown ledger entry types.
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	// ErrDuplicateReference is returned when a deposit credit references a
	// deposit that already has a ledger entry.
	ErrDuplicateReference = errors.New("deposit already credited")
)

// WalletStore defines the wallet operations the ledger needs.
type WalletStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.WalletDB, error)
	ApplyDelta(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// TransactionAppender appends immutable ledger entries.
type TransactionAppender interface {
	Save(ctx context.Context, txn *models.TransactionDB) error
}

// ReferenceChecker answers whether a reference was already credited.
type ReferenceChecker interface {
	ExistsByReference(ctx context.Context, reference uuid.UUID, txType models.TransactionType) (bool, error)
}

// TxBeginner starts database transactions. Satisfied by *sqlx.DB.
type TxBeginner interface {
	Beginx() (*sqlx.Tx, error)
}

// LedgerService is the only entry point that changes wallet balances. A
// Credit pairs the balance change with its ledger entry in one database
// transaction, either the caller's (carried in the context) or its own.
type LedgerService struct {
	db      TxBeginner
	wallets WalletStore
	txns    TransactionAppender
	refs    ReferenceChecker
	events  *EventService
	cache   *WalletCache
}

// NewLedgerService creates a new LedgerService instance.
func NewLedgerService(
	db TxBeginner,
	wallets WalletStore,
	txns TransactionAppender,
	refs ReferenceChecker,
	events *EventService,
	cache *WalletCache,
) *LedgerService {
	return &LedgerService{
		db:      db,
		wallets: wallets,
		txns:    txns,
		refs:    refs,
		events:  events,
		cache:   cache,
	}
}

// Credit applies a signed amount to the user's wallet and appends the
// matching ledger entry. When the context carries no transaction the service
// opens one, so the balance update and the ledger append always commit
// together. In that own-transaction case the entry is also published and the
// balance cache invalidated after commit; callers that bring their own
// transaction do that themselves once they commit.
func (s *LedgerService) Credit(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	txType models.TransactionType,
	description string,
	reference *uuid.UUID,
) (*models.TransactionDB, error) {
	if !txType.Valid() {
		return nil, ErrInvalidTransactionType
	}

	ownTx := middlewares.GetTxFromContext(ctx) == nil
	var tx *sqlx.Tx
	if ownTx {
		var err error
		tx, err = s.db.Beginx()
		if err != nil {
			logger.Log.Errorw("failed to begin ledger transaction", "user_id", userID, "error", err)
			return nil, err
		}
		ctx = middlewares.SetTxToContext(ctx, tx)
		defer func() {
			if tx != nil {
				tx.Rollback()
			}
		}()
	}

	// A deposit may be credited once. The unique partial index on reference
	// backs this at the storage level; the check here turns the violation
	// into a typed error before any balance is touched.
	if txType == models.TransactionTypeDeposit && reference != nil && s.refs != nil {
		exists, err := s.refs.ExistsByReference(ctx, *reference, txType)
		if err != nil {
			logger.Log.Errorw("failed to check ledger reference", "reference", *reference, "error", err)
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateReference
		}
	}

	newBalance, err := s.wallets.ApplyDelta(ctx, userID, amount)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Log.Errorw("failed to apply wallet delta", "user_id", userID, "amount", amount, "error", err)
			return nil, err
		}
		// No row matched: the wallet is missing or the guard refused the debit.
		wallet, gerr := s.wallets.GetByUserID(ctx, userID)
		if gerr != nil {
			return nil, gerr
		}
		if wallet == nil {
			return nil, ErrWalletNotFound
		}
		return nil, ErrNegativeBalance
	}

	txn := &models.TransactionDB{
		TransactionID: uuid.New(),
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: newBalance.Sub(amount),
		BalanceAfter:  newBalance,
		Status:        models.TransactionStatusCompleted,
		Description:   description,
		Reference:     reference,
	}

	if err := s.txns.Save(ctx, txn); err != nil {
		logger.Log.Errorw("failed to append ledger entry", "user_id", userID, "amount", amount, "error", err)
		return nil, err
	}

	if ownTx {
		if err := tx.Commit(); err != nil {
			logger.Log.Errorw("failed to commit ledger transaction", "user_id", userID, "error", err)
			return nil, err
		}
		tx = nil

		if s.events != nil {
			s.events.PublishTransaction(ctx, txn)
		}
		if s.cache != nil {
			s.cache.InvalidateBalance(ctx, userID)
		}
	}

	return txn, nil
}

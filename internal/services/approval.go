package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/middlewares"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrDepositNotFound is returned when the referenced deposit does not exist.
	ErrDepositNotFound = errors.New("deposit not found")
	// ErrInvalidDepositState is returned when the deposit is already in a
	// terminal state or a concurrent caller won the transition race.
	ErrInvalidDepositState = errors.New("deposit is not pending")
)

// DepositReader defines the deposit read operations the workflow needs.
type DepositReader interface {
	GetByID(ctx context.Context, depositID uuid.UUID) (*models.DepositDB, error)
	GetByIDForUpdate(ctx context.Context, depositID uuid.UUID) (*models.DepositDB, error)
}

// DepositTransitioner performs the compare-and-set status transition.
type DepositTransitioner interface {
	UpdateStatusIfPending(ctx context.Context, depositID uuid.UUID, newStatus models.DepositStatus, notes *string) (bool, error)
}

// Creditor is the ledger entry point the workflow credits through.
type Creditor interface {
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, description string, reference *uuid.UUID) (*models.TransactionDB, error)
}

// CommissionComputer evaluates the referral tier table for a deposit.
type CommissionComputer interface {
	Compute(ctx context.Context, depositorID uuid.UUID, amount decimal.Decimal) (*models.CommissionDecision, error)
}

// ReceiptRemover deletes stored receipt images.
type ReceiptRemover interface {
	Remove(ctx context.Context, depositID uuid.UUID, receiptURL string) error
}

// TransactionPublisher announces persisted ledger entries.
type TransactionPublisher interface {
	PublishTransaction(ctx context.Context, txn *models.TransactionDB)
}

// BalanceInvalidator drops cached balances after a credit.
type BalanceInvalidator interface {
	InvalidateBalance(ctx context.Context, userID uuid.UUID)
}

// ApprovalResult reports the outcome of a successful approval. Commission is
// the decision that was evaluated (nil when none was owed); CommissionPaid
// distinguishes a paid commission from one that failed and was left for
// manual reconciliation.
type ApprovalResult struct {
	Deposit        *models.DepositDB
	NewBalance     decimal.Decimal
	Commission     *models.CommissionDecision
	CommissionPaid bool
}

// ApprovalService orchestrates the deposit state machine:
// pending -> approved (Approve) or pending -> rejected (Reject), both
// terminal. Approve claims the transition and credits the wallet inside a
// single database transaction, so concurrent approvals of the same deposit
// resolve to exactly one credit; commission payout, receipt cleanup, event
// publication and cache invalidation all happen after commit and never fail
// the operation.
type ApprovalService struct {
	db         TxBeginner
	deposits   DepositReader
	transition DepositTransitioner
	ledger     Creditor
	commission CommissionComputer
	receipts   ReceiptRemover
	events     TransactionPublisher
	cache      BalanceInvalidator
}

// NewApprovalService creates a new ApprovalService instance.
func NewApprovalService(
	db TxBeginner,
	deposits DepositReader,
	transition DepositTransitioner,
	ledger Creditor,
	commission CommissionComputer,
	receipts ReceiptRemover,
	events TransactionPublisher,
	cache BalanceInvalidator,
) *ApprovalService {
	return &ApprovalService{
		db:         db,
		deposits:   deposits,
		transition: transition,
		ledger:     ledger,
		commission: commission,
		receipts:   receipts,
		events:     events,
		cache:      cache,
	}
}

// Approve moves the deposit from pending to approved and credits the
// depositor's wallet. The row lock taken by GetByIDForUpdate plus the
// compare-and-set transition make the claim exclusive: a concurrent approver
// blocks on the lock and then fails the CAS. If the credit fails the
// transaction rolls back, undoing the claim with it, and the deposit stays
// pending.
func (svc *ApprovalService) Approve(ctx context.Context, depositID uuid.UUID, notes *string) (*ApprovalResult, error) {
	tx, err := svc.db.Beginx()
	if err != nil {
		logger.Log.Errorw("failed to begin approval transaction", "deposit_id", depositID, "error", err)
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	txCtx := middlewares.SetTxToContext(ctx, tx)

	deposit, err := svc.deposits.GetByIDForUpdate(txCtx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, ErrDepositNotFound
	}
	if deposit.Status != models.DepositStatusPending {
		return nil, ErrInvalidDepositState
	}

	claimed, err := svc.transition.UpdateStatusIfPending(txCtx, depositID, models.DepositStatusApproved, notes)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrInvalidDepositState
	}

	reference := deposit.DepositID
	description := fmt.Sprintf("deposit via %s (ref %s)", deposit.PaymentMethod, deposit.Reference)
	txn, err := svc.ledger.Credit(txCtx, deposit.UserID, deposit.Amount, models.TransactionTypeDeposit, description, &reference)
	if err != nil {
		logger.Log.Errorw("deposit credit failed, rolling back claim",
			"deposit_id", depositID, "user_id", deposit.UserID, "amount", deposit.Amount, "error", err)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Log.Errorw("failed to commit approval transaction", "deposit_id", depositID, "error", err)
		return nil, err
	}
	committed = true

	deposit.Status = models.DepositStatusApproved
	deposit.AdminNotes = notes

	if svc.events != nil {
		svc.events.PublishTransaction(ctx, txn)
	}
	if svc.cache != nil {
		svc.cache.InvalidateBalance(ctx, deposit.UserID)
	}

	result := &ApprovalResult{
		Deposit:    deposit,
		NewBalance: txn.BalanceAfter,
	}

	svc.payCommission(ctx, deposit, result)
	svc.cleanupReceipt(ctx, deposit)

	return result, nil
}

// Reject moves the deposit from pending to rejected. It never touches the
// ledger; the compare-and-set transition is the whole operation.
func (svc *ApprovalService) Reject(ctx context.Context, depositID uuid.UUID, reason string) error {
	claimed, err := svc.transition.UpdateStatusIfPending(ctx, depositID, models.DepositStatusRejected, &reason)
	if err != nil {
		return err
	}
	if !claimed {
		deposit, err := svc.deposits.GetByID(ctx, depositID)
		if err != nil {
			return err
		}
		if deposit == nil {
			return ErrDepositNotFound
		}
		return ErrInvalidDepositState
	}

	deposit, err := svc.deposits.GetByID(ctx, depositID)
	if err == nil && deposit != nil {
		svc.cleanupReceipt(ctx, deposit)
	}

	return nil
}

// payCommission evaluates and pays the referral commission after the core
// approval committed. Failures are logged for manual reconciliation and never
// escalate: the deposit itself is already approved and credited.
func (svc *ApprovalService) payCommission(ctx context.Context, deposit *models.DepositDB, result *ApprovalResult) {
	decision, err := svc.commission.Compute(ctx, deposit.UserID, deposit.Amount)
	if err != nil {
		logger.Log.Errorw("commission computation failed, skipping payout",
			"deposit_id", deposit.DepositID, "user_id", deposit.UserID, "error", err)
		return
	}
	if decision == nil {
		return
	}

	result.Commission = decision

	description := fmt.Sprintf("referral commission for deposit %s", deposit.DepositID)
	if _, err := svc.ledger.Credit(ctx, decision.Payee, decision.Amount, models.TransactionTypeReferralCommission, description, nil); err != nil {
		logger.Log.Errorw("commission credit failed, flagged for manual reconciliation",
			"deposit_id", deposit.DepositID, "payee", decision.Payee, "amount", decision.Amount, "error", err)
		return
	}

	result.CommissionPaid = true
}

// cleanupReceipt deletes the stored receipt image on a terminal transition.
// Best effort only.
func (svc *ApprovalService) cleanupReceipt(ctx context.Context, deposit *models.DepositDB) {
	if svc.receipts == nil || deposit.ReceiptURL == nil {
		return
	}
	if err := svc.receipts.Remove(ctx, deposit.DepositID, *deposit.ReceiptURL); err != nil {
		logger.Log.Warnw("receipt cleanup failed",
			"deposit_id", deposit.DepositID, "receipt_url", *deposit.ReceiptURL, "error", err)
	}
}

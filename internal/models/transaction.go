package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit            TransactionType = "deposit"
	TransactionTypeReferralCommission TransactionType = "referral_commission"
	TransactionTypeManualAdjustment   TransactionType = "manual_adjustment"
	TransactionTypeWithdrawal         TransactionType = "withdrawal"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeReferralCommission,
		TransactionTypeManualAdjustment, TransactionTypeWithdrawal:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
)

// TransactionDB represents an immutable ledger entry in the database.
// Rows are inserted once and never updated or deleted; BalanceAfter always
// equals BalanceBefore + Amount and matches the wallet balance at insert time.
type TransactionDB struct {
	TransactionID uuid.UUID         `json:"transaction_id" db:"transaction_id"` // Primary key
	UserID        uuid.UUID         `json:"user_id" db:"user_id"`               // Wallet owner
	Type          TransactionType   `json:"type" db:"type"`
	Amount        decimal.Decimal   `json:"amount" db:"amount"` // Signed; negative for debits
	BalanceBefore decimal.Decimal   `json:"balance_before" db:"balance_before"`
	BalanceAfter  decimal.Decimal   `json:"balance_after" db:"balance_after"`
	Status        TransactionStatus `json:"status" db:"status"`
	Description   string            `json:"description" db:"description"`
	Reference     *uuid.UUID        `json:"reference,omitempty" db:"reference"` // Originating deposit id, if any
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

// TransactionEvent is the payload published to Kafka for every persisted
// ledger entry.
type TransactionEvent struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Timestamp     int64           `json:"timestamp"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositStatus is the lifecycle state of a funding request.
// pending is the only non-terminal state; approved and rejected are terminal.
type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusApproved DepositStatus = "approved"
	DepositStatusRejected DepositStatus = "rejected"
)

// Valid reports whether s is a known deposit status.
func (s DepositStatus) Valid() bool {
	switch s {
	case DepositStatusPending, DepositStatusApproved, DepositStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s DepositStatus) Terminal() bool {
	return s == DepositStatusApproved || s == DepositStatusRejected
}

// Payment methods accepted on deposit submission
const (
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"
	PaymentMethodMobileMoney  = "mobile_money"
)

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodMobileMoney:
		return true
	}
	return false
}

// DepositDB represents a deposit request row in the database
type DepositDB struct {
	DepositID     uuid.UUID       `json:"deposit_id" db:"deposit_id"`             // Primary key
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`                   // Depositing user
	Amount        decimal.Decimal `json:"amount" db:"amount"`                     // Requested amount, always positive
	Status        DepositStatus   `json:"status" db:"status"`                     // pending / approved / rejected
	PaymentMethod string          `json:"payment_method" db:"payment_method"`     // How the user claims to have paid
	Reference     string          `json:"reference" db:"reference"`               // External payment reference
	ReceiptURL    *string         `json:"receipt_url,omitempty" db:"receipt_url"` // Optional uploaded receipt image
	AdminNotes    *string         `json:"admin_notes,omitempty" db:"admin_notes"` // Set on approval/rejection
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

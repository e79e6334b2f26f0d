package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletDB represents a wallet row in the database. One wallet per user;
// the balance is never negative and always equals the signed sum of the
// user's transactions.
type WalletDB struct {
	WalletID  uuid.UUID       `json:"wallet_id" db:"wallet_id"` // Unique wallet identifier
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`     // Wallet owner, unique
	Balance   decimal.Decimal `json:"balance" db:"balance"`     // Current balance
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

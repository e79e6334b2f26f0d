package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionDecision is the outcome of evaluating the referral tier table
// for a deposit. A nil decision means no commission is owed.
type CommissionDecision struct {
	Payee  uuid.UUID       `json:"payee"`  // The referring user to credit
	Rate   decimal.Decimal `json:"rate"`   // Tier rate, e.g. 0.03
	Amount decimal.Decimal `json:"amount"` // amount * rate rounded to 2 decimal places
}

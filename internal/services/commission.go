package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"github.com/shopspring/decimal"
)

// UserReader defines the user lookups the commission engine needs.
type UserReader interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	CountReferrals(ctx context.Context, referrerID uuid.UUID) (int, error)
}

// commissionTiers maps a referrer's direct-referral count to a commission
// rate. Ordered highest threshold first; the first matching tier wins.
var commissionTiers = []struct {
	minReferrals int
	rate         decimal.Decimal
}{
	{30, decimal.NewFromFloat(0.05)},
	{20, decimal.NewFromFloat(0.03)},
	{10, decimal.NewFromFloat(0.02)},
}

// CommissionService decides whether a deposit owes a referral commission.
// It is purely computational: it reads users and referral counts but writes
// nothing.
type CommissionService struct {
	users UserReader
}

// NewCommissionService creates a new CommissionService instance.
func NewCommissionService(users UserReader) *CommissionService {
	return &CommissionService{users: users}
}

// Compute evaluates the tier table for the depositor's referrer. The tier is
// derived from a live referral count on every call. A nil decision means no
// commission is owed: the depositor has no referrer, the referrer is below
// the lowest tier, or the rounded amount is zero.
func (s *CommissionService) Compute(ctx context.Context, depositorID uuid.UUID, amount decimal.Decimal) (*models.CommissionDecision, error) {
	depositor, err := s.users.GetByID(ctx, depositorID)
	if err != nil {
		logger.Log.Errorw("failed to load depositor", "user_id", depositorID, "error", err)
		return nil, err
	}
	if depositor == nil || depositor.ReferredBy == nil {
		return nil, nil
	}

	referrerID := *depositor.ReferredBy
	count, err := s.users.CountReferrals(ctx, referrerID)
	if err != nil {
		logger.Log.Errorw("failed to count referrals", "referrer_id", referrerID, "error", err)
		return nil, err
	}

	var rate decimal.Decimal
	for _, tier := range commissionTiers {
		if count >= tier.minReferrals {
			rate = tier.rate
			break
		}
	}
	if rate.IsZero() {
		return nil, nil
	}

	commission := amount.Mul(rate).Round(2)
	if commission.IsZero() {
		return nil, nil
	}

	return &models.CommissionDecision{
		Payee:  referrerID,
		Rate:   rate,
		Amount: commission,
	}, nil
}

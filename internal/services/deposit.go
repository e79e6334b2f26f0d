package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidDepositAmount is returned for non-positive requested amounts.
	ErrInvalidDepositAmount = errors.New("deposit amount must be positive")
	// ErrInvalidPaymentMethod is returned for unknown payment methods.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// DepositSaver persists new deposit requests.
type DepositSaver interface {
	Save(ctx context.Context, deposit *models.DepositDB) error
}

// DepositLister pages through deposits by status.
type DepositLister interface {
	ListByStatus(ctx context.Context, status models.DepositStatus, limit, offset int) ([]models.DepositDB, int64, error)
}

// DepositService handles the user-facing deposit surface: submitting a
// funding request and the admin pending queue. All mutation of submitted
// requests belongs to the ApprovalService.
type DepositService struct {
	writer DepositSaver
	reader DepositLister
}

// NewDepositService creates a new DepositService instance.
func NewDepositService(writer DepositSaver, reader DepositLister) *DepositService {
	return &DepositService{writer: writer, reader: reader}
}

// Submit validates and stores a new pending deposit request.
func (svc *DepositService) Submit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, paymentMethod, reference string, receiptURL *string) (*models.DepositDB, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidDepositAmount
	}
	if !models.ValidPaymentMethod(paymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	deposit := &models.DepositDB{
		DepositID:     uuid.New(),
		UserID:        userID,
		Amount:        amount.Round(2),
		Status:        models.DepositStatusPending,
		PaymentMethod: paymentMethod,
		Reference:     reference,
		ReceiptURL:    receiptURL,
	}

	if err := svc.writer.Save(ctx, deposit); err != nil {
		logger.Log.Errorw("failed to save deposit request", "user_id", userID, "amount", amount, "error", err)
		return nil, err
	}

	return deposit, nil
}

// ListPending returns a page of pending deposits, oldest first.
func (svc *DepositService) ListPending(ctx context.Context, page, pageSize int) ([]models.DepositDB, int64, error) {
	offset := (page - 1) * pageSize
	deposits, total, err := svc.reader.ListByStatus(ctx, models.DepositStatusPending, pageSize, offset)
	if err != nil {
		logger.Log.Errorw("failed to list pending deposits", "error", err)
		return nil, 0, err
	}
	return deposits, total, nil
}

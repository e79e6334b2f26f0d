package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// EventService publishes ledger entries to Kafka. Publishing is always
// best-effort: failures are logged and never surfaced to the caller.
type EventService struct {
	writer KafkaWriter
}

func NewEventService(writer KafkaWriter) *EventService {
	return &EventService{writer: writer}
}

// PublishTransaction publishes a persisted ledger entry keyed by its id.
func (s *EventService) PublishTransaction(ctx context.Context, txn *models.TransactionDB) {
	if s.writer == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "transaction_id", txn.TransactionID)
		return
	}

	event := models.TransactionEvent{
		TransactionID: txn.TransactionID.String(),
		UserID:        txn.UserID.String(),
		Type:          txn.Type,
		Amount:        txn.Amount,
		BalanceAfter:  txn.BalanceAfter,
		Timestamp:     time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal transaction event", "transaction_id", txn.TransactionID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: data,
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish transaction event", "transaction_id", txn.TransactionID, "error", err)
	} else {
		logger.Log.Infow("transaction event published", "transaction_id", txn.TransactionID, "amount", txn.Amount)
	}
}

package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mvoloshin/exchange-bot/internal/domain"
)

// TransactionStore is the durable, queryable sink.
type TransactionStore interface {
	SaveTransaction(ctx context.Context, tx *domain.Transaction) error
	History(ctx context.Context, userID int64) ([]domain.Transaction, error)
}

// ExportLog is the append-only flat sink.
type ExportLog interface {
	Append(tx *domain.Transaction) error
}

// Recorder persists confirmed transactions to both sinks. The two writes
// are independent and best-effort: a failed export after a successful
// store write is not rolled back, only logged and reported.
type Recorder struct {
	store  TransactionStore
	export ExportLog
	log    *zap.Logger
}

// NewRecorder creates a recorder over the given sinks.
func NewRecorder(store TransactionStore, export ExportLog, log *zap.Logger) *Recorder {
	return &Recorder{
		store:  store,
		export: export,
		log:    log,
	}
}

// Record writes the transaction to the durable store and the export log.
func (r *Recorder) Record(ctx context.Context, tx *domain.Transaction) error {
	if err := r.store.SaveTransaction(ctx, tx); err != nil {
		r.log.Error("transaction store write failed",
			zap.Int64("user_id", tx.UserID),
			zap.String("operation", tx.Operation),
			zap.Error(err))
		return fmt.Errorf("save transaction: %w", err)
	}
	if err := r.export.Append(tx); err != nil {
		r.log.Error("export log write failed",
			zap.Int64("user_id", tx.UserID),
			zap.Int64("tx_id", tx.ID),
			zap.Error(err))
		return fmt.Errorf("append export log: %w", err)
	}
	return nil
}

// History returns the user's transactions from the durable store only,
// most recent first.
func (r *Recorder) History(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	txs, err := r.store.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return txs, nil
}

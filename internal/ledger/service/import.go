package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kiribu/budget-buddy/internal/events"
	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"go.uber.org/zap"
)

const importBatchSize = 256

// ImportTransactions stores parsed statement rows for an owner and announces
// the batch so classifiers can pick it up. It returns the number of stored
// transactions.
func (s *Service) ImportTransactions(ctx context.Context, ownerID int64, transactions []model.Transaction) (int64, string, error) {
	batchID := uuid.NewString()

	prepared := make([]model.Transaction, 0, len(transactions))
	for i, tx := range transactions {
		tx.ID = uuid.NewString()
		tx.OwnerID = ownerID
		normalized, err := tx.Normalize()
		if err != nil {
			return 0, "", fmt.Errorf("transaction %d: %w", i+1, err)
		}
		prepared = append(prepared, normalized)
	}

	var stored int64
	for start := 0; start < len(prepared); start += importBatchSize {
		end := min(start+importBatchSize, len(prepared))

		n, err := s.store.InsertTransactions(ctx, prepared[start:end])
		if err != nil {
			return stored, "", fmt.Errorf("failed to insert transactions: %w", err)
		}
		stored += n
	}

	s.logger.Info("transactions imported",
		zap.Int64("owner_id", ownerID),
		zap.String("batch_id", batchID),
		zap.Int64("count", stored))

	if stored > 0 {
		event := events.TransactionsImported{
			OwnerID:    ownerID,
			BatchID:    batchID,
			Count:      stored,
			ImportedAt: time.Now().UTC(),
		}
		// Best effort: the rows are stored either way.
		if err := s.publisher.PublishTransactionsImported(ctx, event); err != nil {
			s.logger.Warn("failed to publish import event", zap.String("batch_id", batchID), zap.Error(err))
		}
	}

	return stored, batchID, nil
}

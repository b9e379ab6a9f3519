package classifier

import (
	"context"
	"fmt"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"go.uber.org/zap"
)

type Store interface {
	ListUncategorized(ctx context.Context, ownerID int64, afterID string, limit int) ([]model.Transaction, error)
	SetCategory(ctx context.Context, transactionID string, category model.Category) (bool, error)
}

type Classifier interface {
	Classify(description string) (model.Category, bool)
}

type Result struct {
	Scanned    int
	Classified int
}

// Runner assigns categories to transactions that have none. Existing
// categories are never overwritten.
type Runner struct {
	store      Store
	classifier Classifier
	batchSize  int
	logger     *zap.Logger
}

func NewRunner(store Store, classifier Classifier, batchSize int, logger *zap.Logger) *Runner {
	if batchSize <= 0 {
		batchSize = 1024
	}
	return &Runner{
		store:      store,
		classifier: classifier,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Run classifies the uncategorized transactions of ownerID, or of every owner
// when ownerID is zero.
func (r *Runner) Run(ctx context.Context, ownerID int64) (Result, error) {
	var result Result

	afterID := ""
	for {
		batch, err := r.store.ListUncategorized(ctx, ownerID, afterID, r.batchSize)
		if err != nil {
			return result, fmt.Errorf("failed to list uncategorized transactions: %w", err)
		}

		for _, tx := range batch {
			result.Scanned++
			category, ok := r.classifier.Classify(tx.Description)
			if !ok {
				continue
			}

			updated, err := r.store.SetCategory(ctx, tx.ID, category)
			if err != nil {
				return result, fmt.Errorf("failed to set category of %s: %w", tx.ID, err)
			}
			if updated {
				result.Classified++
			}
		}

		if len(batch) < r.batchSize {
			break
		}
		afterID = batch[len(batch)-1].ID
	}

	r.logger.Info("classification finished",
		zap.Int64("owner_id", ownerID),
		zap.Int("scanned", result.Scanned),
		zap.Int("classified", result.Classified))

	return result, nil
}

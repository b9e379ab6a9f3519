package service

import (
	"context"

	"github.com/kiribu/budget-buddy/internal/events"
	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"go.uber.org/zap"
)

// Store is the storage capability the ledger needs: batched writes at upload
// time and grouped sums at report time.
type Store interface {
	InsertTransactions(ctx context.Context, transactions []model.Transaction) (int64, error)
	SumByGroup(ctx context.Context, ownerID int64, period model.Period) ([]model.GroupTotal, error)
}

type Publisher interface {
	PublishTransactionsImported(ctx context.Context, event events.TransactionsImported) error
}

type Service struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
}

func NewService(store Store, publisher Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

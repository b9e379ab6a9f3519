package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TransactionsImported is published after a statement upload has been stored.
type TransactionsImported struct {
	OwnerID    int64     `json:"owner_id"`
	BatchID    string    `json:"batch_id"`
	Count      int64     `json:"count"`
	ImportedAt time.Time `json:"imported_at"`
}

func (e TransactionsImported) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func UnmarshalTransactionsImported(data []byte) (TransactionsImported, error) {
	var e TransactionsImported
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("failed to decode event: %w", err)
	}
	if e.OwnerID == 0 {
		return e, fmt.Errorf("event without owner")
	}
	return e, nil
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishTransactionsImported(context.Context, TransactionsImported) error {
	return nil
}

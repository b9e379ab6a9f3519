package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/shopspring/decimal"
)

// Memory keeps transactions in process. It is safe for concurrent use and is
// lost on restart.
type Memory struct {
	mu           sync.RWMutex
	transactions map[string]model.Transaction
}

func NewMemory() *Memory {
	return &Memory{
		transactions: make(map[string]model.Transaction),
	}
}

func (m *Memory) InsertTransactions(ctx context.Context, transactions []model.Transaction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tx := range transactions {
		if _, exists := m.transactions[tx.ID]; exists {
			return 0, fmt.Errorf("transaction %s already exists", tx.ID)
		}
	}

	for _, tx := range transactions {
		m.transactions[tx.ID] = copyTransaction(tx)
	}

	return int64(len(transactions)), nil
}

type groupKey struct {
	txType   string
	currency string
	category string
}

func (m *Memory) SumByGroup(ctx context.Context, ownerID int64, period model.Period) ([]model.GroupTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sums := make(map[groupKey]decimal.Decimal)
	for _, tx := range m.transactions {
		if tx.OwnerID != ownerID || !period.Contains(tx.Timestamp) {
			continue
		}

		key := groupKey{txType: string(tx.Type), currency: string(tx.Currency)}
		if tx.Category != nil {
			key.category = string(*tx.Category)
		}
		sums[key] = sums[key].Add(tx.Amount)
	}

	totals := make([]model.GroupTotal, 0, len(sums))
	for key, sum := range sums {
		totals = append(totals, model.GroupTotal{
			Type:     key.txType,
			Currency: key.currency,
			Category: key.category,
			Total:    sum,
		})
	}

	return totals, nil
}

func (m *Memory) ListUncategorized(ctx context.Context, ownerID int64, afterID string, limit int) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []model.Transaction
	for _, tx := range m.transactions {
		if tx.Category != nil || tx.ID <= afterID {
			continue
		}
		if ownerID != 0 && tx.OwnerID != ownerID {
			continue
		}
		result = append(result, copyTransaction(tx))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (m *Memory) SetCategory(ctx context.Context, transactionID string, category model.Category) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, exists := m.transactions[transactionID]
	if !exists || tx.Category != nil {
		return false, nil
	}

	tx.Category = &category
	m.transactions[transactionID] = tx

	return true, nil
}

func copyTransaction(tx model.Transaction) model.Transaction {
	if tx.Category != nil {
		category := *tx.Category
		tx.Category = &category
	}
	return tx
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func category(c model.Category) *model.Category {
	return &c
}

func transaction(id string, owner int64, ts time.Time, amount string, txType model.Type, currency model.Currency, cat *model.Category) model.Transaction {
	return model.Transaction{
		ID:        id,
		OwnerID:   owner,
		Bank:      "Swedbank",
		Timestamp: ts,
		Amount:    decimal.RequireFromString(amount),
		Type:      txType,
		Currency:  currency,
		Category:  cat,
	}
}

func TestMemory_SumByGroup(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }

	_, err := m.InsertTransactions(ctx, []model.Transaction{
		transaction("a", 1, day(1), "10.0", model.TypeDebit, model.CurrencyEUR, category(model.CategoryFood)),
		transaction("b", 1, day(2), "5.50", model.TypeDebit, model.CurrencyEUR, category(model.CategoryFood)),
		transaction("c", 1, day(3), "7", model.TypeDebit, model.CurrencyEUR, nil),
		transaction("d", 2, day(3), "99", model.TypeDebit, model.CurrencyEUR, category(model.CategoryFood)),
		transaction("e", 1, day(20), "1", model.TypeDebit, model.CurrencyEUR, category(model.CategoryFood)),
	})
	require.NoError(t, err)

	totals, err := m.SumByGroup(ctx, 1, model.NewPeriod(day(1), day(3)))
	require.NoError(t, err)
	require.Len(t, totals, 2)

	byCategory := map[string]decimal.Decimal{}
	for _, total := range totals {
		assert.Equal(t, "D", total.Type)
		assert.Equal(t, "EUR", total.Currency)
		byCategory[total.Category] = total.Total
	}
	assert.True(t, decimal.RequireFromString("15.5").Equal(byCategory["Food"]))
	assert.True(t, decimal.RequireFromString("7").Equal(byCategory[""]), "missing category stays empty in raw totals")
}

func TestMemory_SumByGroup_InclusiveBounds(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	_, err := m.InsertTransactions(ctx, []model.Transaction{
		transaction("start", 1, start, "1", model.TypeCredit, model.CurrencyUSD, nil),
		transaction("end", 1, end, "2", model.TypeCredit, model.CurrencyUSD, nil),
		transaction("before", 1, start.Add(-time.Second), "4", model.TypeCredit, model.CurrencyUSD, nil),
	})
	require.NoError(t, err)

	totals, err := m.SumByGroup(ctx, 1, model.NewPeriod(start, end))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.True(t, decimal.RequireFromString("3").Equal(totals[0].Total))
}

func TestMemory_InsertDuplicate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	tx := transaction("a", 1, time.Now(), "1", model.TypeDebit, model.CurrencyEUR, nil)

	_, err := m.InsertTransactions(ctx, []model.Transaction{tx})
	require.NoError(t, err)

	_, err = m.InsertTransactions(ctx, []model.Transaction{tx})
	require.Error(t, err)
}

func TestMemory_ListUncategorizedAndSetCategory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now()

	_, err := m.InsertTransactions(ctx, []model.Transaction{
		transaction("1", 1, now, "1", model.TypeDebit, model.CurrencyEUR, nil),
		transaction("2", 2, now, "1", model.TypeDebit, model.CurrencyEUR, nil),
		transaction("3", 1, now, "1", model.TypeDebit, model.CurrencyEUR, category(model.CategoryFood)),
		transaction("4", 1, now, "1", model.TypeDebit, model.CurrencyEUR, nil),
	})
	require.NoError(t, err)

	all, err := m.ListUncategorized(ctx, 0, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"1", "2", "4"}, []string{all[0].ID, all[1].ID, all[2].ID})

	page, err := m.ListUncategorized(ctx, 1, "1", 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "4", page[0].ID)

	updated, err := m.SetCategory(ctx, "4", model.CategoryTravel)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = m.SetCategory(ctx, "4", model.CategoryFood)
	require.NoError(t, err)
	assert.False(t, updated, "an assigned category is never overwritten")

	updated, err = m.SetCategory(ctx, "missing", model.CategoryFood)
	require.NoError(t, err)
	assert.False(t, updated)
}

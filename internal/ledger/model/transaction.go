package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is immutable once stored, except that a missing Category may be
// assigned later by a classifier.
type Transaction struct {
	ID            string          `json:"id"`
	OwnerID       int64           `json:"owner_id"`
	Bank          string          `json:"bank"`
	Timestamp     time.Time       `json:"timestamp"`
	Amount        decimal.Decimal `json:"amount"`
	Type          Type            `json:"type"`
	Currency      Currency        `json:"currency"`
	Category      *Category       `json:"category,omitempty"`
	AccountNumber string          `json:"account_number,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// NewTransactionFromSigned builds a transaction from a signed statement amount:
// negative amounts are money out (debit), positive ones money in (credit).
func NewTransactionFromSigned(bank string, ts time.Time, signed decimal.Decimal, currency Currency, description string) Transaction {
	t := Transaction{
		Bank:        bank,
		Timestamp:   ts,
		Amount:      signed.Abs(),
		Currency:    currency,
		Description: description,
	}
	switch signed.Sign() {
	case -1:
		t.Type = TypeDebit
	case 1:
		t.Type = TypeCredit
	default:
		t.Type = TypeUnknown
	}
	return t
}

// EffectiveCategory substitutes Unknown for a missing category.
func (t Transaction) EffectiveCategory() Category {
	if t.Category == nil {
		return CategoryUnknown
	}
	return *t.Category
}

func (t Transaction) Validate() error {
	_, err := t.Normalize()
	return err
}

// Normalize validates t and returns a copy with canonical Type, Currency and
// Category values, the forms stores and reports expect.
func (t Transaction) Normalize() (Transaction, error) {
	if t.OwnerID == 0 {
		return Transaction{}, fmt.Errorf("%w: owner is required", ErrInvalidTransaction)
	}
	if t.Timestamp.IsZero() {
		return Transaction{}, fmt.Errorf("%w: timestamp is required", ErrInvalidTransaction)
	}
	if t.Amount.IsNegative() {
		return Transaction{}, fmt.Errorf("%w: %s", ErrInvalidAmount, t.Amount)
	}

	currency, err := ParseCurrency(string(t.Currency))
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	t.Currency = currency
	t.Type = ParseType(string(t.Type))

	if t.Category != nil {
		category, err := ParseCategory(string(*t.Category))
		if err != nil {
			return Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
		}
		t.Category = &category
	}
	return t, nil
}

// GroupTotal is one row of a grouped-sum query: the total amount of an owner's
// transactions sharing type, currency and category. Values are raw store
// strings; an empty Category stands for a missing one.
type GroupTotal struct {
	Type     string
	Currency string
	Category string
	Total    decimal.Decimal
}

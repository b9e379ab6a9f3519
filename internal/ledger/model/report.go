package model

import "github.com/shopspring/decimal"

// Amounts holds summed amounts keyed by currency, then category. A missing
// key means no activity.
type Amounts map[Currency]map[Category]decimal.Decimal

// Add accumulates amount under (currency, category), creating inner maps on
// demand.
func (a Amounts) Add(currency Currency, category Category, amount decimal.Decimal) {
	byCategory, ok := a[currency]
	if !ok {
		byCategory = make(map[Category]decimal.Decimal)
		a[currency] = byCategory
	}
	byCategory[category] = byCategory[category].Add(amount)
}

// Get returns zero for absent keys.
func (a Amounts) Get(currency Currency, category Category) decimal.Decimal {
	return a[currency][category]
}

// Total sums every category of one currency.
func (a Amounts) Total(currency Currency) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range a[currency] {
		total = total.Add(amount)
	}
	return total
}

type Report struct {
	Income   Amounts `json:"income"`
	Expenses Amounts `json:"expenses"`
}

// NewReport returns a report with empty, non-nil mappings.
func NewReport() *Report {
	return &Report{
		Income:   make(Amounts),
		Expenses: make(Amounts),
	}
}

func (r *Report) IsEmpty() bool {
	return len(r.Income) == 0 && len(r.Expenses) == 0
}

type Analytics struct {
	OriginalPeriod *Report `json:"original_period"`
	ComparedPeriod *Report `json:"compared_period"`
}

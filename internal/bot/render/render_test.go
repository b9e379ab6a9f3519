package render

import (
	"strings"
	"testing"
	"time"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/kiribu/budget-buddy/internal/statement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		compared  string
		delta     string
		direction Direction
	}{
		{"increase", "120.50", "100", "20.50", Up},
		{"decrease", "80", "100.25", "-20.25", Down},
		{"equal", "100.10", "100.1", "0", Flat},
		{"only original", "5", "0", "5", Up},
		{"only compared", "0", "5", "-5", Down},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, direction := Delta(dec(tt.original), dec(tt.compared))
			assert.True(t, dec(tt.delta).Equal(delta), "got %s", delta)
			assert.Equal(t, tt.direction, direction)
		})
	}
}

func TestDelta_NoRounding(t *testing.T) {
	_, direction := Delta(dec("0.1").Add(dec("0.2")), dec("0.3"))
	assert.Equal(t, Flat, direction)

	_, direction = Delta(dec("100.001"), dec("100"))
	assert.Equal(t, Up, direction)
}

func TestCompareAmounts(t *testing.T) {
	original := model.Amounts{}
	original.Add(model.CurrencyEUR, model.CategoryFood, dec("20"))
	original.Add(model.CurrencyUSD, model.CategoryTransport, dec("15"))

	compared := model.Amounts{}
	compared.Add(model.CurrencyEUR, model.CategoryFood, dec("35"))
	compared.Add(model.CurrencyEUR, model.CategoryBeauty, dec("10"))

	rows := CompareAmounts(original, compared)
	require.Len(t, rows, 3)

	assert.Equal(t, model.CurrencyEUR, rows[0].Currency)
	assert.Equal(t, model.CategoryBeauty, rows[0].Category)
	assert.True(t, rows[0].Original.IsZero())
	assert.Equal(t, Down, rows[0].Direction)

	assert.Equal(t, model.CategoryFood, rows[1].Category)
	assert.True(t, dec("-15").Equal(rows[1].Delta))

	assert.Equal(t, model.CurrencyUSD, rows[2].Currency)
	assert.Equal(t, Up, rows[2].Direction)
}

func TestCompareAmounts_Empty(t *testing.T) {
	assert.Empty(t, CompareAmounts(model.Amounts{}, nil))
}

func TestReport(t *testing.T) {
	report := model.NewReport()
	report.Income.Add(model.CurrencyEUR, model.CategoryUnknown, dec("1000"))
	report.Expenses.Add(model.CurrencyEUR, model.CategoryFood, dec("20"))
	report.Expenses.Add(model.CurrencyEUR, model.CategoryHousing, dec("450.5"))

	text := Report(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), report)

	assert.Contains(t, text, "_2024\\-03\\-01_ to _2024\\-03\\-31_")
	assert.Contains(t, text, "🔹 1000\\.00 EUR")
	assert.Contains(t, text, "🔹 470\\.50 EUR")
	assert.Contains(t, text, "Food: 20\\.00 EUR")
	assert.NotContains(t, text, "No data available")
}

func TestReport_EmptySides(t *testing.T) {
	text := Report(time.Now(), time.Now(), model.NewReport())

	assert.Equal(t, 2, strings.Count(text, "No data available"))
}

func TestAnalytics(t *testing.T) {
	analytics := &model.Analytics{OriginalPeriod: model.NewReport(), ComparedPeriod: model.NewReport()}
	analytics.OriginalPeriod.Expenses.Add(model.CurrencyEUR, model.CategoryFood, dec("20"))
	analytics.ComparedPeriod.Expenses.Add(model.CurrencyEUR, model.CategoryFood, dec("35"))

	march := model.NewPeriod(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC))
	february := model.NewPeriod(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))

	text := Analytics(march, february, analytics)

	assert.Contains(t, text, "🔻 Food: 20\\.00 EUR \\(\\-15\\.00\\)")
	assert.Equal(t, 1, strings.Count(text, "No data available"), "income is empty on both sides")
}

func TestSupportedBanks(t *testing.T) {
	assert.Equal(t, "We do not support any banks yet\\.", SupportedBanks(nil))
	assert.Equal(t, "We support Revolut\\.", SupportedBanks([]statement.Bank{{Name: "Revolut"}}))
	assert.Equal(t, "We support Revolut and Swedbank\\.", SupportedBanks([]statement.Bank{{Name: "Revolut"}, {Name: "Swedbank"}}))
	assert.Equal(t, "We support A, B and C\\.", SupportedBanks([]statement.Bank{{Name: "A"}, {Name: "B"}, {Name: "C"}}))
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, "We support format _\\.csv_", SupportedFormats(statement.Bank{Name: "Swedbank", Extensions: []string{".csv"}}))
	assert.Equal(t, "We support formats _\\.csv_ and _\\.xlsx_", SupportedFormats(statement.Bank{Name: "X", Extensions: []string{".csv", ".xlsx"}}))
	assert.Contains(t, SupportedFormats(statement.Bank{Name: "X"}), "do not currently support")
}

func TestInvited(t *testing.T) {
	assert.Equal(t, "Also you have been invited by _Grace Hopper_ and now you can see the shared budget", Invited("Grace", "Hopper"))
	assert.Contains(t, Invited("Ada", ""), "_Ada_")
}

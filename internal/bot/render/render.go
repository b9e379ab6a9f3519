// Package render formats reports for Telegram MarkdownV2 messages.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	noData     = "No data available"
)

type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

func (d Direction) Symbol() string {
	switch d {
	case Up:
		return "🔺"
	case Down:
		return "🔻"
	default:
		return "▪️"
	}
}

// Delta returns original - compared and its direction. Equal amounts are
// Flat, compared exactly.
func Delta(original, compared decimal.Decimal) (decimal.Decimal, Direction) {
	delta := original.Sub(compared)
	switch delta.Sign() {
	case 1:
		return delta, Up
	case -1:
		return delta, Down
	default:
		return delta, Flat
	}
}

type Row struct {
	Currency  model.Currency
	Category  model.Category
	Original  decimal.Decimal
	Compared  decimal.Decimal
	Delta     decimal.Decimal
	Direction Direction
}

// CompareAmounts pairs both sides over the union of their keys, sorted by
// currency then category. A side without the key counts as zero.
func CompareAmounts(original, compared model.Amounts) []Row {
	type key struct {
		currency model.Currency
		category model.Category
	}

	seen := make(map[key]bool)
	var keys []key
	for _, amounts := range []model.Amounts{original, compared} {
		for currency, byCategory := range amounts {
			for category := range byCategory {
				k := key{currency, category}
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].currency != keys[j].currency {
			return keys[i].currency < keys[j].currency
		}
		return keys[i].category < keys[j].category
	})

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		o := original.Get(k.currency, k.category)
		c := compared.Get(k.currency, k.category)
		delta, direction := Delta(o, c)
		rows = append(rows, Row{
			Currency:  k.currency,
			Category:  k.category,
			Original:  o,
			Compared:  c,
			Delta:     delta,
			Direction: direction,
		})
	}
	return rows
}

// Report renders both sides of a report for the period from..to.
func Report(from, to time.Time, report *model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is your financial report from _%s_ to _%s_:\n\n",
		escape(from.Format(dateLayout)), escape(to.Format(dateLayout)))

	b.WriteString("*Income*:\n")
	writeAmounts(&b, report.Income)
	b.WriteString("\n*Expenses*:\n")
	writeAmounts(&b, report.Expenses)

	return b.String()
}

// Analytics renders the original period against the compared one, category by
// category.
func Analytics(original, compared model.Period, analytics *model.Analytics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is your analytics for _%s_ to _%s_ compared with _%s_ to _%s_:\n\n",
		escape(original.Start.Format(dateLayout)), escape(original.End.Format(dateLayout)),
		escape(compared.Start.Format(dateLayout)), escape(compared.End.Format(dateLayout)))

	b.WriteString("*Income*:\n")
	writeComparison(&b, analytics.OriginalPeriod.Income, analytics.ComparedPeriod.Income)
	b.WriteString("\n*Expenses*:\n")
	writeComparison(&b, analytics.OriginalPeriod.Expenses, analytics.ComparedPeriod.Expenses)

	return b.String()
}

func writeAmounts(b *strings.Builder, amounts model.Amounts) {
	if len(amounts) == 0 {
		b.WriteString(escape(noData) + "\n")
		return
	}

	for _, currency := range sortedCurrencies(amounts) {
		fmt.Fprintf(b, "🔹 %s\n", escape(formatAmount(amounts.Total(currency), currency)))

		categories := make([]model.Category, 0, len(amounts[currency]))
		for category := range amounts[currency] {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

		for _, category := range categories {
			fmt.Fprintf(b, "    %s: %s\n",
				escape(string(category)),
				escape(formatAmount(amounts.Get(currency, category), currency)))
		}
	}
}

func writeComparison(b *strings.Builder, original, compared model.Amounts) {
	rows := CompareAmounts(original, compared)
	if len(rows) == 0 {
		b.WriteString(escape(noData) + "\n")
		return
	}

	for _, row := range rows {
		fmt.Fprintf(b, "%s %s: %s \\(%s\\)\n",
			row.Direction.Symbol(),
			escape(string(row.Category)),
			escape(formatAmount(row.Original, row.Currency)),
			escape(signed(row.Delta)))
	}
}

func sortedCurrencies(amounts model.Amounts) []model.Currency {
	currencies := make([]model.Currency, 0, len(amounts))
	for currency := range amounts {
		currencies = append(currencies, currency)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })
	return currencies
}

func formatAmount(amount decimal.Decimal, currency model.Currency) string {
	return amount.StringFixed(2) + " " + string(currency)
}

func signed(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + amount.StringFixed(2)
	}
	return amount.StringFixed(2)
}

func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, text)
}

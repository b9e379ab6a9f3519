package statement

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	revolutStartedDate = "Started Date"
	revolutAmount      = "Amount"
	revolutCurrency    = "Currency"
	revolutDescription = "Description"
)

var revolutDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

type Revolut struct {
	logger *zap.Logger
}

func NewRevolut(logger *zap.Logger) *Revolut {
	return &Revolut{logger: logger}
}

func (r *Revolut) Name() string {
	return "Revolut"
}

func (r *Revolut) Extensions() []string {
	return []string{".xlsx"}
}

// Parse reads the active sheet of the export. Columns are located by their
// header so reordered exports still parse. A negative amount is money leaving
// the account.
func (r *Revolut) Parse(document io.Reader) ([]model.Transaction, error) {
	f, err := excelize.OpenReader(document)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns, err := revolutColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		tx, err := r.parseRow(row, columns)
		if err != nil {
			r.logger.Warn("skipping row", zap.Int("row", i+2), zap.Error(err))
			continue
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

func revolutColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	for _, required := range []string{revolutStartedDate, revolutAmount, revolutCurrency, revolutDescription} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return columns, nil
}

func (r *Revolut) parseRow(row []string, columns map[string]int) (model.Transaction, error) {
	cell := func(name string) string {
		if i := columns[name]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	ts, err := parseRevolutDate(cell(revolutStartedDate))
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := decimal.NewFromString(cell(revolutAmount))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q: %w", cell(revolutAmount), err)
	}

	currency, err := model.ParseCurrency(cell(revolutCurrency))
	if err != nil {
		return model.Transaction{}, err
	}

	// Revolut exports money out as negative amounts: negative is a debit,
	// positive a credit, zero stays unknown.
	return model.NewTransactionFromSigned(r.Name(), ts, amount, currency, cell(revolutDescription)), nil
}

// parseRevolutDate accepts both text dates and Excel serial date numbers.
func parseRevolutDate(value string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	for _, layout := range revolutDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

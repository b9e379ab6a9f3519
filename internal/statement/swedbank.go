package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	swedbankDateLayout = "2006-01-02"
	// Only rows with this code are the account holder's own transactions;
	// the rest are balances and turnover totals.
	swedbankTransactionCode = "20"
	swedbankMinColumns      = 8
)

type Swedbank struct {
	logger *zap.Logger
}

func NewSwedbank(logger *zap.Logger) *Swedbank {
	return &Swedbank{logger: logger}
}

func (s *Swedbank) Name() string {
	return "Swedbank"
}

func (s *Swedbank) Extensions() []string {
	return []string{".csv"}
}

// Parse reads the CSV export: account, code, date, beneficiary, description,
// amount, currency, D/C flag, followed by columns we ignore.
func (s *Swedbank) Parse(r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var transactions []model.Transaction
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				s.logger.Warn("skipping malformed row", zap.Int("line", line), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		if len(record) < swedbankMinColumns {
			s.logger.Warn("skipping short row", zap.Int("line", line), zap.Int("columns", len(record)))
			continue
		}
		if strings.TrimSpace(record[1]) != swedbankTransactionCode {
			continue
		}

		tx, err := s.parseRecord(record)
		if err != nil {
			s.logger.Warn("skipping row", zap.Int("line", line), zap.Error(err))
			continue
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

func (s *Swedbank) parseRecord(record []string) (model.Transaction, error) {
	ts, err := time.Parse(swedbankDateLayout, strings.TrimSpace(record[2]))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date: %w", err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(record[5]))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q: %w", record[5], err)
	}

	currency, err := model.ParseCurrency(record[6])
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		Bank:          s.Name(),
		Timestamp:     ts,
		Amount:        amount.Abs(),
		Type:          model.ParseType(record[7]),
		Currency:      currency,
		AccountNumber: strings.TrimSpace(record[0]),
		Description:   strings.TrimSpace(record[4]),
	}, nil
}

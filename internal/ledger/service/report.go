package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"go.uber.org/zap"
)

// GetReport sums an owner's transactions within [start, end] by direction,
// currency and category. A start after end is rejected with
// model.ErrInvalidPeriod; no matching transactions give an empty report.
func (s *Service) GetReport(ctx context.Context, ownerID int64, start, end time.Time) (*model.Report, error) {
	period := model.NewPeriod(start, end)
	if err := period.ValidateInclusive(); err != nil {
		return nil, err
	}

	totals, err := s.store.SumByGroup(ctx, ownerID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}

	report, err := buildReport(totals)
	if err != nil {
		s.logger.Error("stored transactions failed to parse",
			zap.Int64("owner_id", ownerID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Debug("report built",
		zap.Int64("owner_id", ownerID),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("groups", len(totals)))

	return report, nil
}

// buildReport routes grouped sums into income (credit) and expenses (debit).
// Unknown-direction groups are dropped. Missing categories are folded into
// Unknown, so they add up with rows explicitly labelled Unknown.
func buildReport(totals []model.GroupTotal) (*model.Report, error) {
	report := model.NewReport()

	for _, total := range totals {
		var target model.Amounts
		switch model.ParseType(total.Type) {
		case model.TypeCredit:
			target = report.Income
		case model.TypeDebit:
			target = report.Expenses
		default:
			continue
		}

		currency, err := model.ParseCurrency(total.Currency)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrDataIntegrity, err)
		}

		category := model.CategoryUnknown
		if total.Category != "" {
			category, err = model.ParseCategory(total.Category)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", model.ErrDataIntegrity, err)
			}
		}

		target.Add(currency, category, total.Total)
	}

	return report, nil
}

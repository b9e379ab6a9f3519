package service

import (
	"context"
	"fmt"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"golang.org/x/sync/errgroup"
)

// GetAnalytics builds the reports of two periods side by side. compared must
// end no later than original starts; violations fail with
// model.ErrInvalidPeriod before any query runs. Either report failing fails
// the whole call.
func (s *Service) GetAnalytics(ctx context.Context, ownerID int64, original, compared model.Period) (*model.Analytics, error) {
	if err := model.ValidateComparison(original, compared); err != nil {
		return nil, err
	}

	var analytics model.Analytics

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report, err := s.GetReport(gctx, ownerID, original.Start, original.End)
		if err != nil {
			return fmt.Errorf("original period: %w", err)
		}
		analytics.OriginalPeriod = report
		return nil
	})
	g.Go(func() error {
		report, err := s.GetReport(gctx, ownerID, compared.Start, compared.End)
		if err != nil {
			return fmt.Errorf("compared period: %w", err)
		}
		analytics.ComparedPeriod = report
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &analytics, nil
}

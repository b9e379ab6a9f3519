package handler

import (
	"context"
	"errors"
	"time"

	"github.com/kiribu/budget-buddy/internal/ledger/ledgerpb"
	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Ledger interface {
	GetReport(ctx context.Context, ownerID int64, start, end time.Time) (*model.Report, error)
	GetAnalytics(ctx context.Context, ownerID int64, original, compared model.Period) (*model.Analytics, error)
	ImportTransactions(ctx context.Context, ownerID int64, transactions []model.Transaction) (int64, string, error)
}

type Handler struct {
	service Ledger
	logger  *zap.Logger
}

var _ ledgerpb.LedgerServiceServer = (*Handler)(nil)

func NewHandler(svc Ledger, logger *zap.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger,
	}
}

func (h *Handler) GetReport(ctx context.Context, req *ledgerpb.GetReportRequest) (*ledgerpb.GetReportResponse, error) {
	if req.OwnerID == 0 {
		return nil, status.Error(codes.InvalidArgument, "owner_id is required")
	}

	report, err := h.service.GetReport(ctx, req.OwnerID, req.Start, req.End)
	if err != nil {
		h.logger.Error("failed to get report", zap.Int64("owner_id", req.OwnerID), zap.Error(err))
		return nil, toStatus(err, "failed to get report")
	}

	return &ledgerpb.GetReportResponse{
		Report: report,
	}, nil
}

func (h *Handler) GetAnalytics(ctx context.Context, req *ledgerpb.GetAnalyticsRequest) (*ledgerpb.GetAnalyticsResponse, error) {
	if req.OwnerID == 0 {
		return nil, status.Error(codes.InvalidArgument, "owner_id is required")
	}

	analytics, err := h.service.GetAnalytics(ctx, req.OwnerID, req.Original, req.Compared)
	if err != nil {
		h.logger.Error("failed to get analytics", zap.Int64("owner_id", req.OwnerID), zap.Error(err))
		return nil, toStatus(err, "failed to get analytics")
	}

	return &ledgerpb.GetAnalyticsResponse{
		Analytics: analytics,
	}, nil
}

func (h *Handler) ImportTransactions(ctx context.Context, req *ledgerpb.ImportTransactionsRequest) (*ledgerpb.ImportTransactionsResponse, error) {
	if req.OwnerID == 0 {
		return nil, status.Error(codes.InvalidArgument, "owner_id is required")
	}

	stored, batchID, err := h.service.ImportTransactions(ctx, req.OwnerID, req.Transactions)
	if err != nil {
		h.logger.Error("failed to import transactions",
			zap.Int64("owner_id", req.OwnerID),
			zap.Int("count", len(req.Transactions)),
			zap.Error(err))
		return nil, toStatus(err, "failed to import transactions")
	}

	return &ledgerpb.ImportTransactionsResponse{
		Stored:  stored,
		BatchID: batchID,
	}, nil
}

func toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, model.ErrInvalidPeriod),
		errors.Is(err, model.ErrInvalidTransaction),
		errors.Is(err, model.ErrInvalidAmount):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrDataIntegrity):
		return status.Errorf(codes.DataLoss, "%s: %v", msg, err)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "%s: %v", msg, err)
	}
}

package ledgerpb_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/kiribu/budget-buddy/internal/ledger/handler"
	"github.com/kiribu/budget-buddy/internal/ledger/ledgerpb"
	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/kiribu/budget-buddy/internal/ledger/repository"
	"github.com/kiribu/budget-buddy/internal/ledger/service"
	"github.com/kiribu/budget-buddy/internal/pkg/rpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newClient(t *testing.T) ledgerpb.LedgerServiceClient {
	t.Helper()

	logger := zap.NewNop()
	svc := service.NewService(repository.NewMemory(), nil, logger)

	listener := bufconn.Listen(1 << 20)
	server := rpc.NewServer(logger)
	ledgerpb.RegisterLedgerServiceServer(server, handler.NewHandler(svc, logger))
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///ledger",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return ledgerpb.NewLedgerServiceClient(conn)
}

func TestLedgerService_ImportThenReport(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	food := model.CategoryFood

	imported, err := client.ImportTransactions(ctx, &ledgerpb.ImportTransactionsRequest{
		OwnerID: 11,
		Transactions: []model.Transaction{
			{Bank: "Swedbank", Timestamp: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("20.00"), Type: model.TypeDebit, Currency: model.CurrencyEUR, Category: &food},
			{Bank: "Swedbank", Timestamp: time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("1000"), Type: model.TypeCredit, Currency: model.CurrencyEUR},
			{Bank: "Revolut", Timestamp: time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("7.25"), Type: model.TypeDebit, Currency: model.CurrencyUSD, Category: &food},
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, imported.Stored)
	assert.NotEmpty(t, imported.BatchID)

	march := model.NewPeriod(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
	resp, err := client.GetReport(ctx, &ledgerpb.GetReportRequest{OwnerID: 11, Start: march.Start, End: march.End})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("20").Equal(resp.Report.Expenses.Get(model.CurrencyEUR, model.CategoryFood)))
	assert.True(t, decimal.RequireFromString("1000").Equal(resp.Report.Income.Get(model.CurrencyEUR, model.CategoryUnknown)))
	assert.NotContains(t, resp.Report.Expenses, model.CurrencyUSD)

	february := model.NewPeriod(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), march.Start)
	analytics, err := client.GetAnalytics(ctx, &ledgerpb.GetAnalyticsRequest{OwnerID: 11, Original: march, Compared: february})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("7.25").Equal(analytics.Analytics.ComparedPeriod.Expenses.Get(model.CurrencyUSD, model.CategoryFood)))
	assert.Empty(t, analytics.Analytics.ComparedPeriod.Income)
}

func TestLedgerService_InvalidPeriod(t *testing.T) {
	client := newClient(t)
	now := time.Now()

	_, err := client.GetReport(context.Background(), &ledgerpb.GetReportRequest{OwnerID: 1, Start: now, End: now.Add(-time.Hour)})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

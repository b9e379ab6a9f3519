// Package ledgerpb holds the wire contract of the ledger service: request and
// response messages, the service descriptor and a typed client.
package ledgerpb

import (
	"context"
	"time"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/kiribu/budget-buddy/internal/pkg/rpc"
	"google.golang.org/grpc"
)

const ServiceName = "budgetbuddy.ledger.v1.LedgerService"

const (
	GetReportMethod          = "/" + ServiceName + "/GetReport"
	GetAnalyticsMethod       = "/" + ServiceName + "/GetAnalytics"
	ImportTransactionsMethod = "/" + ServiceName + "/ImportTransactions"
)

type GetReportRequest struct {
	OwnerID int64     `json:"owner_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

type GetReportResponse struct {
	Report *model.Report `json:"report"`
}

type GetAnalyticsRequest struct {
	OwnerID  int64        `json:"owner_id"`
	Original model.Period `json:"original"`
	Compared model.Period `json:"compared"`
}

type GetAnalyticsResponse struct {
	Analytics *model.Analytics `json:"analytics"`
}

type ImportTransactionsRequest struct {
	OwnerID      int64               `json:"owner_id"`
	Transactions []model.Transaction `json:"transactions"`
}

type ImportTransactionsResponse struct {
	Stored  int64  `json:"stored"`
	BatchID string `json:"batch_id"`
}

type LedgerServiceServer interface {
	GetReport(ctx context.Context, req *GetReportRequest) (*GetReportResponse, error)
	GetAnalytics(ctx context.Context, req *GetAnalyticsRequest) (*GetAnalyticsResponse, error)
	ImportTransactions(ctx context.Context, req *ImportTransactionsRequest) (*ImportTransactionsResponse, error)
}

var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetReport",
			Handler:    rpc.Unary(GetReportMethod, LedgerServiceServer.GetReport),
		},
		{
			MethodName: "GetAnalytics",
			Handler:    rpc.Unary(GetAnalyticsMethod, LedgerServiceServer.GetAnalytics),
		},
		{
			MethodName: "ImportTransactions",
			Handler:    rpc.Unary(ImportTransactionsMethod, LedgerServiceServer.ImportTransactions),
		},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

type LedgerServiceClient interface {
	GetReport(ctx context.Context, req *GetReportRequest, opts ...grpc.CallOption) (*GetReportResponse, error)
	GetAnalytics(ctx context.Context, req *GetAnalyticsRequest, opts ...grpc.CallOption) (*GetAnalyticsResponse, error)
	ImportTransactions(ctx context.Context, req *ImportTransactionsRequest, opts ...grpc.CallOption) (*ImportTransactionsResponse, error)
}

type ledgerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerServiceClient(cc grpc.ClientConnInterface) LedgerServiceClient {
	return &ledgerServiceClient{cc: cc}
}

func (c *ledgerServiceClient) GetReport(ctx context.Context, req *GetReportRequest, opts ...grpc.CallOption) (*GetReportResponse, error) {
	return rpc.Invoke[GetReportResponse](ctx, c.cc, GetReportMethod, req, opts...)
}

func (c *ledgerServiceClient) GetAnalytics(ctx context.Context, req *GetAnalyticsRequest, opts ...grpc.CallOption) (*GetAnalyticsResponse, error) {
	return rpc.Invoke[GetAnalyticsResponse](ctx, c.cc, GetAnalyticsMethod, req, opts...)
}

func (c *ledgerServiceClient) ImportTransactions(ctx context.Context, req *ImportTransactionsRequest, opts ...grpc.CallOption) (*ImportTransactionsResponse, error) {
	return rpc.Invoke[ImportTransactionsResponse](ctx, c.cc, ImportTransactionsMethod, req, opts...)
}

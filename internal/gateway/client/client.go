package client

import (
	"context"
	"fmt"

	"github.com/kiribu/budget-buddy/internal/ledger/ledgerpb"
	"github.com/kiribu/budget-buddy/internal/pkg/config"
	"github.com/kiribu/budget-buddy/internal/pkg/rpc"
	"github.com/kiribu/budget-buddy/internal/user/userpb"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type Clients struct {
	User   userpb.UserServiceClient
	Ledger ledgerpb.LedgerServiceClient
	conns  map[string]*grpc.ClientConn
	logger *zap.Logger
}

func NewClients(cfg *config.ServicesConfig, logger *zap.Logger) (*Clients, error) {
	clients := &Clients{
		conns:  make(map[string]*grpc.ClientConn),
		logger: logger,
	}

	userConn, err := rpc.Dial(cfg.UserService)
	if err != nil {
		return nil, err
	}
	clients.conns["user-service"] = userConn
	clients.User = userpb.NewUserServiceClient(userConn)

	ledgerConn, err := rpc.Dial(cfg.LedgerService)
	if err != nil {
		clients.Close()
		return nil, err
	}
	clients.conns["ledger-service"] = ledgerConn
	clients.Ledger = ledgerpb.NewLedgerServiceClient(ledgerConn)

	return clients, nil
}

// Ready checks that every backend reports itself as serving.
func (c *Clients) Ready(ctx context.Context) error {
	for name, conn := range c.conns {
		if err := rpc.CheckHealth(ctx, conn); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (c *Clients) Close() {
	for name, conn := range c.conns {
		if err := conn.Close(); err != nil {
			c.logger.Error("failed to close gRPC connection", zap.String("service", name), zap.Error(err))
		}
	}
}

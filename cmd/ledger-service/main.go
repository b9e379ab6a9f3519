package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiribu/budget-buddy/internal/events"
	"github.com/kiribu/budget-buddy/internal/ledger/handler"
	"github.com/kiribu/budget-buddy/internal/ledger/ledgerpb"
	"github.com/kiribu/budget-buddy/internal/ledger/repository"
	"github.com/kiribu/budget-buddy/internal/ledger/service"
	"github.com/kiribu/budget-buddy/internal/pkg/config"
	"github.com/kiribu/budget-buddy/internal/pkg/logger"
	"github.com/kiribu/budget-buddy/internal/pkg/postgres"
	"github.com/kiribu/budget-buddy/internal/pkg/rpc"
	"go.uber.org/zap"
)

func main() {
	cfg := &config.LedgerConfig{}
	config.MustLoadConfig(cfg)

	log := logger.MustNew(cfg.LogLevel)
	defer log.Sync()

	log.Info("Starting Ledger Service",
		zap.String("port", cfg.GRPCPort),
		zap.String("storage", cfg.Storage))

	ctx := context.Background()

	var store service.Store
	switch cfg.Storage {
	case "memory":
		store = repository.NewMemory()
	case "postgres":
		if err := postgres.Migrate(repository.Migrations, "migrations",
			cfg.Postgres.MigrateURL(repository.MigrationsTable), log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}

		db, err := postgres.Connect(ctx, cfg.Postgres.DSN(), log)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		store = repository.NewRepository(db, log)
	default:
		log.Fatal("Unknown ledger storage", zap.String("storage", cfg.Storage))
	}

	var publisher service.Publisher = events.NopPublisher{}
	if cfg.AMQP.Enabled() {
		broker, err := events.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, log)
		if err != nil {
			log.Fatal("Failed to connect to broker", zap.Error(err))
		}
		defer broker.Close()
		publisher = broker
	}

	svc := service.NewService(store, publisher, log)
	h := handler.NewHandler(svc, log)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatal("Failed to listen", zap.Error(err))
	}

	s := rpc.NewServer(log)
	ledgerpb.RegisterLedgerServiceServer(s, h)

	log.Info("Ledger Service is running", zap.String("address", lis.Addr().String()))

	go func() {
		if err := s.Serve(lis); err != nil {
			log.Fatal("Failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Ledger Service")
	s.GracefulStop()
}

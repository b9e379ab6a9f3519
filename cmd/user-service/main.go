package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiribu/budget-buddy/internal/pkg/config"
	"github.com/kiribu/budget-buddy/internal/pkg/logger"
	"github.com/kiribu/budget-buddy/internal/pkg/postgres"
	"github.com/kiribu/budget-buddy/internal/pkg/rpc"
	"github.com/kiribu/budget-buddy/internal/user/handler"
	"github.com/kiribu/budget-buddy/internal/user/repository"
	"github.com/kiribu/budget-buddy/internal/user/service"
	"github.com/kiribu/budget-buddy/internal/user/userpb"
	"go.uber.org/zap"
)

func main() {
	cfg := &config.ServiceConfig{}
	config.MustLoadConfig(cfg)

	log := logger.MustNew(cfg.LogLevel)
	defer log.Sync()

	log.Info("Starting User Service", zap.String("port", cfg.GRPCPort))

	if err := postgres.Migrate(repository.Migrations, "migrations",
		cfg.Postgres.MigrateURL(repository.MigrationsTable), log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	db, err := postgres.Connect(ctx, cfg.Postgres.DSN(), log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewRepository(db, log)
	svc := service.NewService(repo, log)
	h := handler.NewHandler(svc, log)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatal("Failed to listen", zap.Error(err))
	}

	s := rpc.NewServer(log)
	userpb.RegisterUserServiceServer(s, h)

	log.Info("User Service is running", zap.String("address", lis.Addr().String()))

	go func() {
		if err := s.Serve(lis); err != nil {
			log.Fatal("Failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down User Service")
	s.GracefulStop()
}

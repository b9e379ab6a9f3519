package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kiribu/budget-buddy/internal/gateway/cache"
	"github.com/kiribu/budget-buddy/internal/gateway/client"
	"github.com/kiribu/budget-buddy/internal/gateway/handler"
	"github.com/kiribu/budget-buddy/internal/pkg/config"
	"github.com/kiribu/budget-buddy/internal/pkg/logger"
	"github.com/kiribu/budget-buddy/internal/statement"
	"go.uber.org/zap"
)

func main() {
	cfg := &config.GatewayConfig{}
	config.MustLoadConfig(cfg)

	log := logger.MustNew(cfg.LogLevel)
	defer log.Sync()

	log.Info("Starting API Gateway", zap.String("port", cfg.HTTPPort))

	clients, err := client.NewClients(&cfg.Services, log)
	if err != nil {
		log.Fatal("Failed to create gRPC clients", zap.Error(err))
	}
	defer clients.Close()

	owners, err := cache.NewCache(cfg.RedisAddr, log)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer owners.Close()

	h := handler.NewHandler(clients.User, clients.Ledger, owners, statement.DefaultRegistry(log), cfg.MaxUploadSize, log)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := clients.Ready(ctx); err != nil {
			log.Warn("backend not ready", zap.Error(err))
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: r,
	}

	log.Info("API Gateway is running", zap.String("address", srv.Addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down API Gateway")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
}

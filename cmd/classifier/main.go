package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiribu/budget-buddy/internal/classifier"
	"github.com/kiribu/budget-buddy/internal/events"
	"github.com/kiribu/budget-buddy/internal/ledger/repository"
	"github.com/kiribu/budget-buddy/internal/pkg/config"
	"github.com/kiribu/budget-buddy/internal/pkg/logger"
	"github.com/kiribu/budget-buddy/internal/pkg/postgres"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := &config.ClassifierConfig{}
	config.MustLoadConfig(cfg)

	log := logger.MustNew(cfg.LogLevel)
	defer log.Sync()

	log.Info("Starting Classifier", zap.String("schedule", cfg.Schedule))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := classifier.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Fatal("Failed to load rules", zap.Error(err))
	}
	keyword, err := classifier.NewKeyword(rules)
	if err != nil {
		log.Fatal("Failed to build classifier", zap.Error(err))
	}

	db, err := postgres.Connect(ctx, cfg.Postgres.DSN(), log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	runner := classifier.NewRunner(repository.NewRepository(db, log), keyword, cfg.BatchSize, log)

	run := func(ctx context.Context, ownerID int64) {
		if _, err := runner.Run(ctx, ownerID); err != nil {
			log.Error("classification failed", zap.Int64("owner_id", ownerID), zap.Error(err))
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Schedule, func() { run(ctx, 0) }); err != nil {
		log.Fatal("Invalid schedule", zap.String("schedule", cfg.Schedule), zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})

	if cfg.AMQP.Enabled() {
		broker, err := events.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, log)
		if err != nil {
			log.Fatal("Failed to connect to broker", zap.Error(err))
		}
		defer broker.Close()

		g.Go(func() error {
			return broker.ConsumeTransactionsImported(gctx, func(ctx context.Context, event events.TransactionsImported) error {
				run(ctx, event.OwnerID)
				return nil
			})
		})
	}

	log.Info("Classifier is running")

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Error("Classifier stopped with error", zap.Error(err))
	}
	log.Info("Classifier stopped")
}

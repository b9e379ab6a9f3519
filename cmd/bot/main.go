package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kiribu/budget-buddy/internal/bot/client"
	"github.com/kiribu/budget-buddy/internal/bot/handler"
	"github.com/kiribu/budget-buddy/internal/pkg/config"
	"github.com/kiribu/budget-buddy/internal/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := &config.BotConfig{}
	config.MustLoadConfig(cfg)

	log := logger.MustNew(cfg.LogLevel)
	defer log.Sync()

	log.Info("Starting Bot Service", zap.String("gateway_url", cfg.GatewayURL))

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		log.Fatal("Failed to create bot", zap.Error(err))
	}

	bot.Debug = false
	log.Info("Authorized", zap.String("bot_username", bot.Self.UserName))

	gateway := client.New(cfg.GatewayURL, cfg.Timeout)
	h := handler.NewHandler(bot, gateway, bot.Self.UserName, log)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	log.Info("Bot is running and waiting for updates")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case update := <-updates:
			h.HandleUpdate(ctx, update)
		case <-quit:
			log.Info("Shutting down Bot Service")
			cancel()
			bot.StopReceivingUpdates()
			h.Cleanup()
			log.Info("Bot Service stopped")
			return
		}
	}
}

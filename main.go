package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	httpapi "github.com/voxchat/voxbot/internal/api"
	"github.com/voxchat/voxbot/internal/auth"
	"github.com/voxchat/voxbot/internal/bot"
	"github.com/voxchat/voxbot/internal/config"
	"github.com/voxchat/voxbot/internal/db/sqlite"
	"github.com/voxchat/voxbot/internal/ledger"
	"github.com/voxchat/voxbot/internal/lifecycle"
	"github.com/voxchat/voxbot/internal/moderation"
	"github.com/voxchat/voxbot/internal/observability"
)

const shutdownGrace = 15 * time.Second

func main() {
	cfg := config.Get()
	log.SetFormatter(&config.VbFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbClient := sqlite.NewSQLiteClient(cfg.DBPath)
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.WithError(err).Error("cant close db")
		}
	}()

	warningLedger, err := ledger.NewRedisLedgerFromURL(ctx, cfg.RedisURL, cfg.Moderation.WarningTTL)
	if err != nil {
		log.WithError(err).Fatalln("cant connect to redis")
	}

	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		log.WithError(err).Errorln("cant initialize bot api")
		time.Sleep(1 * time.Second)
		log.Fatalln("exiting")
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		botAPI.Debug = true
	}

	authService := auth.NewService(dbClient, cfg.Auth)
	moderator := moderation.NewModerator(warningLedger, moderation.NewPolicy(cfg.Moderation), dbClient, cfg.DefaultLanguage)

	service := bot.NewService(botAPI, dbClient)
	processor := bot.NewUpdateProcessor(service, moderator, warningLedger, authService, cfg)

	runtime := lifecycle.NewRuntime(
		observability.NewServer(cfg.MetricsAddr),
		auth.NewSweeper(dbClient, cfg.Auth),
		httpapi.NewServer(cfg.ListenAddr, authService),
		bot.NewListener(service, processor),
	)
	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start runtime")
	}

	<-ctx.Done()
	log.Infoln("shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer stopCancel()
	if err := runtime.Stop(stopCtx); err != nil {
		log.WithError(err).Error("shutdown incomplete")
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/roayati/clubs/internal/bot"
	"github.com/roayati/clubs/internal/config"
	"github.com/roayati/clubs/internal/db"
	"github.com/roayati/clubs/internal/events"
	"github.com/roayati/clubs/internal/handlers"
	"github.com/roayati/clubs/internal/jobs"
	"github.com/roayati/clubs/internal/logging"
	"github.com/roayati/clubs/internal/models"
	"github.com/roayati/clubs/internal/repository"
	"github.com/roayati/clubs/internal/services"
	"github.com/roayati/clubs/internal/web"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Production())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dsn := cfg.DatabaseURL
	if cfg.DBDriver == db.DriverSQLite {
		dsn = db.SQLiteDSN(dsn)
	}
	conn, err := db.Open(cfg.DBDriver, dsn, logger)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}

	store := repository.New(conn)
	validator := services.NewValidator()
	invoices := services.NewInvoiceService(store, logger, cfg.Timezone)
	regs := services.NewRegistrationService(store, invoices, validator, logger, cfg.Timezone)
	h := &handlers.Handlers{
		Terms:         services.NewTermService(store, validator, logger, cfg.Timezone),
		Registrations: regs,
		Invoices:      invoices,
		BaseURL:       cfg.PublicBaseURL,
		Log:           logger,
	}

	var notifier *bot.Notifier
	if cfg.NotifyStaff() {
		notifier = bot.NewNotifier(bot.NewClient(cfg.TelegramToken, cfg.TelegramAPIURL), cfg.TelegramChatID, cfg.PublicBaseURL, logger)
	}
	events.OnTransition = func(reg models.Registration, from, to string) {
		logger.Info("registration transition",
			zap.String("code", reg.Code),
			zap.String("from", from),
			zap.String("to", to))
		if notifier != nil {
			go notifier.Transition(reg, from, to)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sweepDone := jobs.StartRecomputeLoop(ctx, regs, cfg.RecomputeInterval, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.Router(h, cfg.StaffToken, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("clubs listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	<-sweepDone
	logger.Info("stopped")
}

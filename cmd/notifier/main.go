// cmd/notifier/main.go
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"libris/internal/catalog"
	"libris/internal/circulation"
	"libris/internal/config"
	"libris/internal/notify"
	"libris/internal/overdue"
	"libris/internal/storage/postgres"
	"libris/pkg/logger"
)

// The notifier is the scheduled collaborator: on every tick it asks the
// circulation service for late loans and dispatches the overdue alert.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Options{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Development: cfg.Log.Development,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close()

	bookService := catalog.NewService(store.Books(), log)
	loanService := circulation.NewService(store.Loans(), bookService, log)

	var notifier notify.Notifier
	if cfg.SMTP.Addr != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTP)
	} else {
		log.Warn("no SMTP_ADDR configured, logging notifications instead")
		notifier = notify.NewLogNotifier(log)
	}

	sweeper := overdue.NewSweeper(loanService, notifier, log, cfg.Overdue.ThresholdDays)

	if *once {
		if err := sweeper.Sweep(ctx); err != nil {
			log.Fatal("overdue sweep failed", zap.Error(err))
		}
		return
	}

	interval := time.Duration(cfg.Overdue.Interval)
	log.Info("notifier running",
		zap.Duration("interval", interval),
		zap.Int("threshold_days", cfg.Overdue.ThresholdDays))
	sweeper.Run(ctx, interval)
}

// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"libris/internal/catalog"
	"libris/internal/circulation"
	"libris/internal/config"
	"libris/internal/storage/memory"
	"libris/internal/storage/postgres"
	"libris/internal/telemetry"
	"libris/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
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

	shutdownTracing, err := telemetry.Setup(ctx, "libris-server", cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Fatal("failed to set up tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	bookRepo, loanRepo, closeStore, err := openStorage(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeStore()

	bookService := catalog.NewService(bookRepo, log)
	loanService := circulation.NewService(loanRepo, bookService, log)

	bookHandler := catalog.NewHandler(bookService)
	loanHandler := circulation.NewHandler(loanService, bookService)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Route("/books", func(r chi.Router) {
		bookHandler.Routes(r)
		loanHandler.BookLoansRoute(r)
	})
	router.Route("/loans", loanHandler.Routes)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
}

// openStorage picks Postgres when a database URL is configured and the
// in-memory store otherwise (dev mode, nothing survives a restart).
func openStorage(ctx context.Context, dbURL string, log *zap.Logger) (catalog.Repository, circulation.Repository, func() error, error) {
	if dbURL == "" {
		log.Warn("no DATABASE_URL configured, using in-memory storage")
		store := memory.New()
		return store.Books(), store.Loans(), func() error { return nil }, nil
	}

	store, err := postgres.Open(dbURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return store.Books(), store.Loans(), store.Close, nil
}

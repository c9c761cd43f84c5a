package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mytheresa/catalog-admin/app/config"
	"github.com/mytheresa/catalog-admin/app/database"
	"github.com/mytheresa/catalog-admin/app/logger"
	"github.com/mytheresa/catalog-admin/models"
	"github.com/mytheresa/catalog-admin/models/memstore"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{
		Production: cfg.App.Production(),
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, closeStore, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           newRouter(s, cfg.HTTP.AllowedOrigins, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (stores, func(), error) {
	if cfg.Store.Driver == config.DriverMemory {
		log.Warn("using in-memory store; data is lost on exit")
		store := memstore.New()
		return stores{categories: store.Categories(), products: store.Products()}, func() {}, nil
	}

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return stores{}, nil, err
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Database.DSN(), log.Named("migrate")); err != nil {
			closeDB()
			return stores{}, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return stores{
		categories: models.NewCategoriesRepository(db),
		products:   models.NewProductsRepository(db),
	}, closeDB, nil
}

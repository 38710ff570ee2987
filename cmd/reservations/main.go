package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/meeting-rooms/internal/application"
	"github.com/example/meeting-rooms/internal/config"
	httptransport "github.com/example/meeting-rooms/internal/http"
	"github.com/example/meeting-rooms/internal/logging"
	"github.com/example/meeting-rooms/internal/persistence/sqlite"
	"github.com/example/meeting-rooms/internal/seed"
	"github.com/example/meeting-rooms/internal/storeadapter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWithFile(os.Getenv("RESERVATION_ENV_FILE"))
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("reservation service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	storage, err := prepareStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(storage, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation API listening", "addr", server.Addr, "timezone", cfg.Location.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server encountered error: %w", err)
	}
	logger.Info("reservation API stopped")
	return nil
}

// prepareStorage opens the database, applies migrations and loads the seed file
// when one is configured.
func prepareStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sqlite.Storage, error) {
	storage, err := sqlite.Open(sqlite.Options{
		Path:        cfg.SQLitePath,
		Location:    cfg.Location,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	logger.Info("migration system initialized", "database_path", cfg.SQLitePath)
	migrationStart := time.Now()
	if err := storage.Migrate(ctx, logger); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("database migrations completed", "execution_time", time.Since(migrationStart))

	if cfg.SeedFile != "" {
		loader := seed.NewLoader(storage.Rooms, storage.Users, storage, 0, logger.With("component", "seed"))
		if err := loader.ApplyFile(ctx, cfg.SeedFile); err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("failed to load seed data: %w", err)
		}
	}

	return storage, nil
}

func newHandler(storage *sqlite.Storage, cfg config.Config, logger *slog.Logger) http.Handler {
	reservationService := application.NewReservationServiceWithLogger(
		storeadapter.NewReservationStore(storage.Reservations),
		storeadapter.NewRoomCatalog(storage.Rooms),
		storeadapter.NewUserDirectory(storage.Users),
		storage,
		cfg.Location,
		logger,
	)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Rooms:        httptransport.NewRoomHandler(reservationService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, reservationService.Location(), logger),
		Health:       httptransport.NewHealthHandler(storage, logger),
		Logger:       logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recovery(logger),
			httptransport.Timeout(cfg.RequestTimeout),
		},
	})
}

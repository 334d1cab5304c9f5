package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/taskboard/internal/app"
	"github.com/msomdec/taskboard/internal/config"
	"github.com/msomdec/taskboard/internal/handler"
	"github.com/msomdec/taskboard/internal/service"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.TokenMode == config.TokenModeMock {
		slog.Warn("serving unsigned mock tokens; set TOKEN_MODE=jwt outside of development")
	}

	store, err := app.OpenStore(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to open record store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// The server always runs the mock backend; MOCK_API only matters to clients.
	backend, err := app.NewMockBackend(context.Background(), cfg, store, logger)
	if err != nil {
		slog.Error("failed to start mock backend", "error", err)
		os.Exit(1)
	}

	limiter := service.NewTokenBucket(float64(cfg.AuthRatePerMinute)/60, float64(cfg.AuthBurst))
	defer limiter.Stop()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, backend, limiter)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.Wrap(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.StoreDriver, "latency", cfg.MockLatency)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/medguard/internal/adapters/http"
	"github.com/kirillkom/medguard/internal/bootstrap"
	"github.com/kirillkom/medguard/internal/config"
	"github.com/kirillkom/medguard/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Auth:          app.Auth,
		Reports:       app.Reports,
		Drafts:        app.Drafts,
		Community:     app.Community,
		Notifications: app.Notifications,
		Profile:       app.Profile,
	}, httpadapter.WithMetrics(app.Metrics)).Handler()

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Draft event streams stay open; their handlers watch the request context.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "addr", server.Addr, "store", cfg.StoreBackend, "analyzer", app.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Closing drafts first ends open event streams so Shutdown does not wait on them.
	app.Drafts.CloseAll()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}

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

	"github.com/kirillkom/medguard/internal/bootstrap"
	"github.com/kirillkom/medguard/internal/config"
	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/observability/logging"
)

const broadcastTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker, err := bootstrap.NewWorker(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer worker.Close()

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", worker.Metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "metrics_addr", metricsServer.Addr)
	err = worker.Queue.SubscribeReportShared(ctx, func(handlerCtx context.Context, event domain.ReportSharedEvent) error {
		broadcastCtx, cancel := context.WithTimeout(handlerCtx, broadcastTimeout)
		defer cancel()
		return worker.Broadcast.HandleReportShared(broadcastCtx, event)
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

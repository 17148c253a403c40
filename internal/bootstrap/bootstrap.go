package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/medguard/internal/config"
	"github.com/kirillkom/medguard/internal/core/ports"
	"github.com/kirillkom/medguard/internal/core/usecase"
	"github.com/kirillkom/medguard/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/medguard/internal/infrastructure/queue/inproc"
	"github.com/kirillkom/medguard/internal/infrastructure/queue/nats"
	"github.com/kirillkom/medguard/internal/infrastructure/resilience"
	"github.com/kirillkom/medguard/internal/infrastructure/seed"
	"github.com/kirillkom/medguard/internal/observability/metrics"
)

const janitorInterval = time.Minute

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.HTTPServerMetrics

	Analyzer ports.IncidentAnalyzer
	Provider string

	Auth          *usecase.AuthUseCase
	Reports       *usecase.ReportUseCase
	Drafts        *usecase.DraftUseCase
	Community     *usecase.CommunityUseCase
	Notifications *usecase.NotificationUseCase
	Profile       *usecase.ProfileUseCase
	Broadcast     *usecase.BroadcastUseCase

	ReportRepo ports.ReportRepository

	closeFns []func()
}

// New wires the API process: stores, seed data, analyzer, use cases and the
// event publisher. The draft janitor runs until ctx is done.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	provider, err := resolveProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.Provider = provider
	app.Metrics = metrics.NewHTTPServerMetrics("api", provider)
	if budget := cfg.Resilience().BackoffBudget(); cfg.AnalysisTimeout() > 0 && budget >= cfg.AnalysisTimeout() {
		logger.Warn("retry_budget_exceeds_call_timeout",
			"backoff_budget_ms", budget.Milliseconds(),
			"call_timeout_ms", cfg.AnalysisTimeout().Milliseconds(),
		)
	}
	executor := resilience.NewExecutor(cfg.Resilience(),
		resilience.WithObserver(app.Metrics),
		resilience.WithLogger(logger),
	)

	analyzer, err := newAnalyzer(ctx, cfg, provider, executor)
	if err != nil {
		return nil, err
	}
	app.Analyzer = analyzer

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.onClose(st.close)
	app.ReportRepo = st.reports

	data, err := seed.Load(cfg.SeedPath, time.Now().UTC())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load seed: %w", err)
	}
	if err := seed.Apply(ctx, data, st.reports, st.community); err != nil {
		app.Close()
		return nil, fmt.Errorf("apply seed: %w", err)
	}

	app.Notifications = usecase.NewNotificationUseCase(st.notifications, data.Notifications)
	app.Broadcast = usecase.NewBroadcastUseCase(st.notifications, app.Notifications)

	var publisher ports.EventPublisher
	if cfg.NATSURL != "" {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.onClose(queue.Close)
		publisher = queue
	} else {
		logger.Info("broadcast_inprocess", "reason", "NATS_URL is not set")
		publisher = inproc.NewPublisher(app.Broadcast, logger)
	}

	app.Reports = usecase.NewReportUseCase(
		st.reports,
		app.Notifications,
		publisher,
		xlsx.NewExporter(),
		data.Reference,
		app.Metrics,
	)
	app.Drafts = usecase.NewDraftUseCase(
		analyzer,
		app.Reports,
		usecase.DraftConfig{
			Bridge: usecase.BridgeConfig{
				MinChars:    cfg.AnalysisMinChars,
				QuietPeriod: cfg.AnalysisQuietPeriod(),
				CallTimeout: cfg.AnalysisTimeout(),
			},
			IdleTimeout: cfg.DraftIdleTimeout(),
		},
		app.Metrics,
		usecase.WithBridgeLogger(logger),
	)
	app.onClose(app.Drafts.CloseAll)
	go app.Drafts.RunJanitor(ctx, janitorInterval)

	users := st.users
	app.Auth = usecase.NewAuthUseCase(users, app.Notifications, data.Reference)
	app.Community = usecase.NewCommunityUseCase(st.community, app.Notifications)
	app.Profile = usecase.NewProfileUseCase(users, st.reports, app.Notifications, data.Reference)

	logger.Info("bootstrap_complete",
		"store", cfg.StoreBackend,
		"analyzer", provider,
		"broker", cfg.NATSURL != "",
		"seed_reports", len(data.Reports),
		"seed_posts", len(data.Posts),
	)
	return app, nil
}

// Worker is the broadcast consumer process.
type Worker struct {
	Queue     *nats.Queue
	Broadcast *usecase.BroadcastUseCase
	Metrics   *metrics.WorkerMetrics

	closeFns []func()
}

func NewWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Worker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.NATSURL == "" {
		return nil, errors.New("worker requires NATS_URL")
	}
	if cfg.StoreBackend != config.StorePostgres {
		logger.Warn("worker_store_not_shared", "store", cfg.StoreBackend)
	}

	w := &Worker{Metrics: metrics.NewWorkerMetrics("worker")}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	w.closeFns = append(w.closeFns, st.close)

	data, err := seed.Load(cfg.SeedPath, time.Now().UTC())
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("load seed: %w", err)
	}
	notifications := usecase.NewNotificationUseCase(st.notifications, data.Notifications)
	w.Broadcast = usecase.NewBroadcastUseCase(st.notifications, notifications)

	executor := resilience.NewExecutor(cfg.Resilience(), resilience.WithLogger(logger))
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
		Observer:           w.Metrics,
	})
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	w.Queue = queue
	w.closeFns = append(w.closeFns, queue.Close)
	return w, nil
}

func (w *Worker) Close() {
	for i := len(w.closeFns) - 1; i >= 0; i-- {
		w.closeFns[i]()
	}
	w.closeFns = nil
}

func (a *App) onClose(fn func()) {
	if fn != nil {
		a.closeFns = append(a.closeFns, fn)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}

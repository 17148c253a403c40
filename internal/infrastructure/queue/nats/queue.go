package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

const (
	DefaultSubject = "reports.shared"
	queueGroup     = "workers"
)

// HandlerObserver receives per-message outcomes on the worker side.
type HandlerObserver interface {
	ObserveHandled(status string, duration time.Duration, lag time.Duration)
	HandlerStarted()
	HandlerFinished()
}

type noopHandlerObserver struct{}

func (noopHandlerObserver) ObserveHandled(string, time.Duration, time.Duration) {}
func (noopHandlerObserver) HandlerStarted()                                     {}
func (noopHandlerObserver) HandlerFinished()                                    {}

type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
	logger   *slog.Logger
	observer HandlerObserver
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
	Observer             HandlerObserver
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	if subject == "" {
		subject = DefaultSubject
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := options.Observer
	if observer == nil {
		observer = noopHandlerObserver{}
	}

	conn, err := nats.Connect(
		url,
		nats.Name("medguard"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
		logger:   logger,
		observer: observer,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishReportShared(ctx context.Context, event domain.ReportSharedEvent) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return resilience.WrapTemporary("nats publish", err, classifyNATSError)
	}
	return nil
}

func (q *Queue) SubscribeReportShared(ctx context.Context, handler func(context.Context, domain.ReportSharedEvent) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, queueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		q.dispatch(ctx, msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (q *Queue) dispatch(ctx context.Context, data []byte, handler func(context.Context, domain.ReportSharedEvent) error) {
	q.observer.HandlerStarted()
	defer q.observer.HandlerFinished()
	started := time.Now()

	event, err := decodeEvent(data)
	if err != nil {
		q.logger.Error("worker_event_decode_failed", "error", err)
		q.observer.ObserveHandled("invalid", 0, 0)
		return
	}
	var lag time.Duration
	if !event.SharedAt.IsZero() {
		lag = started.Sub(event.SharedAt)
	}

	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	status := "success"
	if err := handler(handlerCtx, event); err != nil {
		status = "error"
		q.logger.Error("worker_handler_failed", "report_id", event.ReportID, "error", err)
	}
	q.observer.ObserveHandled(status, time.Since(started), lag)
}

func encodeEvent(event domain.ReportSharedEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode report shared event: %w", err)
	}
	return payload, nil
}

func decodeEvent(data []byte) (domain.ReportSharedEvent, error) {
	var event domain.ReportSharedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.ReportSharedEvent{}, fmt.Errorf("decode report shared event: %w", err)
	}
	if event.ReportID == "" {
		return domain.ReportSharedEvent{}, fmt.Errorf("decode report shared event: %w", domain.ErrInvalidInput)
	}
	return event, nil
}

package nats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

func TestClassifyNATSError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
		record    bool
	}{
		{name: "no servers", err: fmt.Errorf("publish: %w", nats.ErrNoServers), retryable: true, record: true},
		{name: "timeout", err: nats.ErrTimeout, retryable: true, record: true},
		{name: "closed", err: nats.ErrConnectionClosed, retryable: true, record: true},
		{name: "canceled", err: context.Canceled, retryable: false, record: false},
		{name: "bad subject", err: nats.ErrBadSubject, retryable: false, record: true},
	}
	for _, tc := range cases {
		got := classifyNATSError(tc.err)
		if got.Retryable != tc.retryable || got.RecordFailure != tc.record {
			t.Fatalf("%s: unexpected classification %+v", tc.name, got)
		}
	}
}

func TestWrapTemporaryForDisconnect(t *testing.T) {
	err := resilience.WrapTemporary("nats publish", nats.ErrDisconnected, classifyNATSError)
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if err := resilience.WrapTemporary("nats publish", nats.ErrBadSubject, classifyNATSError); errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("bad subject must stay permanent")
	}
}

func TestEventRoundTripThroughDispatch(t *testing.T) {
	sharedAt := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	payload, err := encodeEvent(domain.ReportSharedEvent{
		ReportID: "r-1",
		Severity: domain.SeverityHigh,
		ClinicID: "City General",
		SharedBy: "u-1",
		SharedAt: sharedAt,
	})
	if err != nil {
		t.Fatalf("encodeEvent() error: %v", err)
	}

	observer := &handlerObserverFake{}
	q := &Queue{logger: slog.New(slog.NewTextHandler(io.Discard, nil)), observer: observer}
	var got domain.ReportSharedEvent
	q.dispatch(context.Background(), payload, func(_ context.Context, event domain.ReportSharedEvent) error {
		got = event
		return nil
	})

	if got.ReportID != "r-1" || got.Severity != domain.SeverityHigh || !got.SharedAt.Equal(sharedAt) {
		t.Fatalf("unexpected event: %+v", got)
	}
	if len(observer.statuses) != 1 || observer.statuses[0] != "success" {
		t.Fatalf("unexpected statuses: %v", observer.statuses)
	}
	if observer.started != 1 || observer.finished != 1 {
		t.Fatalf("expected in-flight bookkeeping, got %d/%d", observer.started, observer.finished)
	}
}

func TestDispatchRejectsMalformedPayload(t *testing.T) {
	observer := &handlerObserverFake{}
	q := &Queue{logger: slog.New(slog.NewTextHandler(io.Discard, nil)), observer: observer}
	called := false
	handler := func(context.Context, domain.ReportSharedEvent) error {
		called = true
		return nil
	}
	q.dispatch(context.Background(), []byte("r-1"), handler)
	q.dispatch(context.Background(), []byte(`{"severity":"LOW"}`), handler)

	if called {
		t.Fatalf("handler must not run for malformed payloads")
	}
	if len(observer.statuses) != 2 || observer.statuses[0] != "invalid" {
		t.Fatalf("unexpected statuses: %v", observer.statuses)
	}
}

func TestDispatchRecordsHandlerError(t *testing.T) {
	observer := &handlerObserverFake{}
	q := &Queue{logger: slog.New(slog.NewTextHandler(io.Discard, nil)), observer: observer}
	payload, _ := encodeEvent(domain.ReportSharedEvent{ReportID: "r-2"})
	q.dispatch(context.Background(), payload, func(context.Context, domain.ReportSharedEvent) error {
		return errors.New("inbox down")
	})
	if len(observer.statuses) != 1 || observer.statuses[0] != "error" {
		t.Fatalf("unexpected statuses: %v", observer.statuses)
	}
}

type handlerObserverFake struct {
	statuses []string
	started  int
	finished int
}

func (f *handlerObserverFake) ObserveHandled(status string, _ time.Duration, _ time.Duration) {
	f.statuses = append(f.statuses, status)
}
func (f *handlerObserverFake) HandlerStarted()  { f.started++ }
func (f *handlerObserverFake) HandlerFinished() { f.finished++ }

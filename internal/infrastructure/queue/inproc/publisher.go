// Package inproc delivers report events to the broadcast handler without a broker.
package inproc

import (
	"context"
	"log/slog"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

// Publisher runs the broadcast fan-out inline, the way a worker would on delivery.
// Handler failures are logged and not returned, matching broker semantics where
// the publisher never sees consumer errors.
type Publisher struct {
	handler ports.BroadcastHandler
	logger  *slog.Logger
}

func NewPublisher(handler ports.BroadcastHandler, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{handler: handler, logger: logger}
}

func (p *Publisher) PublishReportShared(ctx context.Context, event domain.ReportSharedEvent) error {
	if err := p.handler.HandleReportShared(context.WithoutCancel(ctx), event); err != nil {
		p.logger.Error("broadcast_failed", "report_id", event.ReportID, "error", err)
	}
	return nil
}

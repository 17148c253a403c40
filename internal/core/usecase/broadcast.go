package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/medguard/internal/core/domain"
)

type recipientLister interface {
	ListRecipients(ctx context.Context) ([]string, error)
}

// BroadcastUseCase fans a shared report out to every inbox except the sharer's.
type BroadcastUseCase struct {
	recipients recipientLister
	notifier   Notifier
}

func NewBroadcastUseCase(recipients recipientLister, notifier Notifier) *BroadcastUseCase {
	return &BroadcastUseCase{recipients: recipients, notifier: notifier}
}

func (uc *BroadcastUseCase) HandleReportShared(ctx context.Context, event domain.ReportSharedEvent) error {
	if event.ReportID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "handle report shared", errors.New("report id is required"))
	}
	users, err := uc.recipients.ListRecipients(ctx)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}

	kind, title, message := broadcastMessage(event)
	var errs []error
	for _, userID := range users {
		if userID == event.SharedBy {
			continue
		}
		if err := uc.notifier.Push(ctx, userID, kind, title, message); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}

func broadcastMessage(event domain.ReportSharedEvent) (domain.NotificationType, string, string) {
	sharer := event.SharedByName
	if sharer == "" {
		sharer = "A network member"
	}
	if event.Severity.Escalated() {
		return domain.NotificationCritical,
			"Active Security Alert",
			fmt.Sprintf("%s flagged a %s incident at %s involving patient %s.", sharer, event.Severity, event.ClinicID, event.PatientInitials)
	}
	return domain.NotificationSystem,
		"Network Broadcast",
		fmt.Sprintf("%s shared a %s safety report from %s.", sharer, event.Severity, event.ClinicID)
}

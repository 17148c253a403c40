package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

const (
	minPatientAge = 1
	maxPatientAge = 130
)

// ReportObserver records report submission telemetry.
type ReportObserver interface {
	ObserveReportSubmitted(severity string)
	ObserveReportShared(severity string)
}

type noopReportObserver struct{}

func (noopReportObserver) ObserveReportSubmitted(string) {}
func (noopReportObserver) ObserveReportShared(string)    {}

type ReportUseCase struct {
	repo      ports.ReportRepository
	notifier  Notifier
	publisher ports.EventPublisher
	exporter  ports.ReportExporter
	reference domain.Reference
	observer  ReportObserver
	logger    *slog.Logger
	now       func() time.Time
}

func NewReportUseCase(
	repo ports.ReportRepository,
	notifier Notifier,
	publisher ports.EventPublisher,
	exporter ports.ReportExporter,
	reference domain.Reference,
	observer ReportObserver,
) *ReportUseCase {
	if observer == nil {
		observer = noopReportObserver{}
	}
	return &ReportUseCase{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		exporter:  exporter,
		reference: reference,
		observer:  observer,
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates the form and persists it as a report. summary is the
// advisory analysis summary the form held at submission time; an empty value
// falls back to the network verification notice.
func (uc *ReportUseCase) Submit(
	ctx context.Context,
	user domain.User,
	submission domain.ReportSubmission,
	summary string,
) (*domain.Report, error) {
	now := uc.now()
	normalized, severity, err := uc.validate(submission, now)
	if err != nil {
		return nil, err
	}

	doctor := strings.TrimSpace(normalized.DoctorName)
	if normalized.Anonymous {
		doctor = domain.AnonymousDoctorName
	}
	if strings.TrimSpace(summary) == "" {
		summary = domain.FallbackReportSummary
	}

	report := &domain.Report{
		ID:              uuid.NewString(),
		PatientInitials: domain.PatientInitials(normalized.PatientName),
		IncidentDate:    normalized.IncidentDate,
		BehaviorType:    domain.DefaultBehaviorType,
		Severity:        severity,
		Description:     normalized.Description,
		DoctorName:      doctor,
		ClinicID:        strings.TrimSpace(normalized.ClinicID),
		AISummary:       summary,
		State:           normalized.State,
		City:            strings.TrimSpace(normalized.City),
		ReporterID:      user.ID,
		CreatedAt:       now,
	}
	if err := uc.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	uc.observer.ObserveReportSubmitted(string(severity))

	if uc.notifier != nil && user.ID != "" {
		message := fmt.Sprintf("Safety report for patient %s has been synced.", report.PatientInitials)
		if err := uc.notifier.Push(ctx, user.ID, domain.NotificationSystem, "Report Logged", message); err != nil {
			uc.logger.Warn("report_notification_failed", "report_id", report.ID, "error", err)
		}
	}
	return report, nil
}

func (uc *ReportUseCase) validate(in domain.ReportSubmission, now time.Time) (domain.ReportSubmission, domain.Severity, error) {
	out := in
	var problems []error

	if strings.TrimSpace(in.PatientName) == "" {
		problems = append(problems, errors.New("patient name is required"))
	}
	if in.PatientAge < minPatientAge || in.PatientAge > maxPatientAge {
		problems = append(problems, fmt.Errorf("patient age must be between %d and %d", minPatientAge, maxPatientAge))
	}
	out.State = strings.TrimSpace(in.State)
	if !uc.reference.HasState(out.State) {
		problems = append(problems, fmt.Errorf("unknown state %q", in.State))
	}
	if strings.TrimSpace(in.City) == "" {
		problems = append(problems, errors.New("city is required"))
	}
	if strings.TrimSpace(in.Description) == "" {
		problems = append(problems, errors.New("description is required"))
	}
	if strings.TrimSpace(in.ClinicID) == "" {
		problems = append(problems, errors.New("hospital name is required"))
	}
	if !in.Anonymous && strings.TrimSpace(in.DoctorName) == "" {
		problems = append(problems, errors.New("doctor name is required unless reporting anonymously"))
	}

	severity := domain.SeverityLow
	if strings.TrimSpace(in.Severity) != "" {
		parsed, ok := domain.ParseSeverity(in.Severity)
		if !ok {
			problems = append(problems, fmt.Errorf("unknown severity %q", in.Severity))
		}
		severity = parsed
	}

	out.IncidentDate = strings.TrimSpace(in.IncidentDate)
	if out.IncidentDate == "" {
		out.IncidentDate = now.Format(domain.IncidentDateLayout)
	} else if _, err := time.Parse(domain.IncidentDateLayout, out.IncidentDate); err != nil {
		problems = append(problems, errors.New("incident date must be YYYY-MM-DD"))
	}

	if strings.TrimSpace(out.Contact) == "" {
		out.Contact = domain.DefaultContact
	}

	if len(problems) > 0 {
		return out, "", domain.WrapError(domain.ErrInvalidInput, "validate report", errors.Join(problems...))
	}
	return out, severity, nil
}

func (uc *ReportUseCase) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	reports, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (uc *ReportUseCase) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	report, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// Share broadcasts a report to the rest of the network.
func (uc *ReportUseCase) Share(ctx context.Context, user domain.User, id string) error {
	report, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get report: %w", err)
	}
	event := domain.ReportSharedEvent{
		ReportID:        report.ID,
		Severity:        report.Severity,
		PatientInitials: report.PatientInitials,
		ClinicID:        report.ClinicID,
		SharedBy:        user.ID,
		SharedByName:    user.Name,
		SharedAt:        uc.now(),
	}
	if err := uc.publisher.PublishReportShared(ctx, event); err != nil {
		return fmt.Errorf("publish report shared: %w", err)
	}
	uc.observer.ObserveReportShared(string(report.Severity))
	return nil
}

func (uc *ReportUseCase) Export(ctx context.Context, w io.Writer) error {
	reports, err := uc.repo.List(ctx, domain.ReportFilter{})
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	if err := uc.exporter.WriteReports(w, reports); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	return nil
}

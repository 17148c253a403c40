package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/medguard/internal/core/domain"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, patient_initials, incident_date, behavior_type, severity, description, doctor_name, clinic_id, ai_summary, state, city, reporter_id, created_at`

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO reports (`+reportColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`,
		report.ID, report.PatientInitials, report.IncidentDate, report.BehaviorType, string(report.Severity),
		report.Description, report.DoctorName, report.ClinicID, report.AISummary, report.State, report.City,
		report.ReporterID, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+reportColumns+`
FROM reports
WHERE id = $1
`, id)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get report", fmt.Errorf("report %s", id))
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}
	return &report, nil
}

func (r *ReportRepository) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+reportColumns+`
FROM reports
WHERE ($1 = '' OR severity = $1)
ORDER BY created_at DESC
`, string(filter.Severity))
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

func (r *ReportRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

func scanReport(row rowScanner) (domain.Report, error) {
	var report domain.Report
	var severity string
	err := row.Scan(
		&report.ID,
		&report.PatientInitials,
		&report.IncidentDate,
		&report.BehaviorType,
		&severity,
		&report.Description,
		&report.DoctorName,
		&report.ClinicID,
		&report.AISummary,
		&report.State,
		&report.City,
		&report.ReporterID,
		&report.CreatedAt,
	)
	if err != nil {
		return domain.Report{}, err
	}
	report.Severity = domain.Severity(severity)
	return report, nil
}

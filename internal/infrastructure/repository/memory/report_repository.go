// Package memory keeps the service state in process, for single-node
// deployments and local development.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kirillkom/medguard/internal/core/domain"
)

type ReportRepository struct {
	mu      sync.RWMutex
	reports []domain.Report
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

func (r *ReportRepository) Create(_ context.Context, report *domain.Report) error {
	if report == nil || report.ID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "create report", errors.New("report id is required"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reports {
		if existing.ID == report.ID {
			return domain.WrapError(domain.ErrInvalidInput, "create report", fmt.Errorf("duplicate report id %s", report.ID))
		}
	}
	r.reports = append(r.reports, *report)
	return nil
}

func (r *ReportRepository) GetByID(_ context.Context, id string) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, report := range r.reports {
		if report.ID == id {
			cp := report
			return &cp, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get report", fmt.Errorf("report %s", id))
}

// List returns reports newest first. Reports created at the same instant keep
// reverse insertion order.
func (r *ReportRepository) List(_ context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Report, 0, len(r.reports))
	for i := len(r.reports) - 1; i >= 0; i-- {
		report := r.reports[i]
		if filter.Severity != "" && report.Severity != filter.Severity {
			continue
		}
		out = append(out, report)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ReportRepository) Count(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reports), nil
}

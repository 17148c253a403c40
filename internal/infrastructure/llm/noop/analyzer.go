// Package noop provides an analyzer for deployments without a classifier.
package noop

import (
	"context"
	"errors"

	"github.com/kirillkom/medguard/internal/core/domain"
)

var ErrDisabled = errors.New("incident analysis is disabled")

// Analyzer always fails, so report forms never show an analysis.
type Analyzer struct{}

func (Analyzer) Analyze(context.Context, string) (domain.IncidentAnalysis, error) {
	return domain.IncidentAnalysis{}, ErrDisabled
}

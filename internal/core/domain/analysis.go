package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// IncidentAnalysis is the advisory classification of an incident description.
type IncidentAnalysis struct {
	RiskLevel       string   `json:"riskLevel"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

const RecommendationCount = 3

// AnalysisState is the read-only view a report form has of its classifier bridge.
type AnalysisState struct {
	Analysis *IncidentAnalysis `json:"analysis"`
	Loading  bool              `json:"loading"`
	Revision uint64            `json:"revision"`
}

// Draft is an open report form owned by one practitioner.
type Draft struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"-"`
	Description string        `json:"description"`
	State       AnalysisState `json:"state"`
	OpenedAt    time.Time     `json:"opened_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Validate enforces the classifier response contract. RiskLevel is advisory and
// is not checked against the severity enum.
func (a IncidentAnalysis) Validate() error {
	if strings.TrimSpace(a.RiskLevel) == "" {
		return errors.New("riskLevel is required")
	}
	if strings.TrimSpace(a.Summary) == "" {
		return errors.New("summary is required")
	}
	if len(a.Recommendations) != RecommendationCount {
		return fmt.Errorf("expected %d recommendations, got %d", RecommendationCount, len(a.Recommendations))
	}
	for i, rec := range a.Recommendations {
		if strings.TrimSpace(rec) == "" {
			return fmt.Errorf("recommendation %d is empty", i+1)
		}
	}
	return nil
}

func (a IncidentAnalysis) Clone() IncidentAnalysis {
	out := a
	out.Recommendations = append([]string(nil), a.Recommendations...)
	return out
}

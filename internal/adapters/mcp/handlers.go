package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

type Handlers struct {
	analyzer ports.IncidentAnalyzer
	reports  ReportLister
}

type reportSummary struct {
	ID              string          `json:"id"`
	PatientInitials string          `json:"patient_initials"`
	IncidentDate    string          `json:"incident_date"`
	Severity        domain.Severity `json:"severity"`
	ClinicID        string          `json:"clinic_id"`
	AISummary       string          `json:"ai_summary,omitempty"`
	Description     string          `json:"description"`
}

// AnalyzeIncident runs one classification. Unlike a report form there is no
// debounce here; the caller already has the final text.
func (h *Handlers) AnalyzeIncident(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("description argument is required and must be a string"), nil
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return mcp.NewToolResultError("description must not be empty"), nil
	}
	if h.analyzer == nil {
		return mcp.NewToolResultError("incident analyzer is not configured"), nil
	}

	analysis, err := h.analyzer.Analyze(ctx, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(analysis)
}

func (h *Handlers) ListReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filter domain.ReportFilter
	if raw := request.GetString("severity", ""); raw != "" {
		severity, ok := domain.ParseSeverity(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown severity %q", raw)), nil
		}
		filter.Severity = severity
	}
	limit := request.GetInt("limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	reports, err := h.reports.List(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reports: %v", err)), nil
	}
	if len(reports) > limit {
		reports = reports[:limit]
	}

	items := make([]reportSummary, 0, len(reports))
	for _, r := range reports {
		items = append(items, reportSummary{
			ID:              r.ID,
			PatientInitials: r.PatientInitials,
			IncidentDate:    r.IncidentDate,
			Severity:        r.Severity,
			ClinicID:        r.ClinicID,
			AISummary:       r.AISummary,
			Description:     clip(r.Description, 280),
		})
	}
	return jsonResult(map[string]any{"reports": items, "count": len(items)})
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func clip(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxRunes]) + "…"
}

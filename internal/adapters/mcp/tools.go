// Package mcpadapter exposes incident classification and the safety logs as
// Model Context Protocol tools.
package mcpadapter

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

const (
	ServerName = "MedGuard Safety Network"

	defaultListLimit = 20
	maxListLimit     = 200
)

// ReportLister is the read side of the safety logs.
type ReportLister interface {
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error)
}

// NewServer builds an MCP server with every MedGuard tool registered.
func NewServer(version string, analyzer ports.IncidentAnalyzer, reports ReportLister) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(ServerName, version)
	RegisterTools(server, analyzer, reports)
	return server
}

func RegisterTools(server *mcpserver.MCPServer, analyzer ports.IncidentAnalyzer, reports ReportLister) *Handlers {
	handlers := &Handlers{analyzer: analyzer, reports: reports}

	server.AddTool(mcp.Tool{
		Name:        "analyze_incident",
		Description: "Classify a workplace incident description from a healthcare setting. Returns riskLevel, a one-sentence summary and exactly 3 recommendations.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Free-text account of the incident",
				},
			},
			Required: []string{"description"},
		},
	}, handlers.AnalyzeIncident)

	server.AddTool(mcp.Tool{
		Name:        "list_reports",
		Description: "List safety reports from the network logs, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"severity": map[string]interface{}{
					"type":        "string",
					"description": "Optional severity filter",
					"enum":        []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"},
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of reports to return (default: 20)",
					"default":     defaultListLimit,
				},
			},
		},
	}, handlers.ListReports)

	return handlers
}

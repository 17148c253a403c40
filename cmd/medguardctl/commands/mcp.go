package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/medguard/internal/adapters/mcp"
)

func newMCPCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs MedGuard as an MCP (Model Context Protocol) server on stdio, giving LLM
agents the analyze_incident and list_reports tools.`,
		Example: `  # claude_desktop_config.json
  # {
  #   "mcpServers": {
  #     "medguard": {"command": "medguardctl", "args": ["mcp"]}
  #   }
  # }`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			analyzer, _, err := deps.Analyzer(ctx)
			if err != nil {
				return err
			}
			reports, release, err := deps.Reports(ctx)
			if err != nil {
				return err
			}
			defer release()

			server := mcpadapter.NewServer(buildVersion, analyzer, reports)
			return serveStdio(ctx, server)
		},
	}
}

func serveStdio(ctx context.Context, server *mcpserver.MCPServer) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

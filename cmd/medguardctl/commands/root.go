// Package commands implements the medguardctl command tree.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/medguard/internal/adapters/mcp"
	"github.com/kirillkom/medguard/internal/bootstrap"
	"github.com/kirillkom/medguard/internal/config"
	"github.com/kirillkom/medguard/internal/core/ports"
	"github.com/kirillkom/medguard/internal/observability/logging"
)

// Deps builds the collaborators commands need. Tests replace them with fakes.
type Deps struct {
	Analyzer func(ctx context.Context) (ports.IncidentAnalyzer, string, error)
	Reports  func(ctx context.Context) (mcpadapter.ReportLister, func(), error)
}

func defaultDeps(logger *slog.Logger) Deps {
	return Deps{
		Analyzer: func(ctx context.Context) (ports.IncidentAnalyzer, string, error) {
			return bootstrap.NewAnalyzer(ctx, config.Load(), logger)
		},
		Reports: func(ctx context.Context) (mcpadapter.ReportLister, func(), error) {
			return bootstrap.OpenReportStore(ctx, config.Load())
		},
	}
}

func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	logger := logging.NewLogger(os.Stderr, "medguardctl", os.Getenv("LOG_LEVEL"))
	return newRootCmd(defaultDeps(logger))
}

func newRootCmd(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "medguardctl",
		Short: "MedGuard incident classification tools",
		Long: `MedGuard incident classification tools

Classifies incident descriptions with the configured analyzer and serves the
safety network logs to LLM agents over the Model Context Protocol.

Configuration comes from the same environment variables (and optional .env
file) as the API server: ANALYZER_PROVIDER, GEMINI_API_KEY, OPENAI_API_KEY,
OLLAMA_URL, STORE_BACKEND, POSTGRES_DSN, SEED_PATH.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newClassifyCmd(deps))
	cmd.AddCommand(newMCPCmd(deps))
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// readInput returns the joined args, or stdin when the only arg is "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return strings.Join(args, " "), nil
}

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/medguard/internal/config"
	"github.com/kirillkom/medguard/internal/core/ports"
	"github.com/kirillkom/medguard/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/medguard/internal/infrastructure/llm/noop"
	"github.com/kirillkom/medguard/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/medguard/internal/infrastructure/llm/openai"
	"github.com/kirillkom/medguard/internal/infrastructure/resilience"
)

// resolveProvider validates ANALYZER_PROVIDER. A hosted provider without an
// API key degrades to "none": forms keep working, they just never get an analysis.
func resolveProvider(cfg config.Config, logger *slog.Logger) (string, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.AnalyzerProvider))
	switch provider {
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("analyzer_disabled", "provider", provider, "reason", "GEMINI_API_KEY is not set")
			return config.ProviderNone, nil
		}
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("analyzer_disabled", "provider", provider, "reason", "OPENAI_API_KEY is not set")
			return config.ProviderNone, nil
		}
	case config.ProviderOllama, config.ProviderNone:
	case "":
		return config.ProviderNone, nil
	default:
		return "", fmt.Errorf("unknown analyzer provider %q", cfg.AnalyzerProvider)
	}
	return provider, nil
}

func newAnalyzer(ctx context.Context, cfg config.Config, provider string, executor *resilience.Executor) (ports.IncidentAnalyzer, error) {
	switch provider {
	case config.ProviderGemini:
		analyzer, err := gemini.New(ctx, gemini.Config{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			BaseURL:  cfg.GeminiBaseURL,
			Executor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini analyzer: %w", err)
		}
		return analyzer, nil
	case config.ProviderOpenAI:
		analyzer, err := openai.New(openai.Config{
			APIKey:   cfg.OpenAIAPIKey,
			Model:    cfg.OpenAIModel,
			BaseURL:  cfg.OpenAIBaseURL,
			Executor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai analyzer: %w", err)
		}
		return analyzer, nil
	case config.ProviderOllama:
		return ollama.NewAnalyzer(ollama.NewWithExecutor(cfg.OllamaURL, cfg.OllamaModel, executor)), nil
	default:
		return noop.Analyzer{}, nil
	}
}

// NewAnalyzer builds the configured analyzer outside the API process, for
// one-shot tools. It reports the provider actually in use.
func NewAnalyzer(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.IncidentAnalyzer, string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	provider, err := resolveProvider(cfg, logger)
	if err != nil {
		return nil, "", err
	}
	executor := resilience.NewExecutor(cfg.Resilience(), resilience.WithLogger(logger))
	analyzer, err := newAnalyzer(ctx, cfg, provider, executor)
	if err != nil {
		return nil, "", err
	}
	return analyzer, provider, nil
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/infrastructure/llm/analysis"
	"github.com/kirillkom/medguard/internal/infrastructure/resilience"
)

const DefaultModel = "gemini-3-flash-preview"

type Config struct {
	APIKey   string
	Model    string
	BaseURL  string
	Executor *resilience.Executor
}

// Analyzer classifies incidents with the Gemini API using a JSON response schema.
type Analyzer struct {
	client   *genai.Client
	model    string
	executor *resilience.Executor
}

func New(ctx context.Context, cfg Config) (*Analyzer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Analyzer{client: client, model: model, executor: cfg.Executor}, nil
}

func (a *Analyzer) Analyze(ctx context.Context, description string) (domain.IncidentAnalysis, error) {
	raw, err := resilience.Do(ctx, a.executor, "gemini.generate", func(ctx context.Context) (string, error) {
		resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(analysis.Prompt(description)), generateConfig())
		if err != nil {
			return "", fmt.Errorf("gemini generate content: %w", err)
		}
		return resp.Text(), nil
	}, classifyGeminiError)
	if err != nil {
		return domain.IncidentAnalysis{}, resilience.WrapTemporary("gemini generate", err, classifyGeminiError)
	}
	return analysis.Parse(raw)
}

func generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"riskLevel": {
				Type:        genai.TypeString,
				Description: "LOW, MEDIUM, HIGH or CRITICAL",
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "One sentence summary of the incident",
			},
			"recommendations": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Exactly three safety recommendations",
			},
		},
		Required: []string{"riskLevel", "summary", "recommendations"},
	}
}

func classifyGeminiError(err error) resilience.ErrorClassification {
	if class, ok := resilience.ClassifyCommon(err); ok {
		return class
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return resilience.ClassifyHTTPStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return resilience.ClassifyHTTPStatus(apiErrPtr.Code)
	}
	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/infrastructure/llm/analysis"
	"github.com/kirillkom/medguard/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string) *Client {
	return NewWithExecutor(baseURL, model, nil)
}

func NewWithExecutor(baseURL, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

// Analyzer classifies incident descriptions with a local Ollama model.
type Analyzer struct {
	client *Client
}

func NewAnalyzer(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

func (a *Analyzer) Analyze(ctx context.Context, description string) (domain.IncidentAnalysis, error) {
	raw, err := a.client.generateJSON(ctx, analysis.Prompt(description))
	if err != nil {
		return domain.IncidentAnalysis{}, err
	}
	return analysis.Parse(raw)
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		System:  analysis.SystemInstruction,
		Stream:  false,
		Format:  "json",
		Options: generateOptions{Temperature: 0.2, NumPredict: 512},
	}
	out, err := resilience.Do(ctx, c.executor, "ollama.generate", func(ctx context.Context) (generateResponse, error) {
		return c.generate(ctx, req)
	}, classifyOllamaError)
	if err != nil {
		return "", resilience.WrapTemporary("ollama generate", err, classifyOllamaError)
	}
	return strings.TrimSpace(out.Response), nil
}

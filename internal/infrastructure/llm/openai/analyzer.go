package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/infrastructure/llm/analysis"
	"github.com/kirillkom/medguard/internal/infrastructure/resilience"
)

const DefaultModel = "gpt-4o-mini"

type Config struct {
	APIKey   string
	Model    string
	BaseURL  string
	Executor *resilience.Executor
}

// ChatClient is the subset of the go-openai client the analyzer needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Analyzer classifies incidents through any OpenAI-compatible chat endpoint.
type Analyzer struct {
	client   ChatClient
	model    string
	executor *resilience.Executor
}

func New(cfg Config) (*Analyzer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	return NewWithClient(openai.NewClientWithConfig(clientCfg), cfg.Model, cfg.Executor), nil
}

func NewWithClient(client ChatClient, model string, executor *resilience.Executor) *Analyzer {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Analyzer{client: client, model: model, executor: executor}
}

func (a *Analyzer) Analyze(ctx context.Context, description string) (domain.IncidentAnalysis, error) {
	raw, err := resilience.Do(ctx, a.executor, "openai.chat", func(ctx context.Context) (string, error) {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: analysis.SystemInstruction},
				{Role: openai.ChatMessageRoleUser, Content: analysis.Prompt(description)},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.2,
		})
		if err != nil {
			return "", fmt.Errorf("openai chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("openai chat completion: no choices returned")
		}
		return resp.Choices[0].Message.Content, nil
	}, classifyOpenAIError)
	if err != nil {
		return domain.IncidentAnalysis{}, resilience.WrapTemporary("openai chat", err, classifyOpenAIError)
	}
	return analysis.Parse(raw)
}

func classifyOpenAIError(err error) resilience.ErrorClassification {
	if class, ok := resilience.ClassifyCommon(err); ok {
		return class
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return resilience.ClassifyHTTPStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return resilience.ClassifyHTTPStatus(reqErr.HTTPStatusCode)
	}
	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

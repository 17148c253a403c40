package ollama

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/medguard/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

func classifyOllamaError(err error) resilience.ErrorClassification {
	if class, ok := resilience.ClassifyCommon(err); ok {
		return class
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.ClassifyHTTPStatus(statusErr.StatusCode)
	}
	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/kirillkom/medguard/internal/core/domain"
)

// ClassifyCommon handles the cases every adapter treats the same way. ok is
// false when the caller has to decide.
func ClassifyCommon(err error) (ErrorClassification, bool) {
	if err == nil {
		return ErrorClassification{}, true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassification{Retryable: false, RecordFailure: false}, true
	}
	if IsCircuitOpen(err) {
		return ErrorClassification{Retryable: true, RecordFailure: true}, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorClassification{Retryable: true, RecordFailure: true}, true
	}
	return ErrorClassification{}, false
}

// ClassifyHTTPStatus maps an upstream status code to retry and breaker behaviour.
func ClassifyHTTPStatus(statusCode int) ErrorClassification {
	if IsRetryableHTTPStatus(statusCode) {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return ErrorClassification{Retryable: false, RecordFailure: false}
}

func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// WrapTemporary marks retryable failures as domain.ErrTemporary.
func WrapTemporary(operation string, err error, classifier ErrorClassifier) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifier == nil {
		classifier = defaultClassifier
	}
	if classifier(err).Retryable || IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

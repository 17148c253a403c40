package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/medguard/internal/config"
	"github.com/kirillkom/medguard/internal/core/domain"
)

type authFake struct{}

func (authFake) Login(context.Context, domain.LoginRequest) (*domain.Session, *domain.User, error) {
	return nil, nil, domain.WrapError(domain.ErrInvalidInput, "login", errors.New("email and password are required"))
}

func (authFake) Signup(context.Context, domain.SignupRequest) (*domain.Session, *domain.User, error) {
	return nil, nil, errors.New("not used")
}

func (authFake) Logout(context.Context, string) error { return nil }

func (authFake) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if token != "valid" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", errors.New("unknown session"))
	}
	return &domain.User{ID: "u1", Name: "Dr. Test"}, nil
}

type reportsErrFake struct {
	err error
}

func (f reportsErrFake) Submit(context.Context, domain.User, domain.ReportSubmission, string) (*domain.Report, error) {
	return nil, f.err
}

func (f reportsErrFake) List(context.Context, domain.ReportFilter) ([]domain.Report, error) {
	return nil, f.err
}

func (f reportsErrFake) GetByID(context.Context, string) (*domain.Report, error) {
	return nil, f.err
}

func (f reportsErrFake) Share(context.Context, domain.User, string) error { return f.err }

func (f reportsErrFake) Export(context.Context, io.Writer) error { return f.err }

func newErrRouter(err error) http.Handler {
	return NewRouter(config.Config{}, Services{
		Auth:    authFake{},
		Reports: reportsErrFake{err: err},
	}).Handler()
}

func serve(handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestSubmitReportMapsInvalidInputTo400(t *testing.T) {
	handler := newErrRouter(domain.WrapError(domain.ErrInvalidInput, "validate report", errors.New("city is required")))

	res := serve(handler, http.MethodPost, "/v1/reports", "valid", `{"patient_name":"x"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "city is required") {
		t.Fatalf("expected validation message, got %s", res.Body.String())
	}
}

func TestGetReportReturns404ForNotFound(t *testing.T) {
	handler := newErrRouter(domain.WrapError(domain.ErrNotFound, "get report", errors.New("id=missing")))

	res := serve(handler, http.MethodGet, "/v1/reports/missing", "valid", "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestShareReportMapsTemporaryTo503(t *testing.T) {
	handler := newErrRouter(domain.WrapError(domain.ErrTemporary, "publish", errors.New("nats: no servers available")))

	res := serve(handler, http.MethodPost, "/v1/reports/r1/share", "valid", "")
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestUnexpectedErrorsHideDetails(t *testing.T) {
	handler := newErrRouter(errors.New("connection reset by peer"))

	res := serve(handler, http.MethodGet, "/v1/reports", "valid", "")
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "connection reset") {
		t.Fatalf("internal error leaked to client: %s", res.Body.String())
	}
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	handler := newErrRouter(nil)

	if res := serve(handler, http.MethodGet, "/v1/reports", "", ""); res.Code != http.StatusUnauthorized {
		t.Fatalf("missing token expected 401, got %d", res.Code)
	}
	if res := serve(handler, http.MethodGet, "/v1/reports", "stale", ""); res.Code != http.StatusUnauthorized {
		t.Fatalf("unknown token expected 401, got %d", res.Code)
	}
}

func TestLoginMapsInvalidInputTo400(t *testing.T) {
	res := serve(newErrRouter(nil), http.MethodPost, "/v1/auth/login", "", `{}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestMalformedJSONReturns400(t *testing.T) {
	res := serve(newErrRouter(nil), http.MethodPost, "/v1/reports", "valid", `{"patient_name":`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUnknownSeverityFilterReturns400(t *testing.T) {
	res := serve(newErrRouter(nil), http.MethodGet, "/v1/reports?severity=SEVERE", "valid", "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	res := httptest.NewRecorder()
	newErrRouter(nil).ServeHTTP(res, req)

	if got := res.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

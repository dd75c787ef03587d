package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	authsvc "github.com/kybernushq/kybernus-backend/internal/auth"
	"github.com/kybernushq/kybernus-backend/internal/checkout"
	"github.com/kybernushq/kybernus-backend/internal/licenses"
	"github.com/kybernushq/kybernus-backend/pkg/config"
	"github.com/kybernushq/kybernus-backend/pkg/enums"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubLicenses struct{}

func (stubLicenses) Validate(ctx context.Context, licenseKey string) (licenses.ValidationResult, error) {
	return licenses.ValidationResult{Valid: true, Status: enums.LicenseStatusProActive, Tier: enums.TierPro}, nil
}

func (stubLicenses) Consume(ctx context.Context, licenseKey string) (licenses.ConsumptionResult, error) {
	return licenses.ConsumptionResult{Authorized: true}, nil
}

type stubAuth struct{}

func (stubAuth) Register(ctx context.Context, dto authsvc.RegisterDTO) (*authsvc.RegisterResult, error) {
	return &authsvc.RegisterResult{LicenseKey: "kyb_stub"}, nil
}

func (stubAuth) Login(ctx context.Context, dto authsvc.LoginDTO) (*authsvc.LoginResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}

func (stubAuth) ForgotPassword(ctx context.Context, address string) (authsvc.GenericMessage, error) {
	return authsvc.GenericMessage{Message: "ok"}, nil
}

func (stubAuth) ResetPassword(ctx context.Context, dto authsvc.ResetPasswordDTO) (authsvc.GenericMessage, error) {
	return authsvc.GenericMessage{Message: "ok"}, nil
}

type stubAccount struct{}

func (stubAccount) ChangeEmail(ctx context.Context, userID uuid.UUID, accessID string, dto authsvc.ChangeEmailDTO) error {
	return nil
}

type stubCheckout struct{}

func (stubCheckout) CreateSession(ctx context.Context, dto checkout.CreateSessionDTO) (*checkout.CreateSessionResult, error) {
	return &checkout.CreateSessionResult{CheckoutURL: "https://stripe.test/cs", SessionID: "cs_1"}, nil
}

type stubSessions struct{}

func (stubSessions) Has(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func testRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "router-test-secret", Issuer: "kybernus-test", ExpirationMinutes: 5}

	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:       stubPinger{},
		Sessions: stubSessions{},
		Licenses: stubLicenses{},
		Auth:     stubAuth{},
		Account:  stubAccount{},
		Checkout: stubCheckout{},
	})
}

func TestRouterHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Kybernus-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestRouterValidateRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/licenses/validate", strings.NewReader(`{"license_key":"kyb_abcdefgh"}`))
	testRouter().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterRegisterRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"user@example.com","password":"correct horse"}`))
	testRouter().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterAccountRequiresAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/account/email", strings.NewReader(`{"email":"new@example.com"}`))
	testRouter().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

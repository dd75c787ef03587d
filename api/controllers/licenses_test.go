package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kybernushq/kybernus-backend/internal/licenses"
	"github.com/kybernushq/kybernus-backend/pkg/enums"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
)

type stubLicenseService struct {
	validateResult licenses.ValidationResult
	validateErr    error
	consumeResult  licenses.ConsumptionResult
	consumeErr     error
	lastKey        string
}

func (s *stubLicenseService) Validate(ctx context.Context, licenseKey string) (licenses.ValidationResult, error) {
	s.lastKey = licenseKey
	return s.validateResult, s.validateErr
}

func (s *stubLicenseService) Consume(ctx context.Context, licenseKey string) (licenses.ConsumptionResult, error) {
	s.lastKey = licenseKey
	return s.consumeResult, s.consumeErr
}

func decodeData(t *testing.T, body []byte, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestValidateLicenseValid(t *testing.T) {
	svc := &stubLicenseService{
		validateResult: licenses.ValidationResult{Valid: true, Status: enums.LicenseStatusProActive, Tier: enums.TierPro},
	}
	handler := ValidateLicense(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/licenses/validate", strings.NewReader(`{"license_key":"kyb_abcdefgh"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result licenses.ValidationResult
	decodeData(t, rec.Body.Bytes(), &result)
	if !result.Valid || result.Tier != enums.TierPro {
		t.Fatalf("unexpected result: %+v", result)
	}
	if svc.lastKey != "kyb_abcdefgh" {
		t.Fatalf("service got wrong key: %q", svc.lastKey)
	}
}

func TestValidateLicenseInvalidAnswers401(t *testing.T) {
	svc := &stubLicenseService{
		validateResult: licenses.ValidationResult{Valid: false, Status: enums.LicenseStatusTrialExpired, Tier: enums.TierTrial, Message: "trial period has expired"},
	}
	handler := ValidateLicense(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/licenses/validate", strings.NewReader(`{"license_key":"kyb_abcdefgh"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var result licenses.ValidationResult
	decodeData(t, rec.Body.Bytes(), &result)
	if result.Message == "" {
		t.Fatal("invalid result should carry a message")
	}
}

func TestValidateLicenseTrimsInput(t *testing.T) {
	svc := &stubLicenseService{
		validateResult: licenses.ValidationResult{Valid: true, Status: enums.LicenseStatusProActive, Tier: enums.TierPro},
	}
	handler := ValidateLicense(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/licenses/validate", strings.NewReader(`{"license_key":"  kyb_abcdefgh  ","machine_id":"  mach-01  "}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastKey != "kyb_abcdefgh" {
		t.Fatalf("service should get the trimmed key, got %q", svc.lastKey)
	}
}

func TestConsumeCreditTrimsKey(t *testing.T) {
	usage, remaining, limit := 1, 2, 3
	svc := &stubLicenseService{
		consumeResult: licenses.ConsumptionResult{Authorized: true, Usage: &usage, Remaining: &remaining, Limit: &limit},
	}
	handler := ConsumeCredit(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/licenses/consume", strings.NewReader(`{"license_key":" kyb_abcdefgh "}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastKey != "kyb_abcdefgh" {
		t.Fatalf("service should get the trimmed key, got %q", svc.lastKey)
	}
}

func TestValidateLicenseRejectsBadBody(t *testing.T) {
	handler := ValidateLicense(&stubLicenseService{}, nil)

	cases := []string{
		`{}`,
		`{"license_key":"x"}`,
		`{"license_key":"kyb_abcdefgh","surprise":true}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/licenses/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q should be rejected with 400, got %d", body, rec.Code)
		}
	}
}

func TestValidateLicenseServiceError(t *testing.T) {
	svc := &stubLicenseService{validateErr: pkgerrors.New(pkgerrors.CodeDependency, "redis down")}
	handler := ValidateLicense(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/licenses/validate", strings.NewReader(`{"license_key":"kyb_abcdefgh"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestConsumeCreditGranted(t *testing.T) {
	usage, remaining, limit := 2, 1, 3
	svc := &stubLicenseService{
		consumeResult: licenses.ConsumptionResult{Authorized: true, Usage: &usage, Remaining: &remaining, Limit: &limit},
	}
	handler := ConsumeCredit(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/licenses/consume", strings.NewReader(`{"license_key":"kyb_abcdefgh"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result licenses.ConsumptionResult
	decodeData(t, rec.Body.Bytes(), &result)
	if !result.Authorized || *result.Remaining != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestConsumeCreditDeniedAnswers403(t *testing.T) {
	svc := &stubLicenseService{
		consumeResult: licenses.ConsumptionResult{Authorized: false, Reason: "project limit reached"},
	}
	handler := ConsumeCredit(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/licenses/consume", strings.NewReader(`{"license_key":"kyb_abcdefgh"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

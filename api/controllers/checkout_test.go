package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	checkoutsvc "github.com/kybernushq/kybernus-backend/internal/checkout"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
)

type stubCheckoutService struct {
	result  *checkoutsvc.CreateSessionResult
	err     error
	lastDTO checkoutsvc.CreateSessionDTO
}

func (s *stubCheckoutService) CreateSession(ctx context.Context, dto checkoutsvc.CreateSessionDTO) (*checkoutsvc.CreateSessionResult, error) {
	s.lastDTO = dto
	return s.result, s.err
}

func TestCreateCheckoutSessionOK(t *testing.T) {
	svc := &stubCheckoutService{
		result: &checkoutsvc.CreateSessionResult{
			CheckoutURL: "https://checkout.stripe.com/c/pay/cs_test",
			SessionID:   "cs_test",
		},
	}
	handler := CreateCheckoutSession(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout",
		strings.NewReader(`{"license_key":"kyb_abcdefgh","tier":"PRO"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result checkoutsvc.CreateSessionResult
	decodeData(t, rec.Body.Bytes(), &result)
	if result.SessionID != "cs_test" {
		t.Fatalf("unexpected session id %q", result.SessionID)
	}
	if svc.lastDTO.LicenseKey != "kyb_abcdefgh" {
		t.Fatalf("license key not forwarded: %q", svc.lastDTO.LicenseKey)
	}
}

func TestCreateCheckoutSessionBadBody(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := CreateCheckoutSession(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"tier":`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateCheckoutSessionUnknownKey(t *testing.T) {
	svc := &stubCheckoutService{
		err: pkgerrors.New(pkgerrors.CodeNotFound, "license key not found"),
	}
	handler := CreateCheckoutSession(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout",
		strings.NewReader(`{"license_key":"kyb_missing1","tier":"PRO"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateCheckoutSessionNilService(t *testing.T) {
	handler := CreateCheckoutSession(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout",
		strings.NewReader(`{"license_key":"kyb_abcdefgh","tier":"PRO"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kybernushq/kybernus-backend/api/middleware"
	authsvc "github.com/kybernushq/kybernus-backend/internal/auth"
)

type stubAccountService struct {
	err          error
	lastUserID   uuid.UUID
	lastAccessID string
	lastEmail    string
}

func (s *stubAccountService) ChangeEmail(ctx context.Context, userID uuid.UUID, accessID string, dto authsvc.ChangeEmailDTO) error {
	s.lastUserID = userID
	s.lastAccessID = accessID
	s.lastEmail = dto.Email
	return s.err
}

func authedRequest(body string, userID uuid.UUID, accessID string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/api/account/email", strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithAccessID(ctx, accessID)
	return req.WithContext(ctx)
}

func TestChangeEmailOK(t *testing.T) {
	svc := &stubAccountService{}
	handler := ChangeEmail(svc, nil)

	userID := uuid.New()
	req := authedRequest(`{"email":"new@example.com"}`, userID, "access-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUserID != userID {
		t.Fatalf("user id not forwarded")
	}
	if svc.lastAccessID != "access-1" {
		t.Fatalf("access id not forwarded: %q", svc.lastAccessID)
	}
	if svc.lastEmail != "new@example.com" {
		t.Fatalf("email not forwarded: %q", svc.lastEmail)
	}
}

func TestChangeEmailMissingIdentity(t *testing.T) {
	svc := &stubAccountService{}
	handler := ChangeEmail(svc, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/account/email",
		strings.NewReader(`{"email":"new@example.com"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without context identity, got %d", rec.Code)
	}
}

func TestChangeEmailMissingAccessID(t *testing.T) {
	svc := &stubAccountService{}
	handler := ChangeEmail(svc, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/account/email",
		strings.NewReader(`{"email":"new@example.com"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session id, got %d", rec.Code)
	}
}

func TestChangeEmailInvalidBody(t *testing.T) {
	svc := &stubAccountService{}
	handler := ChangeEmail(svc, nil)

	req := authedRequest(`{"email":"not-an-email"}`, uuid.New(), "access-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/kybernushq/kybernus-backend/api/middleware"
	"github.com/kybernushq/kybernus-backend/api/responses"
	"github.com/kybernushq/kybernus-backend/api/validators"
	authsvc "github.com/kybernushq/kybernus-backend/internal/auth"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
)

type AccountService interface {
	ChangeEmail(ctx context.Context, userID uuid.UUID, accessID string, dto authsvc.ChangeEmailDTO) error
}

// ChangeEmail updates the authenticated account's address. The session behind
// the bearer token is revoked on success.
func ChangeEmail(svc AccountService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		var payload authsvc.ChangeEmailDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ChangeEmail(r.Context(), userID, accessID, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "email updated; please log in again"})
	}
}

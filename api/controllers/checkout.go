package controllers

import (
	"context"
	"net/http"

	"github.com/kybernushq/kybernus-backend/api/responses"
	"github.com/kybernushq/kybernus-backend/api/validators"
	checkoutsvc "github.com/kybernushq/kybernus-backend/internal/checkout"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
)

type CheckoutService interface {
	CreateSession(ctx context.Context, dto checkoutsvc.CreateSessionDTO) (*checkoutsvc.CreateSessionResult, error)
}

// CreateCheckoutSession opens a Stripe checkout session for a PRO upgrade.
func CreateCheckoutSession(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutsvc.CreateSessionDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateSession(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

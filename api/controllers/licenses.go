package controllers

import (
	"context"
	"net/http"

	"github.com/kybernushq/kybernus-backend/api/responses"
	"github.com/kybernushq/kybernus-backend/api/validators"
	"github.com/kybernushq/kybernus-backend/internal/licenses"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
)

type LicenseService interface {
	Validate(ctx context.Context, licenseKey string) (licenses.ValidationResult, error)
	Consume(ctx context.Context, licenseKey string) (licenses.ConsumptionResult, error)
}

type validateLicenseRequest struct {
	LicenseKey string `json:"license_key" validate:"required,min=8"`
	MachineID  string `json:"machine_id" validate:"omitempty,max=128"`
}

type consumeCreditRequest struct {
	LicenseKey string `json:"license_key" validate:"required,min=8"`
}

// ValidateLicense resolves the current state of a key. The result body is the
// same shape for both outcomes; an invalid license answers 401.
func ValidateLicense(svc LicenseService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		var payload validateLicenseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		licenseKey := validators.SanitizeString(payload.LicenseKey, 0)
		machineID := validators.SanitizeString(payload.MachineID, 128)

		ctx := r.Context()
		if machineID != "" && logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"machine_id": machineID})
		}

		result, err := svc.Validate(ctx, licenseKey)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status := http.StatusOK
		if !result.Valid {
			status = http.StatusUnauthorized
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// ConsumeCredit spends one project credit. Denials answer 403 with the same
// body shape as grants.
func ConsumeCredit(svc LicenseService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		var payload consumeCreditRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Consume(r.Context(), validators.SanitizeString(payload.LicenseKey, 0))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if !result.Authorized {
			status = http.StatusForbidden
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

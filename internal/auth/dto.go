package auth

import (
	"time"

	"github.com/kybernushq/kybernus-backend/pkg/enums"
)

type RegisterDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// RegisterResult is the license summary handed back on account creation.
type RegisterResult struct {
	LicenseKey     string              `json:"license_key"`
	Tier           enums.Tier          `json:"tier"`
	Status         enums.LicenseStatus `json:"status"`
	TrialStartedAt time.Time           `json:"trial_started_at"`
	TrialEndsAt    time.Time           `json:"trial_ends_at"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type ChangeEmailDTO struct {
	Email string `json:"email" validate:"required,email"`
}

// GenericMessage is the fixed response body for the password flows. The same
// shape goes out whether or not the target account exists.
type GenericMessage struct {
	Message string `json:"message"`
}

package checkout

// CreateSessionDTO identifies the account upgrading to a paid tier. At least
// one of license_key and email must be present.
type CreateSessionDTO struct {
	LicenseKey string `json:"license_key" validate:"omitempty,min=8"`
	Tier       string `json:"tier" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
}

type CreateSessionResult struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

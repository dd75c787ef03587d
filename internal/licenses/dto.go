package licenses

import (
	"time"

	"github.com/kybernushq/kybernus-backend/pkg/enums"
)

// ValidationResult is the externally visible state of a license at a point in
// time. Usage/Limit are present only for capped tiers; Expiration only for
// trials.
type ValidationResult struct {
	Valid      bool                `json:"valid"`
	Status     enums.LicenseStatus `json:"status,omitempty"`
	Tier       enums.Tier          `json:"tier,omitempty"`
	Usage      *int                `json:"usage,omitempty"`
	Limit      *int                `json:"limit,omitempty"`
	Expiration *time.Time          `json:"expiration,omitempty"`
	Message    string              `json:"message,omitempty"`
}

// ConsumptionResult reports the outcome of a project-credit consumption
// attempt. The counter fields are omitted for unlimited tiers.
type ConsumptionResult struct {
	Authorized bool   `json:"authorized"`
	Usage      *int   `json:"usage,omitempty"`
	Remaining  *int   `json:"remaining,omitempty"`
	Limit      *int   `json:"limit,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func intPtr(v int) *int {
	return &v
}

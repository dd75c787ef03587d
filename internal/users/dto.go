package users

import (
	"time"

	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	"github.com/kybernushq/kybernus-backend/pkg/enums"
)

// CreateUserDTO carries the fields needed to persist a new license record.
type CreateUserDTO struct {
	Email          string
	LicenseKey     string
	PasswordHash   *string
	Tier           enums.Tier
	Status         enums.LicenseStatus
	TrialStartedAt *time.Time
	TrialEndsAt    *time.Time
	ProjectLimit   *int
}

// ToModel converts the DTO into the persisted shape.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:          d.Email,
		LicenseKey:     d.LicenseKey,
		PasswordHash:   d.PasswordHash,
		Tier:           d.Tier,
		Status:         d.Status,
		TrialStartedAt: d.TrialStartedAt,
		TrialEndsAt:    d.TrialEndsAt,
		ProjectLimit:   d.ProjectLimit,
	}
}

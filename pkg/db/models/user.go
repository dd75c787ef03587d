package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kybernushq/kybernus-backend/pkg/enums"
)

// User is the canonical license record. One account owns exactly one license
// key; commercial state (tier, status, trial window, usage counters) lives on
// the same row. Rows are never hard-deleted: cancellation is a status change.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LicenseKey   string     `gorm:"column:license_key;not null;uniqueIndex"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash *string    `gorm:"column:password_hash"`

	Tier   enums.Tier          `gorm:"column:tier;type:license_tier;not null;default:'TRIAL'"`
	Status enums.LicenseStatus `gorm:"column:status;type:license_status;not null;default:'TRIAL'"`

	TrialStartedAt *time.Time `gorm:"column:trial_started_at"`
	TrialEndsAt    *time.Time `gorm:"column:trial_ends_at"`

	ProjectUsage int  `gorm:"column:project_usage;not null;default:0"`
	ProjectLimit *int `gorm:"column:project_limit"`

	StripeCustomerID *string `gorm:"column:stripe_customer_id"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Unlimited reports whether the record has no project cap.
func (u *User) Unlimited() bool {
	return u.ProjectLimit == nil
}

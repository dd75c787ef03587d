package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken is a single-use credential for the password reset flow.
// Rows are deleted on successful use or when expiry is detected during lookup.
type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Token     string    `gorm:"column:token;not null;uniqueIndex"`
	Email     string    `gorm:"column:email;type:text;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Expired reports whether the token is past its deadline at the given instant.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kybernushq/kybernus-backend/internal/repo"
	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	"github.com/kybernushq/kybernus-backend/pkg/enums"
)

// Repository exposes user/license-record persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new license record and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the record matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLicenseKey retrieves the record matching the provided license key.
func (r *Repository) FindByLicenseKey(ctx context.Context, licenseKey string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("license_key = ?", licenseKey).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a record by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateEmail overwrites the record's email address.
func (r *Repository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("email", email).Error
}

// UpdatePasswordHash overwrites the record's password hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// SetPlan moves a record onto a new tier/status, clearing the project limit
// for unlimited tiers. Used by the Stripe webhook flow.
func (r *Repository) SetPlan(ctx context.Context, id uuid.UUID, tier enums.Tier, status enums.LicenseStatus, projectLimit *int) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"tier":          tier,
			"status":        status,
			"project_limit": projectLimit,
		}).Error
}

// SetStatus transitions the record's status only.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.LicenseStatus) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// SetStripeCustomerID links the record to a payment-provider customer.
func (r *Repository) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("stripe_customer_id", customerID).Error
}

// FindByStripeCustomerID retrieves the record linked to a provider customer.
func (r *Repository) FindByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("stripe_customer_id = ?", customerID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

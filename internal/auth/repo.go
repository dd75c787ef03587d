package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kybernushq/kybernus-backend/internal/repo"
	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
)

// ResetTokenRepository persists single-use password reset tokens.
type ResetTokenRepository struct {
	repo.Base
}

func NewResetTokenRepository(db *gorm.DB) *ResetTokenRepository {
	return &ResetTokenRepository{Base: repo.NewBase(db)}
}

func (r *ResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	if err := r.DB(ctx).Create(token).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reset token")
	}
	return nil
}

func (r *ResetTokenRepository) FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var record models.PasswordResetToken
	err := r.DB(ctx).Where("token = ?", token).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reset token not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find reset token")
	}
	return &record, nil
}

// Delete removes a token row. Deleting an already-deleted token is not an
// error; the single-use guarantee comes from the lookup failing next time.
func (r *ResetTokenRepository) Delete(ctx context.Context, token string) error {
	if err := r.DB(ctx).Where("token = ?", token).Delete(&models.PasswordResetToken{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete reset token")
	}
	return nil
}

// DeleteForEmail drops any outstanding tokens for an address. Issued before a
// new token is created so at most one token is live per account.
func (r *ResetTokenRepository) DeleteForEmail(ctx context.Context, email string) error {
	if err := r.DB(ctx).Where("email = ?", email).Delete(&models.PasswordResetToken{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete reset tokens for email")
	}
	return nil
}

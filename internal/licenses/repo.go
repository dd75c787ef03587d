package licenses

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kybernushq/kybernus-backend/internal/repo"
	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) FindByLicenseKey(ctx context.Context, key string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).Where("license_key = ?", key).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "license not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find license")
	}
	return &user, nil
}

// ConsumeCredit increments project_usage for the given key in a single
// conditional UPDATE. The WHERE clause carries the limit check, so two
// concurrent calls against the last remaining credit serialize inside the
// database and exactly one of them matches a row. Returns the record after
// the attempt and whether the credit was granted.
func (r *Repository) ConsumeCredit(ctx context.Context, key string) (*models.User, bool, error) {
	res := r.DB(ctx).Model(&models.User{}).
		Where("license_key = ? AND project_limit IS NOT NULL AND project_usage < project_limit", key).
		UpdateColumn("project_usage", gorm.Expr("project_usage + 1"))
	if res.Error != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "consume credit")
	}

	user, err := r.FindByLicenseKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return user, res.RowsAffected == 1, nil
}

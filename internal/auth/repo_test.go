package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
)

func openTokenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
		CREATE TABLE password_reset_tokens (
			id TEXT PRIMARY KEY,
			token TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME
		)`).Error)
	return db
}

func TestResetTokenLifecycle(t *testing.T) {
	db := openTokenDB(t)
	repo := NewResetTokenRepository(db)
	ctx := context.Background()

	record := &models.PasswordResetToken{
		ID:        uuid.New(),
		Token:     "tok-1",
		Email:     "dev@example.com",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, record))

	found, err := repo.FindByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "dev@example.com", found.Email)

	require.NoError(t, repo.Delete(ctx, "tok-1"))

	_, err = repo.FindByToken(ctx, "tok-1")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	// Deleting again is a no-op.
	require.NoError(t, repo.Delete(ctx, "tok-1"))
}

func TestResetTokenDeleteForEmail(t *testing.T) {
	db := openTokenDB(t)
	repo := NewResetTokenRepository(db)
	ctx := context.Background()

	for i, email := range []string{"a@example.com", "a@example.com", "b@example.com"} {
		require.NoError(t, repo.Create(ctx, &models.PasswordResetToken{
			ID:        uuid.New(),
			Token:     fmt.Sprintf("tok-%d", i),
			Email:     email,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}))
	}

	require.NoError(t, repo.DeleteForEmail(ctx, "a@example.com"))

	_, err := repo.FindByToken(ctx, "tok-0")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	_, err = repo.FindByToken(ctx, "tok-1")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	// Other accounts keep their tokens.
	kept, err := repo.FindByToken(ctx, "tok-2")
	require.NoError(t, err)
	require.Equal(t, "b@example.com", kept.Email)
}

func TestResetTokenExpiredHelper(t *testing.T) {
	now := time.Now().UTC()
	token := &models.PasswordResetToken{ExpiresAt: now}

	require.False(t, token.Expired(now))
	require.True(t, token.Expired(now.Add(time.Nanosecond)))
}

package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kybernushq/kybernus-backend/internal/users"
	pkgauth "github.com/kybernushq/kybernus-backend/pkg/auth"
	"github.com/kybernushq/kybernus-backend/pkg/config"
	"github.com/kybernushq/kybernus-backend/pkg/db"
	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	"github.com/kybernushq/kybernus-backend/pkg/email"
	"github.com/kybernushq/kybernus-backend/pkg/enums"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
	"github.com/kybernushq/kybernus-backend/pkg/security"
)

const genericPasswordMessage = "If an account exists for that address, a reset link has been sent."

type userStore interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type tokenStore interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForEmail(ctx context.Context, email string) error
}

type sessionControl interface {
	Start(ctx context.Context, accessID, userID string) error
	Revoke(ctx context.Context, accessID string) error
}

// Service implements registration, login, password recovery and the
// authenticated email change.
type Service struct {
	users    userStore
	tokens   tokenStore
	sessions sessionControl
	mailer   email.Sender
	log      *logger.Logger

	jwtCfg config.JWTConfig
	pwCfg  config.PasswordConfig
	licCfg config.LicenseConfig

	now           func() time.Time
	genLicenseKey func() (string, error)
	genResetToken func() (string, error)
}

func NewService(
	users userStore,
	tokens tokenStore,
	sessions sessionControl,
	mailer email.Sender,
	log *logger.Logger,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
	licCfg config.LicenseConfig,
) *Service {
	return &Service{
		users:         users,
		tokens:        tokens,
		sessions:      sessions,
		mailer:        mailer,
		log:           log,
		jwtCfg:        jwtCfg,
		pwCfg:         pwCfg,
		licCfg:        licCfg,
		now:           time.Now,
		genLicenseKey: security.GenerateLicenseKey,
		genResetToken: security.GenerateResetToken,
	}
}

// Register creates a trial license for a new account. Registering an address
// that already holds a license returns a conflict carrying the existing key,
// so a retried signup never mints a second record.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*RegisterResult, error) {
	address := normalizeEmail(dto.Email)

	hash, err := security.HashPassword(dto.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	key, err := s.genLicenseKey()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate license key")
	}

	started := s.now().UTC()
	ends := started.Add(s.licCfg.TrialDuration())
	limit := s.licCfg.TrialProjectLimit

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:          address,
		LicenseKey:     key,
		PasswordHash:   &hash,
		Tier:           enums.TierTrial,
		Status:         enums.LicenseStatusTrial,
		TrialStartedAt: &started,
		TrialEndsAt:    &ends,
		ProjectLimit:   &limit,
	})
	if db.IsUniqueViolation(err, "") {
		return nil, s.existingAccountConflict(ctx, address)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create license record")
	}

	// Delivery is best-effort: the key is already in the response body.
	if mailErr := s.mailer.SendLicenseKey(ctx, address, key, s.licCfg.TrialDays); mailErr != nil {
		s.log.Error(ctx, "auth.license email failed", mailErr)
	}

	s.log.Info(s.log.WithUserID(ctx, user.ID.String()), "auth.account registered")
	return &RegisterResult{
		LicenseKey:     user.LicenseKey,
		Tier:           user.Tier,
		Status:         user.Status,
		TrialStartedAt: started,
		TrialEndsAt:    ends,
	}, nil
}

func (s *Service) existingAccountConflict(ctx context.Context, address string) error {
	conflict := pkgerrors.New(pkgerrors.CodeConflict, "an account already exists for this email")
	existing, err := s.users.FindByEmail(ctx, address)
	if err != nil {
		return conflict
	}
	return conflict.WithDetails(map[string]string{"license_key": existing.LicenseKey})
}

// Login verifies credentials and opens a server-side session for the minted
// token's jti. The error is the same for unknown accounts and bad passwords.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	unauthorized := pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")

	user, err := s.users.FindByEmail(ctx, normalizeEmail(dto.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorized
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find account")
	}
	if user.PasswordHash == nil {
		return nil, unauthorized
	}

	match, err := security.VerifyPassword(dto.Password, *user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, unauthorized
	}

	now := s.now()
	jti := uuid.NewString()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := s.sessions.Start(ctx, jti, user.ID.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start session")
	}

	s.log.Info(s.log.WithUserID(ctx, user.ID.String()), "auth.login succeeded")
	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
	}, nil
}

// ForgotPassword issues a reset token when the account exists. The caller
// always receives the same generic message, so the outcome leaks nothing
// about account existence.
func (s *Service) ForgotPassword(ctx context.Context, address string) (GenericMessage, error) {
	generic := GenericMessage{Message: genericPasswordMessage}
	address = normalizeEmail(address)

	_, err := s.users.FindByEmail(ctx, address)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return generic, nil
	}
	if err != nil {
		s.log.Error(ctx, "auth.forgot-password lookup failed", err)
		return generic, nil
	}

	token, err := s.genResetToken()
	if err != nil {
		s.log.Error(ctx, "auth.reset token generation failed", err)
		return generic, nil
	}

	if err := s.tokens.DeleteForEmail(ctx, address); err != nil {
		s.log.Error(ctx, "auth.stale reset token cleanup failed", err)
	}
	record := &models.PasswordResetToken{
		ID:        uuid.New(),
		Token:     token,
		Email:     address,
		ExpiresAt: s.now().UTC().Add(s.licCfg.ResetTokenTTL),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		s.log.Error(ctx, "auth.reset token persist failed", err)
		return generic, nil
	}

	if err := s.mailer.SendPasswordReset(ctx, address, token); err != nil {
		s.log.Error(ctx, "auth.reset email failed", err)
	}
	return generic, nil
}

// ResetPassword consumes a reset token. The token row is deleted on success
// and on detected expiry, so a second use of the same token always fails.
func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) (GenericMessage, error) {
	invalid := pkgerrors.New(pkgerrors.CodeExpired, "reset token is invalid or expired")

	record, err := s.tokens.FindByToken(ctx, dto.Token)
	if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		return GenericMessage{}, invalid
	}
	if err != nil {
		return GenericMessage{}, err
	}

	if record.Expired(s.now()) {
		if delErr := s.tokens.Delete(ctx, dto.Token); delErr != nil {
			s.log.Error(ctx, "auth.expired reset token cleanup failed", delErr)
		}
		return GenericMessage{}, invalid
	}

	user, err := s.users.FindByEmail(ctx, record.Email)
	if err != nil {
		return GenericMessage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find account for reset")
	}

	hash, err := security.HashPassword(dto.Password, s.pwCfg)
	if err != nil {
		return GenericMessage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return GenericMessage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store password hash")
	}

	if err := s.tokens.Delete(ctx, dto.Token); err != nil {
		s.log.Error(ctx, "auth.used reset token cleanup failed", err)
	}

	s.log.Info(s.log.WithUserID(ctx, user.ID.String()), "auth.password reset")
	return GenericMessage{Message: "Your password has been updated."}, nil
}

// ChangeEmail updates the account address and revokes the calling session.
// The client has to log in again with the new address.
func (s *Service) ChangeEmail(ctx context.Context, userID uuid.UUID, accessID string, dto ChangeEmailDTO) error {
	address := normalizeEmail(dto.Email)

	if err := s.users.UpdateEmail(ctx, userID, address); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "an account already exists for this email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update email")
	}

	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		s.log.Error(ctx, "auth.session revoke failed", err)
	}

	s.log.Info(s.log.WithUserID(ctx, userID.String()), "auth.email changed")
	return nil
}

func normalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

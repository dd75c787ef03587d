package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/kybernushq/kybernus-backend/pkg/config"
	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	"github.com/kybernushq/kybernus-backend/pkg/enums"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
)

type accountStore interface {
	FindByLicenseKey(ctx context.Context, licenseKey string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service creates Stripe checkout sessions for PRO upgrades. The plan change
// itself happens later, when the completed-session webhook arrives.
type Service struct {
	accounts accountStore
	stripe   SessionClient
	cfg      config.StripeConfig
	log      *logger.Logger
}

func NewService(accounts accountStore, stripe SessionClient, cfg config.StripeConfig, log *logger.Logger) *Service {
	return &Service{accounts: accounts, stripe: stripe, cfg: cfg, log: log}
}

// CreateSession resolves the target account and opens a Stripe checkout
// session for it. A license key that resolves to no record is a 404; an email
// with no record is fine, the account is created when the webhook lands.
func (s *Service) CreateSession(ctx context.Context, dto CreateSessionDTO) (*CreateSessionResult, error) {
	tier, err := enums.ParseTier(strings.ToUpper(strings.TrimSpace(dto.Tier)))
	if err != nil || tier != enums.TierPro {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only the PRO tier is purchasable")
	}
	if dto.LicenseKey == "" && dto.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license_key or email is required")
	}

	licenseKey := dto.LicenseKey
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	if licenseKey != "" {
		user, err := s.accounts.FindByLicenseKey(ctx, licenseKey)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "license not found")
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find license")
		}
		email = user.Email
	} else if existing, err := s.accounts.FindByEmail(ctx, email); err == nil {
		licenseKey = existing.LicenseKey
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.ProPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
		params.AddMetadata("email", email)
	}
	if licenseKey != "" {
		params.ClientReferenceID = stripe.String(licenseKey)
		params.AddMetadata("license_key", licenseKey)
	}

	session, err := s.stripe.Create(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	s.log.Info(ctx, "checkout.session created")
	return &CreateSessionResult{CheckoutURL: session.URL, SessionID: session.ID}, nil
}

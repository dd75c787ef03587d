package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/kybernushq/kybernus-backend/internal/users"
	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	"github.com/kybernushq/kybernus-backend/pkg/email"
	"github.com/kybernushq/kybernus-backend/pkg/enums"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
	"github.com/kybernushq/kybernus-backend/pkg/metrics"
	"github.com/kybernushq/kybernus-backend/pkg/security"
)

type accountStore interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByLicenseKey(ctx context.Context, licenseKey string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	SetPlan(ctx context.Context, id uuid.UUID, tier enums.Tier, status enums.LicenseStatus, projectLimit *int) error
	SetStatus(ctx context.Context, id uuid.UUID, status enums.LicenseStatus) error
	SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
}

type cacheInvalidator interface {
	InvalidateCache(ctx context.Context, licenseKey string)
}

// Service applies Stripe subscription lifecycle events to license records.
type Service struct {
	accounts accountStore
	cache    cacheInvalidator
	mailer   email.Sender
	log      *logger.Logger
	metrics  *metrics.LicensingMetrics

	genLicenseKey func() (string, error)
}

func NewService(accounts accountStore, cache cacheInvalidator, mailer email.Sender, log *logger.Logger, m *metrics.LicensingMetrics) *Service {
	return &Service{
		accounts:      accounts,
		cache:         cache,
		mailer:        mailer,
		log:           log,
		metrics:       m,
		genLicenseKey: security.GenerateLicenseKey,
	}
}

// HandleEvent dispatches a verified Stripe event. Unhandled event types are
// acknowledged without side effects so Stripe stops retrying them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	s.metrics.ObserveWebhook(string(event.Type))

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.handleCheckoutCompleted(ctx, &session)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		return s.transitionByCustomer(ctx, event.GetObjectValue("customer"), enums.LicenseStatusCancelled)
	case stripe.EventTypeInvoicePaymentFailed:
		return s.handlePaymentFailed(ctx, event.GetObjectValue("customer"))
	default:
		return nil
	}
}

// handleCheckoutCompleted promotes the referenced license to PRO, creating a
// record first when checkout happened with only an email address.
func (s *Service) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	user, err := s.resolveAccount(ctx, session)
	if err != nil {
		return err
	}

	if err := s.accounts.SetPlan(ctx, user.ID, enums.TierPro, enums.LicenseStatusProActive, nil); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply pro plan")
	}
	if customerID := sessionCustomerID(session); customerID != "" {
		if err := s.accounts.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store stripe customer id")
		}
	}

	s.cache.InvalidateCache(ctx, user.LicenseKey)
	s.log.Info(s.log.WithUserID(ctx, user.ID.String()), "webhook.license upgraded to pro")
	return nil
}

func (s *Service) resolveAccount(ctx context.Context, session *stripe.CheckoutSession) (*models.User, error) {
	if key := session.Metadata["license_key"]; key != "" {
		user, err := s.accounts.FindByLicenseKey(ctx, key)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find license for checkout")
		}
	}

	address := strings.ToLower(strings.TrimSpace(sessionEmail(session)))
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session has no license key or email")
	}

	user, err := s.accounts.FindByEmail(ctx, address)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find account for checkout")
	}
	return s.createProAccount(ctx, address)
}

// createProAccount covers checkout completed by someone who never registered:
// a record is minted directly on the paid tier and the key is emailed.
func (s *Service) createProAccount(ctx context.Context, address string) (*models.User, error) {
	key, err := s.genLicenseKey()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate license key")
	}
	user, err := s.accounts.Create(ctx, users.CreateUserDTO{
		Email:      address,
		LicenseKey: key,
		Tier:       enums.TierPro,
		Status:     enums.LicenseStatusProActive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pro account")
	}
	if mailErr := s.mailer.SendLicenseKey(ctx, address, key, 0); mailErr != nil {
		s.log.Error(ctx, "webhook.license email failed", mailErr)
	}
	return user, nil
}

func (s *Service) handlePaymentFailed(ctx context.Context, customerID string) error {
	user, err := s.findByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	// Failed renewals only demote the free plan; PRO stays active until the
	// subscription is actually cancelled.
	if user.Tier != enums.TierFree {
		return nil
	}
	return s.applyStatus(ctx, user, enums.LicenseStatusFreePastDue)
}

func (s *Service) transitionByCustomer(ctx context.Context, customerID string, status enums.LicenseStatus) error {
	user, err := s.findByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	return s.applyStatus(ctx, user, status)
}

func (s *Service) findByCustomer(ctx context.Context, customerID string) (*models.User, error) {
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id missing")
	}
	user, err := s.accounts.FindByStripeCustomerID(ctx, customerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no license for stripe customer")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find license by customer")
	}
	return user, nil
}

func (s *Service) applyStatus(ctx context.Context, user *models.User, status enums.LicenseStatus) error {
	if err := s.accounts.SetStatus(ctx, user.ID, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update license status")
	}
	s.cache.InvalidateCache(ctx, user.LicenseKey)
	s.log.Info(s.log.WithUserID(ctx, user.ID.String()), "webhook.license status updated")
	return nil
}

func sessionCustomerID(session *stripe.CheckoutSession) string {
	if session.Customer == nil {
		return ""
	}
	return session.Customer.ID
}

func sessionEmail(session *stripe.CheckoutSession) string {
	if session.Metadata["email"] != "" {
		return session.Metadata["email"]
	}
	if session.CustomerEmail != "" {
		return session.CustomerEmail
	}
	if session.CustomerDetails != nil {
		return session.CustomerDetails.Email
	}
	return ""
}

package licenses

import (
	"context"
	"time"

	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	pkgerrors "github.com/kybernushq/kybernus-backend/pkg/errors"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
	"github.com/kybernushq/kybernus-backend/pkg/metrics"
	"github.com/kybernushq/kybernus-backend/pkg/security"
)

type store interface {
	FindByLicenseKey(ctx context.Context, key string) (*models.User, error)
	ConsumeCredit(ctx context.Context, key string) (*models.User, bool, error)
}

type resultCache interface {
	Get(ctx context.Context, licenseKey string, now time.Time) (ValidationResult, bool, error)
	Put(ctx context.Context, licenseKey string, res ValidationResult) error
	Invalidate(ctx context.Context, licenseKey string) error
}

// Service implements license validation and project-credit consumption.
type Service struct {
	store   store
	cache   resultCache
	log     *logger.Logger
	metrics *metrics.LicensingMetrics
	now     func() time.Time
}

func NewService(store store, cache resultCache, log *logger.Logger, m *metrics.LicensingMetrics) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Validate resolves the current state of a license key. Positive results are
// served from cache when available; negative results are always recomputed.
func (s *Service) Validate(ctx context.Context, licenseKey string) (ValidationResult, error) {
	ctx = s.log.WithLicenseKey(ctx, licenseKey)

	if !security.ValidLicenseKeyFormat(licenseKey) {
		s.metrics.ObserveValidation("not_found")
		return NotFoundResult(), nil
	}

	now := s.now()
	if cached, ok, err := s.cache.Get(ctx, licenseKey, now); err != nil {
		// Cache trouble degrades to a store lookup.
		s.log.Error(ctx, "license.cache read failed", err)
	} else if ok {
		s.metrics.ObserveCacheHit()
		s.metrics.ObserveValidation(string(cached.Status))
		return cached, nil
	}

	res, err := s.evaluateFromStore(ctx, licenseKey, now)
	if err != nil {
		return ValidationResult{}, err
	}

	if res.Valid {
		if err := s.cache.Put(ctx, licenseKey, res); err != nil {
			s.log.Error(ctx, "license.cache write failed", err)
		}
	}
	s.metrics.ObserveValidation(validationLabel(res))
	return res, nil
}

// Consume attempts to spend one project credit. Validation runs inline
// against the store, never the cache, so an expired trial is denied even
// while a positive result for it is still cached.
func (s *Service) Consume(ctx context.Context, licenseKey string) (ConsumptionResult, error) {
	ctx = s.log.WithLicenseKey(ctx, licenseKey)

	if !security.ValidLicenseKeyFormat(licenseKey) {
		s.metrics.ObserveConsumption("denied")
		return ConsumptionResult{Authorized: false, Reason: NotFoundResult().Message}, nil
	}

	user, err := s.store.FindByLicenseKey(ctx, licenseKey)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			s.metrics.ObserveConsumption("denied")
			return ConsumptionResult{Authorized: false, Reason: NotFoundResult().Message}, nil
		}
		return ConsumptionResult{}, err
	}

	state := Evaluate(user, s.now())
	if !state.Valid {
		s.metrics.ObserveConsumption("denied")
		return ConsumptionResult{
			Authorized: false,
			Usage:      state.Usage,
			Limit:      state.Limit,
			Reason:     denyReason(state),
		}, nil
	}

	if user.Unlimited() {
		s.metrics.ObserveConsumption("granted")
		return ConsumptionResult{Authorized: true}, nil
	}

	updated, granted, err := s.store.ConsumeCredit(ctx, licenseKey)
	if err != nil {
		return ConsumptionResult{}, err
	}
	if !granted {
		s.metrics.ObserveConsumption("denied")
		return ConsumptionResult{
			Authorized: false,
			Usage:      intPtr(updated.ProjectUsage),
			Remaining:  intPtr(0),
			Limit:      updated.ProjectLimit,
			Reason:     msgLimitExhausted,
		}, nil
	}

	remaining := 0
	if updated.ProjectLimit != nil {
		remaining = *updated.ProjectLimit - updated.ProjectUsage
	}
	s.metrics.ObserveConsumption("granted")
	s.log.Info(ctx, "license.credit consumed")
	return ConsumptionResult{
		Authorized: true,
		Usage:      intPtr(updated.ProjectUsage),
		Remaining:  intPtr(remaining),
		Limit:      updated.ProjectLimit,
	}, nil
}

// InvalidateCache drops the cached validation result for a key. Plan
// transitions (checkout, webhooks) call this so the new state is visible on
// the next validation instead of after the cache TTL.
func (s *Service) InvalidateCache(ctx context.Context, licenseKey string) {
	if err := s.cache.Invalidate(ctx, licenseKey); err != nil {
		s.log.Error(ctx, "license.cache invalidate failed", err)
	}
}

func (s *Service) evaluateFromStore(ctx context.Context, licenseKey string, now time.Time) (ValidationResult, error) {
	user, err := s.store.FindByLicenseKey(ctx, licenseKey)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return NotFoundResult(), nil
		}
		return ValidationResult{}, err
	}
	return Evaluate(user, now), nil
}

func validationLabel(res ValidationResult) string {
	if res.Status == "" {
		return "not_found"
	}
	return string(res.Status)
}

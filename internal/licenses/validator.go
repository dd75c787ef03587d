package licenses

import (
	"fmt"
	"time"

	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	"github.com/kybernushq/kybernus-backend/pkg/enums"
)

const (
	msgTrialExpired   = "trial period has expired"
	msgPaymentDue     = "payment is past due"
	msgCancelled      = "subscription has been cancelled"
	msgInactive       = "license is not active"
	msgLimitExhausted = "project limit reached"
)

// Evaluate computes the current state of a license record. It never mutates
// the record: trial expiry is derived from trial_ends_at and now on every
// call, so a stale persisted status can never keep an expired trial valid.
func Evaluate(user *models.User, now time.Time) ValidationResult {
	if user.Status == enums.LicenseStatusCancelled {
		return ValidationResult{
			Valid:   false,
			Status:  enums.LicenseStatusCancelled,
			Tier:    user.Tier,
			Message: msgCancelled,
		}
	}

	switch user.Tier {
	case enums.TierTrial:
		return evaluateTrial(user, now)
	case enums.TierFree:
		return evaluateFree(user)
	case enums.TierPro:
		return evaluatePro(user)
	}

	return ValidationResult{
		Valid:   false,
		Status:  user.Status,
		Tier:    user.Tier,
		Message: msgInactive,
	}
}

func evaluateTrial(user *models.User, now time.Time) ValidationResult {
	res := ValidationResult{
		Tier:       enums.TierTrial,
		Usage:      intPtr(user.ProjectUsage),
		Limit:      user.ProjectLimit,
		Expiration: user.TrialEndsAt,
	}
	if user.TrialEndsAt == nil || now.After(*user.TrialEndsAt) {
		res.Status = enums.LicenseStatusTrialExpired
		res.Message = msgTrialExpired
		return res
	}
	res.Valid = true
	res.Status = enums.LicenseStatusTrial
	return res
}

func evaluateFree(user *models.User) ValidationResult {
	res := ValidationResult{
		Tier:   enums.TierFree,
		Status: user.Status,
	}
	switch user.Status {
	case enums.LicenseStatusFreeActive:
		res.Valid = true
	case enums.LicenseStatusFreePastDue:
		res.Message = msgPaymentDue
	default:
		res.Message = msgInactive
	}
	return res
}

func evaluatePro(user *models.User) ValidationResult {
	res := ValidationResult{
		Tier:   enums.TierPro,
		Status: user.Status,
	}
	if user.Status == enums.LicenseStatusProActive {
		res.Valid = true
		return res
	}
	res.Message = msgInactive
	return res
}

// NotFoundResult is returned for keys with no matching record. The message
// is deliberately the same regardless of whether the key is malformed or
// simply unknown.
func NotFoundResult() ValidationResult {
	return ValidationResult{
		Valid:   false,
		Message: "license key not found",
	}
}

func denyReason(res ValidationResult) string {
	if res.Message != "" {
		return res.Message
	}
	return fmt.Sprintf("license in status %s is not valid", res.Status)
}

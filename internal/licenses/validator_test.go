package licenses

import (
	"testing"
	"time"

	"github.com/kybernushq/kybernus-backend/pkg/db/models"
	"github.com/kybernushq/kybernus-backend/pkg/enums"
)

func trialUser(endsAt time.Time, usage int) *models.User {
	limit := 3
	started := endsAt.Add(-15 * 24 * time.Hour)
	return &models.User{
		Tier:           enums.TierTrial,
		Status:         enums.LicenseStatusTrial,
		TrialStartedAt: &started,
		TrialEndsAt:    &endsAt,
		ProjectUsage:   usage,
		ProjectLimit:   &limit,
	}
}

func TestEvaluateTrialActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := Evaluate(trialUser(now.Add(24*time.Hour), 1), now)

	if !res.Valid {
		t.Fatalf("expected valid trial, got %+v", res)
	}
	if res.Status != enums.LicenseStatusTrial {
		t.Fatalf("expected status TRIAL, got %s", res.Status)
	}
	if res.Usage == nil || *res.Usage != 1 {
		t.Fatalf("expected usage 1, got %v", res.Usage)
	}
	if res.Limit == nil || *res.Limit != 3 {
		t.Fatalf("expected limit 3, got %v", res.Limit)
	}
	if res.Expiration == nil {
		t.Fatal("expected expiration to be set")
	}
}

func TestEvaluateTrialExpiryBoundary(t *testing.T) {
	endsAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Exactly at the deadline the trial is still valid.
	res := Evaluate(trialUser(endsAt, 0), endsAt)
	if !res.Valid {
		t.Fatalf("trial at exact deadline should be valid, got %+v", res)
	}

	res = Evaluate(trialUser(endsAt, 0), endsAt.Add(time.Nanosecond))
	if res.Valid {
		t.Fatal("trial past deadline should be invalid")
	}
	if res.Status != enums.LicenseStatusTrialExpired {
		t.Fatalf("expected TRIAL_EXPIRED, got %s", res.Status)
	}
	if res.Message == "" {
		t.Fatal("expired trial should carry a message")
	}
}

func TestEvaluateTrialExpiryNeverPersisted(t *testing.T) {
	// The stored status still says TRIAL; the result must be derived from
	// the timestamps alone.
	user := trialUser(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 2)
	res := Evaluate(user, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	if res.Valid {
		t.Fatal("expected expired trial to be invalid")
	}
	if user.Status != enums.LicenseStatusTrial {
		t.Fatal("Evaluate must not mutate the record")
	}
}

func TestEvaluateFree(t *testing.T) {
	now := time.Now()

	active := &models.User{Tier: enums.TierFree, Status: enums.LicenseStatusFreeActive}
	res := Evaluate(active, now)
	if !res.Valid {
		t.Fatalf("FREE_ACTIVE should be valid, got %+v", res)
	}
	if res.Usage != nil || res.Limit != nil {
		t.Fatal("paid tiers carry no usage counters")
	}

	pastDue := &models.User{Tier: enums.TierFree, Status: enums.LicenseStatusFreePastDue}
	res = Evaluate(pastDue, now)
	if res.Valid {
		t.Fatal("FREE_PAST_DUE should be invalid")
	}
	if res.Message != msgPaymentDue {
		t.Fatalf("expected past-due message, got %q", res.Message)
	}
}

func TestEvaluatePro(t *testing.T) {
	now := time.Now()

	res := Evaluate(&models.User{Tier: enums.TierPro, Status: enums.LicenseStatusProActive}, now)
	if !res.Valid {
		t.Fatalf("PRO_ACTIVE should be valid, got %+v", res)
	}
	if res.Expiration != nil {
		t.Fatal("pro licenses have no expiration")
	}
}

func TestEvaluateCancelledWinsOverTier(t *testing.T) {
	now := time.Now()
	for _, tier := range []enums.Tier{enums.TierTrial, enums.TierFree, enums.TierPro} {
		res := Evaluate(&models.User{Tier: tier, Status: enums.LicenseStatusCancelled}, now)
		if res.Valid {
			t.Fatalf("cancelled %s license should be invalid", tier)
		}
		if res.Message != msgCancelled {
			t.Fatalf("expected cancelled message, got %q", res.Message)
		}
	}
}

func TestNotFoundResult(t *testing.T) {
	res := NotFoundResult()
	if res.Valid {
		t.Fatal("not-found result must be invalid")
	}
	if res.Status != "" || res.Tier != "" {
		t.Fatalf("not-found result should carry no status or tier, got %+v", res)
	}
}

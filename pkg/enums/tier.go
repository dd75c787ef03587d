package enums

import "fmt"

// Tier maps to the license_tier enum in Postgres.
type Tier string

const (
	TierTrial Tier = "TRIAL"
	TierFree  Tier = "FREE"
	TierPro   Tier = "PRO"
)

var validTiers = []Tier{
	TierTrial,
	TierFree,
	TierPro,
}

// String implements fmt.Stringer.
func (t Tier) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical license_tier enum.
func (t Tier) IsValid() bool {
	for _, candidate := range validTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// Unlimited reports whether the tier has no project-creation cap.
func (t Tier) Unlimited() bool {
	return t == TierFree || t == TierPro
}

// ParseTier converts raw input into Tier.
func ParseTier(value string) (Tier, error) {
	for _, candidate := range validTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tier %q", value)
}

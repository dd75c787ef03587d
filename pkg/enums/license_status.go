package enums

import "fmt"

// LicenseStatus maps to the license_status enum in Postgres. Trial statuses are
// derived from the trial window at read time and never written back; the stored
// value for trial accounts stays TRIAL.
type LicenseStatus string

const (
	LicenseStatusTrial        LicenseStatus = "TRIAL"
	LicenseStatusTrialExpired LicenseStatus = "TRIAL_EXPIRED"
	LicenseStatusFreeActive   LicenseStatus = "FREE_ACTIVE"
	LicenseStatusFreePastDue  LicenseStatus = "FREE_PAST_DUE"
	LicenseStatusProActive    LicenseStatus = "PRO_ACTIVE"
	LicenseStatusCancelled    LicenseStatus = "CANCELLED"
)

var validLicenseStatuses = []LicenseStatus{
	LicenseStatusTrial,
	LicenseStatusTrialExpired,
	LicenseStatusFreeActive,
	LicenseStatusFreePastDue,
	LicenseStatusProActive,
	LicenseStatusCancelled,
}

// String implements fmt.Stringer.
func (l LicenseStatus) String() string {
	return string(l)
}

// IsValid reports whether the value matches the canonical license_status enum.
func (l LicenseStatus) IsValid() bool {
	for _, candidate := range validLicenseStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLicenseStatus converts raw input into LicenseStatus.
func ParseLicenseStatus(value string) (LicenseStatus, error) {
	for _, candidate := range validLicenseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid license status %q", value)
}

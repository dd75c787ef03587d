package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// LicenseKeyPrefix marks every key issued by this service.
	LicenseKeyPrefix = "kyb_"

	licenseKeyRandomBytes = 16
	resetTokenBytes       = 32

	// MinLicenseKeyLength is enforced at the API boundary before any store lookup.
	MinLicenseKeyLength = 8
)

// GenerateLicenseKey returns a new opaque license key: prefix + 32 hex chars.
func GenerateLicenseKey() (string, error) {
	buf := make([]byte, licenseKeyRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate license key: %w", err)
	}
	return LicenseKeyPrefix + hex.EncodeToString(buf), nil
}

// GenerateResetToken returns a URL-safe token with 32 bytes of entropy.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidLicenseKeyFormat applies the boundary format check: trimmed, minimum
// length. Anything shorter is rejected without touching the store.
func ValidLicenseKeyFormat(key string) bool {
	return len(strings.TrimSpace(key)) >= MinLicenseKeyLength
}

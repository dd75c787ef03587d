package security_test

import (
	"strings"
	"testing"

	"github.com/kybernushq/kybernus-backend/pkg/security"
)

func TestGenerateLicenseKey(t *testing.T) {
	key, err := security.GenerateLicenseKey()
	if err != nil {
		t.Fatalf("GenerateLicenseKey returned error: %v", err)
	}
	if !strings.HasPrefix(key, security.LicenseKeyPrefix) {
		t.Fatalf("expected prefix %q, got %q", security.LicenseKeyPrefix, key)
	}
	if len(key) != len(security.LicenseKeyPrefix)+32 {
		t.Fatalf("unexpected key length %d: %q", len(key), key)
	}

	other, err := security.GenerateLicenseKey()
	if err != nil {
		t.Fatalf("GenerateLicenseKey returned error: %v", err)
	}
	if key == other {
		t.Fatal("two generated keys collided")
	}
}

func TestGenerateResetToken(t *testing.T) {
	token, err := security.GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}
	if token == "" {
		t.Fatal("GenerateResetToken returned empty string")
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("token is not URL-safe: %q", token)
	}
}

func TestValidLicenseKeyFormat(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"kyb_0123456789abcdef0123456789abcdef", true},
		{"  kyb_0123456789abcdef  ", true},
		{"short", false},
		{"       ", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := security.ValidLicenseKeyFormat(tc.key); got != tc.want {
			t.Fatalf("ValidLicenseKeyFormat(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

package stripe

import (
	"context"
	"testing"

	"github.com/kybernushq/kybernus-backend/pkg/config"
)

func TestNewClientValidatesConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.StripeConfig
	}{
		{name: "missing api key", cfg: config.StripeConfig{Secret: "whsec_x", Env: "test"}},
		{name: "missing webhook secret", cfg: config.StripeConfig{APIKey: "sk_test_123", Env: "test"}},
		{name: "unknown environment", cfg: config.StripeConfig{APIKey: "sk_test_123", Secret: "whsec_x", Env: "staging"}},
		{name: "live env with test key", cfg: config.StripeConfig{APIKey: "sk_test_123", Secret: "whsec_x", Env: "live"}},
		{name: "test env with live key", cfg: config.StripeConfig{APIKey: "sk_live_123", Secret: "whsec_x", Env: "test"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewClient(context.Background(), tc.cfg, nil); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestNewClientKeepsSigningSecret(t *testing.T) {
	cfg := config.StripeConfig{APIKey: "sk_test_123", Secret: "  whsec_abc  ", Env: ""}
	client, err := NewClient(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if got := client.SigningSecret(); got != "whsec_abc" {
		t.Fatalf("signing secret %q", got)
	}
}

func TestSigningSecretNilSafe(t *testing.T) {
	var client *Client
	if got := client.SigningSecret(); got != "" {
		t.Fatalf("nil client should answer empty secret, got %q", got)
	}
}

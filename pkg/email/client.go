package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/kybernushq/kybernus-backend/pkg/config"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
)

// Sender delivers the transactional mail the licensing flows produce.
type Sender interface {
	SendLicenseKey(ctx context.Context, to, licenseKey string, trialDays int) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// Client wraps Resend. In dev mode (or with no API key) sends are logged and
// dropped so local flows never depend on the provider.
type Client struct {
	api     *resend.Client
	from    string
	baseURL string
	logg    *logger.Logger
}

// NewClient builds an email client from config. A missing API key yields a
// dev-mode client, not an error: callers treat email as best-effort.
func NewClient(cfg config.ResendConfig, appCfg config.AppConfig, logg *logger.Logger) *Client {
	var api *resend.Client
	if cfg.APIKey != "" && !appCfg.IsDev() {
		api = resend.NewClient(cfg.APIKey)
	}
	return &Client{
		api:     api,
		from:    cfg.DefaultFrom,
		baseURL: appCfg.BaseURL,
		logg:    logg,
	}
}

func (c *Client) SendLicenseKey(ctx context.Context, to, licenseKey string, trialDays int) error {
	subject := "Your Kybernus license key"
	body := fmt.Sprintf(
		"Welcome to Kybernus!\n\nYour license key:\n\n  %s\n\nYour trial includes %d days of full access. Run `kybernus activate` and paste the key when prompted.\n",
		licenseKey, trialDays,
	)
	return c.send(ctx, "license_key", to, subject, body)
}

func (c *Client) SendPasswordReset(ctx context.Context, to, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", c.baseURL, token)
	subject := "Reset your Kybernus password"
	body := fmt.Sprintf(
		"We received a request to reset your password.\n\nReset it here (link valid for 1 hour):\n\n  %s\n\nIf you didn't request this, you can ignore this email.\n",
		resetURL,
	)
	return c.send(ctx, "password_reset", to, subject, body)
}

func (c *Client) send(ctx context.Context, kind, to, subject, body string) error {
	if c.api == nil {
		if c.logg != nil {
			ctx = c.logg.WithFields(ctx, map[string]any{"type": kind, "to": to, "subject": subject})
			c.logg.Info(ctx, "email.skipped (dev mode)")
		}
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	if _, err := c.api.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	if c.logg != nil {
		ctx = c.logg.WithFields(ctx, map[string]any{"type": kind, "to": to})
		c.logg.Info(ctx, "email.sent")
	}
	return nil
}

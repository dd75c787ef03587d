package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kybernushq/kybernus-backend/api/controllers"
	webhookcontrollers "github.com/kybernushq/kybernus-backend/api/controllers/webhooks"
	"github.com/kybernushq/kybernus-backend/api/middleware"
	"github.com/kybernushq/kybernus-backend/pkg/auth/session"
	"github.com/kybernushq/kybernus-backend/pkg/config"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
	redisclient "github.com/kybernushq/kybernus-backend/pkg/redis"
	pkgstripe "github.com/kybernushq/kybernus-backend/pkg/stripe"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redisclient.Client
	Sessions session.Checker

	Licenses      controllers.LicenseService
	Auth          controllers.AuthService
	Account       controllers.AccountService
	Checkout      controllers.CheckoutService
	StripeClient  *pkgstripe.Client
	StripeWebhook webhookcontrollers.StripeWebhookService
	WebhookGuard  webhookcontrollers.StripeWebhookGuard

	MetricsRegistry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	validatePolicy := middleware.NewRateLimitPolicy(
		"validate",
		cfg.RateLimit.ValidateWindow,
		cfg.RateLimit.ValidateIPLimit,
		cfg.RateLimit.ValidateKeyLimit,
		"license_key",
	)
	consumePolicy := middleware.NewRateLimitPolicy(
		"consume",
		cfg.RateLimit.ConsumeWindow,
		cfg.RateLimit.ConsumeIPLimit,
		cfg.RateLimit.ConsumeKeyLimit,
		"license_key",
	)
	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterIDLimit,
		"email",
	)
	passwordPolicy := middleware.NewRateLimitPolicy(
		"password",
		cfg.RateLimit.PasswordWindow,
		cfg.RateLimit.PasswordIPLimit,
		cfg.RateLimit.PasswordIDLimit,
		"email",
	)

	limit := func(policy middleware.RateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Redis == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RateLimit(policy, deps.Redis, logg)
	}

	var cachePinger controllers.Pinger
	if deps.Redis != nil {
		cachePinger = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cachePinger, logg))
	})

	if deps.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/licenses", func(r chi.Router) {
			r.With(limit(validatePolicy)).
				Post("/validate", controllers.ValidateLicense(deps.Licenses, logg))
			r.With(limit(consumePolicy)).
				Post("/consume", controllers.ConsumeCredit(deps.Licenses, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(limit(registerPolicy)).
				Post("/register", controllers.Register(deps.Auth, logg))
			r.Post("/login", controllers.Login(deps.Auth, logg))
			r.With(limit(passwordPolicy)).
				Post("/forgot-password", controllers.ForgotPassword(deps.Auth, logg))
			r.With(limit(passwordPolicy)).
				Post("/reset-password", controllers.ResetPassword(deps.Auth, logg))
		})

		r.Route("/account", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Put("/email", controllers.ChangeEmail(deps.Account, logg))
		})

		r.Post("/checkout", controllers.CreateCheckoutSession(deps.Checkout, logg))

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhook, deps.StripeClient, deps.WebhookGuard, logg))
		})
	})

	return r
}

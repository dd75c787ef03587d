package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kybernushq/kybernus-backend/api/routes"
	"github.com/kybernushq/kybernus-backend/internal/auth"
	"github.com/kybernushq/kybernus-backend/internal/checkout"
	"github.com/kybernushq/kybernus-backend/internal/licenses"
	"github.com/kybernushq/kybernus-backend/internal/users"
	stripewebhook "github.com/kybernushq/kybernus-backend/internal/webhooks/stripe"
	"github.com/kybernushq/kybernus-backend/pkg/auth/session"
	"github.com/kybernushq/kybernus-backend/pkg/config"
	"github.com/kybernushq/kybernus-backend/pkg/db"
	"github.com/kybernushq/kybernus-backend/pkg/email"
	"github.com/kybernushq/kybernus-backend/pkg/logger"
	"github.com/kybernushq/kybernus-backend/pkg/metrics"
	"github.com/kybernushq/kybernus-backend/pkg/migrate"
	"github.com/kybernushq/kybernus-backend/pkg/redis"
	"github.com/kybernushq/kybernus-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize stripe", err)
		os.Exit(1)
	}

	mailer := email.NewClient(cfg.Resend, cfg.App, logg)

	registry := prometheus.NewRegistry()
	licensingMetrics := metrics.NewLicensingMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())
	licensesRepo := licenses.NewRepository(dbClient.DB())
	resetTokens := auth.NewResetTokenRepository(dbClient.DB())

	licenseCache := licenses.NewCache(redisClient, cfg.License.CacheTTL)
	licenseService := licenses.NewService(licensesRepo, licenseCache, logg, licensingMetrics)

	authService := auth.NewService(
		usersRepo,
		resetTokens,
		sessionManager,
		mailer,
		logg,
		cfg.JWT,
		cfg.Password,
		cfg.License,
	)

	checkoutService := checkout.NewService(usersRepo, checkout.NewSessionClient(stripeClient), cfg.Stripe, logg)

	webhookService := stripewebhook.NewService(usersRepo, licenseService, mailer, logg, licensingMetrics)
	webhookGuard := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookIdemTTL)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Sessions:        sessionManager,
			Licenses:        licenseService,
			Auth:            authService,
			Account:         authService,
			Checkout:        checkoutService,
			StripeClient:    stripeClient,
			StripeWebhook:   webhookService,
			WebhookGuard:    webhookGuard,
			MetricsRegistry: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

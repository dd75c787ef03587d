package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is the envconfig prefix shared by every service binary.
	EnvPrefix = "kybernus"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	License   LicenseConfig
	Stripe    StripeConfig
	Resend    ResendConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KYBERNUS_APP_ENV" required:"true"`
	Port         string `envconfig:"KYBERNUS_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"KYBERNUS_APP_BASE_URL" default:"https://kybernus.dev"`
	LogLevel     string `envconfig:"KYBERNUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KYBERNUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KYBERNUS_DB_DSN"`
	Driver string `envconfig:"KYBERNUS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KYBERNUS_DB_HOST"`
	Port     int    `envconfig:"KYBERNUS_DB_PORT" default:"5432"`
	User     string `envconfig:"KYBERNUS_DB_USER"`
	Password string `envconfig:"KYBERNUS_DB_PASSWORD"`
	Name     string `envconfig:"KYBERNUS_DB_NAME"`
	SSLMode  string `envconfig:"KYBERNUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KYBERNUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KYBERNUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KYBERNUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KYBERNUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"KYBERNUS_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KYBERNUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KYBERNUS_REDIS_ADDR"`
	Password     string        `envconfig:"KYBERNUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"KYBERNUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KYBERNUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KYBERNUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KYBERNUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KYBERNUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KYBERNUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KYBERNUS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KYBERNUS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KYBERNUS_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"KYBERNUS_SESSION_TTL_MINUTES" default:"10080"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KYBERNUS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KYBERNUS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KYBERNUS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KYBERNUS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KYBERNUS_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	ValidateWindow   time.Duration `envconfig:"KYBERNUS_RATE_LIMIT_VALIDATE_WINDOW" default:"1m"`
	ValidateIPLimit  int           `envconfig:"KYBERNUS_RATE_LIMIT_VALIDATE_IP_LIMIT" default:"30"`
	ValidateKeyLimit int           `envconfig:"KYBERNUS_RATE_LIMIT_VALIDATE_KEY_LIMIT" default:"60"`
	ConsumeWindow    time.Duration `envconfig:"KYBERNUS_RATE_LIMIT_CONSUME_WINDOW" default:"1m"`
	ConsumeIPLimit   int           `envconfig:"KYBERNUS_RATE_LIMIT_CONSUME_IP_LIMIT" default:"20"`
	ConsumeKeyLimit  int           `envconfig:"KYBERNUS_RATE_LIMIT_CONSUME_KEY_LIMIT" default:"30"`
	RegisterWindow   time.Duration `envconfig:"KYBERNUS_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIPLimit  int           `envconfig:"KYBERNUS_RATE_LIMIT_REGISTER_IP_LIMIT" default:"5"`
	RegisterIDLimit  int           `envconfig:"KYBERNUS_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	PasswordWindow   time.Duration `envconfig:"KYBERNUS_RATE_LIMIT_PASSWORD_WINDOW" default:"5m"`
	PasswordIPLimit  int           `envconfig:"KYBERNUS_RATE_LIMIT_PASSWORD_IP_LIMIT" default:"5"`
	PasswordIDLimit  int           `envconfig:"KYBERNUS_RATE_LIMIT_PASSWORD_EMAIL_LIMIT" default:"3"`
}

type LicenseConfig struct {
	TrialDays         int           `envconfig:"KYBERNUS_LICENSE_TRIAL_DAYS" default:"15"`
	TrialProjectLimit int           `envconfig:"KYBERNUS_LICENSE_TRIAL_PROJECT_LIMIT" default:"3"`
	CacheTTL          time.Duration `envconfig:"KYBERNUS_LICENSE_CACHE_TTL" default:"5m"`
	ResetTokenTTL     time.Duration `envconfig:"KYBERNUS_PASSWORD_RESET_TOKEN_TTL" default:"1h"`
}

// TrialDuration converts the configured trial days into a duration.
func (l LicenseConfig) TrialDuration() time.Duration {
	return time.Duration(l.TrialDays) * 24 * time.Hour
}

type StripeConfig struct {
	APIKey         string        `envconfig:"KYBERNUS_STRIPE_API_KEY"`
	Secret         string        `envconfig:"KYBERNUS_STRIPE_SECRET"`
	Env            string        `envconfig:"KYBERNUS_STRIPE_ENV" default:"test"`
	ProPriceID     string        `envconfig:"KYBERNUS_STRIPE_PRO_PRICE_ID"`
	SuccessURL     string        `envconfig:"KYBERNUS_STRIPE_SUCCESS_URL"`
	CancelURL      string        `envconfig:"KYBERNUS_STRIPE_CANCEL_URL"`
	WebhookIdemTTL time.Duration `envconfig:"KYBERNUS_STRIPE_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type ResendConfig struct {
	APIKey      string `envconfig:"KYBERNUS_RESEND_API_KEY"`
	DefaultFrom string `envconfig:"KYBERNUS_RESEND_FROM_EMAIL" default:"Kybernus <noreply@kybernus.dev>"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		"KYBERNUS_DB_HOST": db.Host,
		"KYBERNUS_DB_USER": db.User,
		"KYBERNUS_DB_NAME": db.Name,
	}
	for _, env := range []string{"KYBERNUS_DB_HOST", "KYBERNUS_DB_USER", "KYBERNUS_DB_NAME"} {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either KYBERNUS_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

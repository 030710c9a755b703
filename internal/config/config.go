package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"phoneline/internal/routing"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration required by the API process and linectl.
// All values come from env (or an env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Twilio TwilioConfig
	Line   LineConfig
}

type AppConfig struct {
	Env      string `env:"APP_ENV"`
	Port     int    `env:"APP_PORT"`
	LogLevel string `env:"LOG_LEVEL"`
}

// DBConfig is optional outside production; without DB_HOST the process runs on
// in-memory repositories.
type DBConfig struct {
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`

	// SSLMode is kept explicit for AWS-ready posture.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string `env:"DB_SSLMODE"`

	// MaxConns caps the pool; 0 uses the pool default.
	MaxConns int `env:"DB_MAX_CONNS"`
}

// RedisConfig is optional outside production; without REDIS_HOST live calls are
// tracked in process and settings are not cached.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTIssuer      string        `env:"JWT_ISSUER"`
	JWTAudience    string        `env:"JWT_AUDIENCE"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TTL"`
}

type TwilioConfig struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	// AuthToken enables X-Twilio-Signature validation on webhooks when set.
	AuthToken string `env:"TWILIO_AUTH_TOKEN"`
}

// LineConfig covers call handling on the business lines.
type LineConfig struct {
	BusinessTimezone    string        `env:"BUSINESS_TIMEZONE" envDefault:"Europe/London"`
	DialTimeout         time.Duration `env:"DIAL_TIMEOUT" envDefault:"20s"`
	ElevenLabsStreamURL string        `env:"ELEVENLABS_STREAM_URL"`
	ActiveCallTTL       time.Duration `env:"ACTIVE_CALL_TTL" envDefault:"4h"`
	SettingsCacheTTL    time.Duration `env:"SETTINGS_CACHE_TTL" envDefault:"30s"`
	// WebhookRateLimit is requests per second per client IP; 0 disables limiting.
	WebhookRateLimit float64 `env:"WEBHOOK_RATE_LIMIT" envDefault:"20"`
	WebhookBurst     int     `env:"WEBHOOK_BURST" envDefault:"40"`
	PublicBaseURL    string  `env:"PUBLIC_BASE_URL"`

	// Workspaces maps dialed numbers to workspaces when there is no database,
	// e.g. LINE_WORKSPACES="+441234567890=acme".
	Workspaces map[string]string `env:"LINE_WORKSPACES" envKeyValSeparator:"="`
}

// Location returns the business timezone, falling back to the default zone.
func (l LineConfig) Location() *time.Location {
	loc, _ := routing.LoadLocation(l.BusinessTimezone)
	return loc
}

// Twilio accepts 5..600 seconds for <Dial timeout>.
const (
	minDialTimeout = 5 * time.Second
	maxDialTimeout = 600 * time.Second
)

func Load() (Config, error) {
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom parses configuration from an explicit environment map.
func LoadFrom(environ map[string]string) (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c.trim()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) trim() {
	c.App.Env = strings.TrimSpace(c.App.Env)
	c.App.LogLevel = strings.TrimSpace(c.App.LogLevel)
	c.DB.Host = strings.TrimSpace(c.DB.Host)
	c.DB.User = strings.TrimSpace(c.DB.User)
	c.DB.Name = strings.TrimSpace(c.DB.Name)
	c.DB.SSLMode = strings.TrimSpace(c.DB.SSLMode)
	c.Redis.Host = strings.TrimSpace(c.Redis.Host)
	c.Auth.JWTIssuer = strings.TrimSpace(c.Auth.JWTIssuer)
	c.Auth.JWTAudience = strings.TrimSpace(c.Auth.JWTAudience)
	c.Twilio.AccountSID = strings.TrimSpace(c.Twilio.AccountSID)
	c.Line.BusinessTimezone = strings.TrimSpace(c.Line.BusinessTimezone)
	c.Line.ElevenLabsStreamURL = strings.TrimSpace(c.Line.ElevenLabsStreamURL)
	c.Line.PublicBaseURL = strings.TrimSpace(c.Line.PublicBaseURL)
}

// Validate reports every problem at once and fills in environment-dependent defaults.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.LogLevel != "" && !isValidLogLevel(c.App.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.App.LogLevel))
	}

	if c.DB.Host == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_HOST is required in production"))
		}
	} else {
		if c.DB.Port <= 0 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
		}
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required"))
		}
		if c.DB.SSLMode == "" {
			if c.IsProduction() {
				errs = append(errs, errors.New("DB_SSLMODE is required in production"))
			} else {
				// Local-friendly default; production must be explicit.
				c.DB.SSLMode = "disable"
			}
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	}

	if c.Redis.Host == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("REDIS_HOST is required in production"))
		}
	} else if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}
	if c.Auth.AccessTokenTTL <= 0 {
		// Default: short-lived access tokens.
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.AccessTokenTTL > 24*time.Hour {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_TTL must be at most 24h, got %s", c.Auth.AccessTokenTTL))
	}

	if c.IsProduction() && c.Twilio.AuthToken == "" {
		errs = append(errs, errors.New("TWILIO_AUTH_TOKEN is required in production"))
	}

	errs = append(errs, c.Line.validate(c.IsProduction())...)

	return joinErrors(errs)
}

func (l *LineConfig) validate(production bool) []error {
	var errs []error

	if l.BusinessTimezone == "" {
		l.BusinessTimezone = routing.DefaultTimezone
	}
	if _, err := routing.LoadLocation(l.BusinessTimezone); err != nil {
		errs = append(errs, fmt.Errorf("BUSINESS_TIMEZONE must be an IANA zone name, got %q", l.BusinessTimezone))
	}

	if l.DialTimeout <= 0 {
		l.DialTimeout = 20 * time.Second
	}
	if l.DialTimeout < minDialTimeout || l.DialTimeout > maxDialTimeout {
		errs = append(errs, fmt.Errorf("DIAL_TIMEOUT must be between 5s and 600s, got %s", l.DialTimeout))
	}
	if l.ActiveCallTTL <= 0 {
		l.ActiveCallTTL = 4 * time.Hour
	}
	if l.SettingsCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("SETTINGS_CACHE_TTL must not be negative, got %s", l.SettingsCacheTTL))
	}
	if l.WebhookRateLimit < 0 {
		errs = append(errs, fmt.Errorf("WEBHOOK_RATE_LIMIT must not be negative, got %v", l.WebhookRateLimit))
	}
	if l.WebhookRateLimit > 0 && l.WebhookBurst <= 0 {
		errs = append(errs, fmt.Errorf("WEBHOOK_BURST must be positive when rate limiting, got %d", l.WebhookBurst))
	}

	if l.PublicBaseURL == "" {
		if production {
			errs = append(errs, errors.New("PUBLIC_BASE_URL is required in production"))
		}
	} else if !hasScheme(l.PublicBaseURL, "http", "https") {
		errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL must be an absolute http(s) URL, got %q", l.PublicBaseURL))
	}
	if l.ElevenLabsStreamURL != "" && !hasScheme(l.ElevenLabsStreamURL, "ws", "wss") {
		errs = append(errs, fmt.Errorf("ELEVENLABS_STREAM_URL must be a ws(s) URL, got %q", l.ElevenLabsStreamURL))
	}

	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HasPostgres() bool { return c.DB.Host != "" }

func (c Config) HasRedis() bool { return c.Redis.Host != "" }

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func hasScheme(raw string, schemes ...string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			return true
		}
	}
	return false
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}

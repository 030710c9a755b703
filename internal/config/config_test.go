package config

import (
	"strings"
	"testing"
	"time"
)

func localEnv() map[string]string {
	return map[string]string{
		"APP_ENV":    "local",
		"APP_PORT":   "8080",
		"JWT_SECRET": "secret",
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"APP_ENV is required", "APP_PORT", "JWT_SECRET is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_ProductionRequiresInfrastructure(t *testing.T) {
	c := Config{
		App:  AppConfig{Env: "production", Port: 8080},
		DB:   DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "phoneline", SSLMode: ""},
		Auth: AuthConfig{JWTSecret: "secret"},
	}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected error for production config")
	}
	for _, want := range []string{"DB_SSLMODE is required in production", "REDIS_HOST is required in production", "TWILIO_AUTH_TOKEN", "PUBLIC_BASE_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := Config{
		App:  AppConfig{Env: "local", Port: 8080},
		DB:   DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "phoneline", SSLMode: ""},
		Auth: AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected default access ttl, got %s", c.Auth.AccessTokenTTL)
	}
	if c.Line.BusinessTimezone != "Europe/London" || c.Line.DialTimeout != 20*time.Second {
		t.Fatalf("expected line defaults, got %+v", c.Line)
	}
	if c.HasPostgres() != true || c.HasRedis() != false {
		t.Fatalf("unexpected infrastructure flags")
	}
}

func TestLoadFrom_ParsesLineSection(t *testing.T) {
	environ := localEnv()
	environ["BUSINESS_TIMEZONE"] = "America/New_York"
	environ["DIAL_TIMEOUT"] = "25s"
	environ["WEBHOOK_RATE_LIMIT"] = "5"
	environ["PUBLIC_BASE_URL"] = "https://api.example.com"
	environ["ELEVENLABS_STREAM_URL"] = "wss://bridge.example.com/stream"
	environ["LINE_WORKSPACES"] = "+441234567890=acme,+441234567891=globex"

	c, err := LoadFrom(environ)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Line.DialTimeout != 25*time.Second || c.Line.WebhookRateLimit != 5 || c.Line.WebhookBurst != 40 {
		t.Fatalf("unexpected line config: %+v", c.Line)
	}
	if c.Line.ActiveCallTTL != 4*time.Hour || c.Line.SettingsCacheTTL != 30*time.Second {
		t.Fatalf("expected duration defaults, got %+v", c.Line)
	}
	if c.Line.Workspaces["+441234567891"] != "globex" || len(c.Line.Workspaces) != 2 {
		t.Fatalf("unexpected workspaces: %v", c.Line.Workspaces)
	}
	if c.Line.Location().String() != "America/New_York" {
		t.Fatalf("unexpected location %s", c.Line.Location())
	}
	if c.Redis.Port != 6379 {
		t.Fatalf("expected default redis port, got %d", c.Redis.Port)
	}
}

func TestLoadFrom_RejectsBadLineValues(t *testing.T) {
	environ := localEnv()
	environ["BUSINESS_TIMEZONE"] = "Mars/Olympus_Mons"
	environ["DIAL_TIMEOUT"] = "2s"
	environ["ELEVENLABS_STREAM_URL"] = "https://not-a-socket.example.com"

	_, err := LoadFrom(environ)
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"BUSINESS_TIMEZONE", "DIAL_TIMEOUT", "ELEVENLABS_STREAM_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestLoadFrom_ParseErrors(t *testing.T) {
	environ := localEnv()
	environ["APP_PORT"] = "eighty"
	if _, err := LoadFrom(environ); err == nil {
		t.Fatalf("expected parse error for non-numeric port")
	}
}

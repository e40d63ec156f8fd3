package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:   AppConfig{Env: "dev", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "app", Password: "pw", Name: "callpay"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth: AuthConfig{
			JWTSecret:       "jwt-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 30 * 24 * time.Hour,
		},
		RTC: RTCConfig{TokenSecret: "rtc-secret"},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"missing env", func(c *Config) { c.App.Env = "" }, "APP_ENV"},
		{"bad env", func(c *Config) { c.App.Env = "prod" }, "APP_ENV"},
		{"bad port", func(c *Config) { c.App.Port = 0 }, "APP_PORT"},
		{"missing db host", func(c *Config) { c.DB.Host = "" }, "DB_HOST"},
		{"missing db user", func(c *Config) { c.DB.User = "" }, "DB_USER"},
		{"missing db name", func(c *Config) { c.DB.Name = "" }, "DB_NAME"},
		{"bad sslmode", func(c *Config) { c.DB.SSLMode = "maybe" }, "DB_SSLMODE"},
		{"missing redis host", func(c *Config) { c.Redis.Host = "" }, "REDIS_HOST"},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT_SECRET"},
		{"missing rtc secret", func(c *Config) { c.RTC.TokenSecret = "" }, "RTC_TOKEN_SECRET"},
		{"rtc secret equals jwt secret", func(c *Config) { c.RTC.TokenSecret = c.Auth.JWTSecret }, "must differ"},
		{"refresh ttl not longer", func(c *Config) {
			c.Auth.AccessTokenTTL = time.Hour
			c.Auth.RefreshTokenTTL = time.Hour
		}, "JWT_REFRESH_TTL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestValidateProductionRequiresMore(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	err := c.Validate()
	if err == nil {
		t.Fatal("expected errors in production posture")
	}
	for _, want := range []string{"DB_SSLMODE", "JWT_ISSUER", "JWT_AUDIENCE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestWithCallDefaults(t *testing.T) {
	c := validConfig().WithCallDefaults()
	if c.RTC.TokenTTL != 5*time.Minute {
		t.Errorf("rtc token ttl = %s", c.RTC.TokenTTL)
	}
	if c.RTC.IssueTimeout != 3*time.Second {
		t.Errorf("issue timeout = %s", c.RTC.IssueTimeout)
	}
	if c.Call.RingTimeout != 50*time.Second {
		t.Errorf("ring timeout = %s", c.Call.RingTimeout)
	}
	if c.Call.MaxOngoing != 6*time.Hour {
		t.Errorf("max ongoing = %s", c.Call.MaxOngoing)
	}
	if c.Call.ReaperInterval != 30*time.Second {
		t.Errorf("reaper interval = %s", c.Call.ReaperInterval)
	}
	if c.Call.PresenceTTL != 60*time.Second {
		t.Errorf("presence ttl = %s", c.Call.PresenceTTL)
	}

	// Explicit values survive.
	c2 := validConfig()
	c2.Call.RingTimeout = 20 * time.Second
	if got := c2.WithCallDefaults().Call.RingTimeout; got != 20*time.Second {
		t.Errorf("explicit ring timeout overwritten: %s", got)
	}
}

func TestPostgresDSNDefaultsSSLMode(t *testing.T) {
	c := validConfig()
	dsn := c.PostgresDSN()
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Fatalf("dsn %q missing sslmode default", dsn)
	}
}

func TestHTTPAndRedisAddr(t *testing.T) {
	c := validConfig()
	if got := c.HTTPAddr(); got != ":8080" {
		t.Fatalf("http addr = %s", got)
	}
	if got := c.RedisAddr(); got != "localhost:6379" {
		t.Fatalf("redis addr = %s", got)
	}
}

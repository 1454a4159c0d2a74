package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the environment-driven configuration for the service. It
// satisfies the auth.Config interface.
type Config struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
	HTTPAddr        string
	DSN             string
	Debug           bool
}

// LoadConfig reads configuration from the environment. The signing key
// has no default: both the issuer and the validator must share the one
// externally supplied secret.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		SigningKey:      os.Getenv("AUTH_SIGNING_KEY"),
		TokenExpiration: 24,
		Issuer:          envOr("AUTH_ISSUER", "oneblog"),
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		DSN:             envOr("DB_DSN", "file::memory:?cache=shared"),
		Debug:           os.Getenv("DEBUG") != "",
	}

	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("AUTH_SIGNING_KEY is required")
	}

	if raw := os.Getenv("AUTH_TOKEN_EXPIRATION"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("AUTH_TOKEN_EXPIRATION must be a positive number of hours, got %q", raw)
		}
		cfg.TokenExpiration = hours
	}

	if raw := os.Getenv("AUTH_AUDIENCE"); raw != "" {
		for _, aud := range strings.Split(raw, ",") {
			if aud = strings.TrimSpace(aud); aud != "" {
				cfg.Audience = append(cfg.Audience, aud)
			}
		}
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *Config) GetSigningKey() string    { return c.SigningKey }
func (c *Config) GetSigningMethod() string { return "HS256" }
func (c *Config) GetContextKey() string    { return "user" }
func (c *Config) GetTokenExpiration() int  { return c.TokenExpiration }
func (c *Config) GetTokenLookup() string   { return "header:Authorization" }
func (c *Config) GetAuthScheme() string    { return "Bearer" }
func (c *Config) GetIssuer() string        { return c.Issuer }
func (c *Config) GetAudience() []string    { return c.Audience }

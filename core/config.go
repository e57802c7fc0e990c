package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultHost             = "https://api.getmati.com"
	DefaultUserAgent        = "go-mati"
	defaultTokenRenewBefore = 2 * time.Minute
	defaultTransportTimeout = 30 * time.Second
)

type TokenConfig struct {
	// RenewBefore is the headroom before expiry at which a token is no longer
	// attached to requests. Only applies when the server reports expires_in
	// or DefaultTTL is set. Zero falls back to the default when layered by
	// NewService; use WithRenewBefore(0) to disable the window.
	RenewBefore time.Duration `koanf:"renew_before" mapstructure:"renew_before"`
	DefaultTTL  time.Duration `koanf:"default_ttl" mapstructure:"default_ttl"`
}

type TransportConfig struct {
	Timeout          time.Duration `koanf:"timeout" mapstructure:"timeout"`
	MaxResponseBytes int64         `koanf:"max_response_bytes" mapstructure:"max_response_bytes"`
}

type Config struct {
	ClientID      string          `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret  string          `koanf:"client_secret" mapstructure:"client_secret"`
	WebhookSecret string          `koanf:"webhook_secret" mapstructure:"webhook_secret"`
	Host          string          `koanf:"host" mapstructure:"host"`
	UserAgent     string          `koanf:"user_agent" mapstructure:"user_agent"`
	Token         TokenConfig     `koanf:"token" mapstructure:"token"`
	Transport     TransportConfig `koanf:"transport" mapstructure:"transport"`
}

func DefaultConfig() Config {
	return Config{
		Host:      DefaultHost,
		UserAgent: DefaultUserAgent,
		Token: TokenConfig{
			RenewBefore: defaultTokenRenewBefore,
		},
		Transport: TransportConfig{
			Timeout: defaultTransportTimeout,
		},
	}
}

// Validate checks a fully resolved configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("core: client_id is required")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return fmt.Errorf("core: client_secret is required")
	}
	return c.validateShape()
}

// validateShape checks the fields that must be well formed whenever present,
// so partially loaded layers can be checked before credentials are merged in.
func (c Config) validateShape() error {
	if host := strings.TrimSpace(c.Host); host != "" {
		parsed, err := url.Parse(host)
		if err != nil {
			return fmt.Errorf("core: invalid host: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("core: invalid host %q: scheme and host are required", host)
		}
	}
	if c.Token.RenewBefore < 0 {
		return fmt.Errorf("core: token.renew_before must not be negative")
	}
	if c.Token.DefaultTTL < 0 {
		return fmt.Errorf("core: token.default_ttl must not be negative")
	}
	if c.Transport.Timeout < 0 {
		return fmt.Errorf("core: transport.timeout must not be negative")
	}
	if c.Transport.MaxResponseBytes < 0 {
		return fmt.Errorf("core: transport.max_response_bytes must not be negative")
	}
	return nil
}

func (c Config) resolvedHost() string {
	host := strings.TrimRight(strings.TrimSpace(c.Host), "/")
	if host == "" {
		return DefaultHost
	}
	return host
}

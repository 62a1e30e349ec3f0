package google

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultJWKSURL is Google's published signing key set.
	DefaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// DefaultIssuers returns the issuer values Google uses on ID tokens.
// Both forms appear in the wild.
func DefaultIssuers() []string {
	return []string{"accounts.google.com", "https://accounts.google.com"}
}

// Config holds Google ID token verification options.
type Config struct {
	// ClientID is the OAuth client ID the token audience must match.
	ClientID string

	// JWKSURL overrides the key set endpoint (optional).
	JWKSURL string

	// Issuers overrides the accepted issuer values (optional).
	Issuers []string

	// RefreshInterval is how often the key set refreshes in the
	// background. Default: 1 hour.
	RefreshInterval time.Duration

	// RefreshRateLimit bounds refreshes triggered by unknown key ids.
	// Default: 5 minutes.
	RefreshRateLimit time.Duration

	// RefreshTimeout bounds a single key set fetch. Default: 10 seconds.
	RefreshTimeout time.Duration

	// KeyFunc overrides key resolution entirely. When set, no JWKS
	// client is created; intended for tests and custom key pinning.
	KeyFunc jwt.Keyfunc
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(clientID string) Config {
	return Config{
		ClientID:         clientID,
		JWKSURL:          DefaultJWKSURL,
		Issuers:          DefaultIssuers(),
		RefreshInterval:  time.Hour,
		RefreshRateLimit: 5 * time.Minute,
		RefreshTimeout:   10 * time.Second,
	}
}

func (c Config) jwksURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return DefaultJWKSURL
}

func (c Config) issuers() []string {
	if len(c.Issuers) > 0 {
		return c.Issuers
	}
	return DefaultIssuers()
}

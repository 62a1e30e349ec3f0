package signin

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// AppConfig is the environment backed configuration for the service.
// It implements the Config interface consumed by the package.
type AppConfig struct {
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":3000"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:signin.db?cache=shared"`

	SigningKey         string   `env:"SIGNING_KEY,required"`
	PreviousSigningKey string   `env:"PREVIOUS_SIGNING_KEY"`
	SigningMethod      string   `env:"SIGNING_METHOD" envDefault:"HS256"`
	TokenExpiration    int      `env:"TOKEN_EXPIRATION" envDefault:"72"`
	TokenIssuer        string   `env:"TOKEN_ISSUER" envDefault:"go-signin"`
	TokenAudience      []string `env:"TOKEN_AUDIENCE" envSeparator:"," envDefault:"go-signin"`

	ContextKey  string `env:"SESSION_CONTEXT_KEY" envDefault:"session"`
	TokenLookup string `env:"TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme  string `env:"AUTH_SCHEME" envDefault:"Bearer"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID,required"`
}

var _ Config = (*AppConfig)(nil)

// LoadConfig parses the configuration from the environment.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse environment configuration")
	}
	return cfg, nil
}

func (c *AppConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *AppConfig) GetSigningMethod() string {
	return c.SigningMethod
}

func (c *AppConfig) GetContextKey() string {
	return c.ContextKey
}

func (c *AppConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *AppConfig) GetTokenLookup() string {
	return c.TokenLookup
}

func (c *AppConfig) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *AppConfig) GetIssuer() string {
	return c.TokenIssuer
}

func (c *AppConfig) GetAudience() []string {
	return c.TokenAudience
}

package signin

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator turns a Google issued identity assertion into a local
// session token bound to a user record.
type Authenticator interface {
	Authenticate(ctx context.Context, rawIDToken string) (*AuthResult, error)
	SessionFromToken(token string) (AuthClaims, error)
}

// IdentityVerifier validates an externally issued identity assertion
// against the provider's key set and extracts its verified claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*IdentityClaims, error)
}

// IdentityClaims is the verified claim set extracted from an identity
// assertion. Consumed once per authentication call, never stored.
type IdentityClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
	Issuer        string
	Audience      []string
	IssuedAt      int64
	ExpiresAt     int64
}

// TokenService mints and validates locally signed session tokens.
type TokenService interface {
	TokenValidator
	Generate(user *User) (string, error)
	SignClaims(claims *SessionClaims) (string, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SIGNIN "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SIGNIN "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SIGNIN "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SIGNIN "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	signin "github.com/goliatone/go-signin"
)

// TokenVerifier validates Google issued ID tokens using JWKS.
type TokenVerifier struct {
	config  Config
	keyFunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
	issuers map[string]struct{}
}

var _ signin.IdentityVerifier = (*TokenVerifier)(nil)

// NewTokenVerifier creates a verifier for Google ID tokens. Unless
// Config.KeyFunc is set it starts a background refreshing JWKS client;
// call Close to stop it.
func NewTokenVerifier(cfg Config) (*TokenVerifier, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("google: client ID is required")
	}

	v := &TokenVerifier{
		config:  cfg,
		issuers: map[string]struct{}{},
	}

	for _, issuer := range cfg.issuers() {
		v.issuers[issuer] = struct{}{}
	}

	if cfg.KeyFunc != nil {
		v.keyFunc = cfg.KeyFunc
		return v, nil
	}

	jwks, err := keyfunc.Get(cfg.jwksURL(), keyfuncOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("google: failed to get JWKS: %w", err)
	}

	v.jwks = jwks
	v.keyFunc = jwks.Keyfunc

	return v, nil
}

// Close stops the background JWKS refresh, if one was started.
func (v *TokenVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// Verify implements signin.IdentityVerifier.
func (v *TokenVerifier) Verify(ctx context.Context, rawIDToken string) (*signin.IdentityClaims, error) {
	claims := &idTokenClaims{}

	token, err := jwt.ParseWithClaims(rawIDToken, claims, v.keyFunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.config.ClientID),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return nil, verificationError(err)
	}

	if !token.Valid {
		return nil, verificationError(fmt.Errorf("token failed validation"))
	}

	if _, ok := v.issuers[claims.Issuer]; !ok {
		return nil, verificationError(fmt.Errorf("unexpected issuer: %q", claims.Issuer))
	}

	out := &signin.IdentityClaims{
		Subject:       claims.RegisteredClaims.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
		Name:          claims.Name,
		Picture:       claims.Picture,
		Issuer:        claims.Issuer,
		Audience:      claims.Audience,
	}

	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}

	return out, nil
}

func keyfuncOptions(cfg Config) keyfunc.Options {
	refreshInterval := cfg.RefreshInterval
	if refreshInterval == 0 {
		refreshInterval = time.Hour
	}

	refreshRateLimit := cfg.RefreshRateLimit
	if refreshRateLimit == 0 {
		refreshRateLimit = 5 * time.Minute
	}

	refreshTimeout := cfg.RefreshTimeout
	if refreshTimeout == 0 {
		refreshTimeout = 10 * time.Second
	}

	return keyfunc.Options{
		RefreshInterval:   refreshInterval,
		RefreshRateLimit:  refreshRateLimit,
		RefreshTimeout:    refreshTimeout,
		RefreshUnknownKID: true,
	}
}

// idTokenClaims is the claim set Google puts on ID tokens.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string    `json:"email"`
	EmailVerified looseBool `json:"email_verified"`
	Name          string    `json:"name"`
	Picture       string    `json:"picture"`
}

// looseBool accepts both boolean and string encodings. Some Google
// surfaces emit email_verified as the string "true".
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	switch string(trimmed) {
	case "true", `"true"`:
		*b = true
		return nil
	case "false", `"false"`, "null":
		*b = false
		return nil
	}

	var parsed bool
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}

	*b = looseBool(parsed)
	return nil
}

func verificationError(err error) error {
	clone := signin.ErrIdentityVerificationFailed.Clone()
	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"provider": "google",
		"cause":    err.Error(),
	})
}

package signin_test

import (
	"testing"

	signin "github.com/goliatone/go-signin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("loads required values and defaults", func(t *testing.T) {
		t.Setenv("SIGNING_KEY", "env-signing-key")
		t.Setenv("GOOGLE_CLIENT_ID", "env-client-id")

		cfg, err := signin.LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "env-signing-key", cfg.GetSigningKey())
		assert.Equal(t, "env-client-id", cfg.GoogleClientID)

		assert.Equal(t, ":3000", cfg.ListenAddr)
		assert.Equal(t, "HS256", cfg.GetSigningMethod())
		assert.Equal(t, signin.DefaultTokenExpiration, cfg.GetTokenExpiration())
		assert.Equal(t, "go-signin", cfg.GetIssuer())
		assert.Equal(t, []string{"go-signin"}, cfg.GetAudience())
		assert.Equal(t, "session", cfg.GetContextKey())
		assert.Equal(t, "header:Authorization", cfg.GetTokenLookup())
		assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	})

	t.Run("splits the audience list", func(t *testing.T) {
		t.Setenv("SIGNING_KEY", "env-signing-key")
		t.Setenv("GOOGLE_CLIENT_ID", "env-client-id")
		t.Setenv("TOKEN_AUDIENCE", "web,mobile")

		cfg, err := signin.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"web", "mobile"}, cfg.GetAudience())
	})

	t.Run("fails without the signing key", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "env-client-id")

		_, err := signin.LoadConfig()
		assert.Error(t, err)
	})
}

package signin_test

import (
	"context"
	"database/sql"

	repository "github.com/goliatone/go-repository-bun"
	signin "github.com/goliatone/go-signin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// testLogger swallows log output during tests
type testLogger struct{}

func (testLogger) Debug(format string, args ...any) {}
func (testLogger) Info(format string, args ...any)  {}
func (testLogger) Warn(format string, args ...any)  {}
func (testLogger) Error(format string, args ...any) {}

// MockIdentityVerifier implements signin.IdentityVerifier
type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, rawIDToken string) (*signin.IdentityClaims, error) {
	args := m.Called(ctx, rawIDToken)
	if claims, ok := args.Get(0).(*signin.IdentityClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUsers implements signin.Users for the methods the flows touch.
// The embedded interface covers the rest of the repository surface.
type MockUsers struct {
	mock.Mock
	signin.Users
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*signin.User, error) {
	args := m.Called(ctx, identifier)
	if user, ok := args.Get(0).(*signin.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetOrRegisterTx(ctx context.Context, tx bun.IDB, record *signin.User) (*signin.User, signin.Outcome, error) {
	args := m.Called(ctx, tx, record)
	user, _ := args.Get(0).(*signin.User)
	outcome, _ := args.Get(1).(signin.Outcome)
	return user, outcome, args.Error(2)
}

func (m *MockUsers) SaveTx(ctx context.Context, tx bun.IDB, record *signin.User) (*signin.User, error) {
	args := m.Called(ctx, tx, record)
	if user, ok := args.Get(0).(*signin.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Save(ctx context.Context, record *signin.User) (*signin.User, error) {
	args := m.Called(ctx, record)
	if user, ok := args.Get(0).(*signin.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockRepositoryManager implements signin.RepositoryManager. RunInTx
// executes the callback with a zero transaction so inner errors
// propagate the way they do against a real database.
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if err := args.Error(0); err != nil {
		return err
	}
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Users() signin.Users {
	args := m.Called()
	return args.Get(0).(signin.Users)
}

// MockAuthenticator implements signin.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, rawIDToken string) (*signin.AuthResult, error) {
	args := m.Called(ctx, rawIDToken)
	if result, ok := args.Get(0).(*signin.AuthResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) SessionFromToken(token string) (signin.AuthClaims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(signin.AuthClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockProfiles implements signin.Profiles
type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) Get(ctx context.Context, claims signin.AuthClaims) (*signin.ProfileView, error) {
	args := m.Called(ctx, claims)
	if view, ok := args.Get(0).(*signin.ProfileView); ok {
		return view, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfiles) Update(ctx context.Context, claims signin.AuthClaims, update signin.ProfileUpdate) (*signin.ProfileView, error) {
	args := m.Called(ctx, claims, update)
	if view, ok := args.Get(0).(*signin.ProfileView); ok {
		return view, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfiles) Deactivate(ctx context.Context, claims signin.AuthClaims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockProfiles) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// testConfig implements signin.Config
type testConfig struct {
	signingKey      string
	signingMethod   string
	contextKey      string
	tokenExpiration int
	tokenLookup     string
	authScheme      string
	issuer          string
	audience        []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:      "test-signing-key",
		signingMethod:   "HS256",
		contextKey:      "session",
		tokenExpiration: 24,
		tokenLookup:     "header:Authorization",
		authScheme:      "Bearer",
		issuer:          "test-issuer",
		audience:        []string{"test-audience"},
	}
}

func (c *testConfig) GetSigningKey() string    { return c.signingKey }
func (c *testConfig) GetSigningMethod() string { return c.signingMethod }
func (c *testConfig) GetContextKey() string    { return c.contextKey }
func (c *testConfig) GetTokenExpiration() int  { return c.tokenExpiration }
func (c *testConfig) GetTokenLookup() string   { return c.tokenLookup }
func (c *testConfig) GetAuthScheme() string    { return c.authScheme }
func (c *testConfig) GetIssuer() string        { return c.issuer }
func (c *testConfig) GetAudience() []string    { return c.audience }

package signin

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// AuthResult is what a successful authentication hands back: the record
// the session is bound to, the minted token, and whether the call
// created the record or found it.
type AuthResult struct {
	User    *User
	Token   string
	Outcome Outcome
}

type Auther struct {
	verifier     IdentityVerifier
	repo         RepositoryManager
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(verifier IdentityVerifier, repo RepositoryManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		jwt.ClaimStrings(opts.GetAudience()),
		defLogger{},
	)

	return &Auther{
		verifier:     verifier,
		repo:         repo,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the service used to mint and validate
// session tokens.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Authenticate verifies the identity assertion, reconciles the user
// record it names, and mints a session token. Exactly one record is
// created or mutated per call.
func (s *Auther) Authenticate(ctx context.Context, rawIDToken string) (*AuthResult, error) {
	if rawIDToken == "" {
		return nil, errors.New("identity assertion is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	claims, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		s.logger.Error("Authenticate identity verification error", "error", err)
		return nil, asAuthError(err)
	}

	if !claims.EmailVerified {
		s.logger.Warn("Authenticate rejected unverified email", "subject", claims.Subject)
		return nil, ErrIdentityNotVerified
	}

	var user *User
	var outcome Outcome

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &User{
			ProviderSubject: claims.Subject,
			Email:           NormalizeEmail(claims.Email),
			Name:            TruncateName(claims.Name),
			Picture:         claims.Picture,
		}

		var txErr error
		user, outcome, txErr = s.repo.Users().GetOrRegisterTx(ctx, tx, record)
		if txErr != nil {
			return txErr
		}

		if outcome == OutcomeFound {
			if !user.IsActive {
				return ErrUserDeactivated.Clone().WithMetadata(map[string]any{
					"user_id": user.ID.String(),
				})
			}

			if refreshFromClaims(user, claims) {
				if user, txErr = s.repo.Users().SaveTx(ctx, tx, user); txErr != nil {
					return txErr
				}
			}
		}

		return nil
	})

	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "authentication transaction failed")
	}

	token, err := s.tokenService.Generate(user)
	if err != nil {
		s.logger.Error("Authenticate token generation error", "error", err)
		return nil, err
	}

	s.logger.Info("Authenticate success", "user_id", user.ID.String(), "outcome", string(outcome))

	return &AuthResult{
		User:    user,
		Token:   token,
		Outcome: outcome,
	}, nil
}

// SessionFromToken validates a presented session token and returns its claims.
func (s *Auther) SessionFromToken(raw string) (AuthClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}

// refreshFromClaims updates the mutable profile fields from the
// assertion. Email and provider subject stay untouched.
func refreshFromClaims(user *User, claims *IdentityClaims) bool {
	changed := false

	if name := TruncateName(claims.Name); name != "" && name != user.Name {
		user.Name = name
		changed = true
	}

	if claims.Picture != "" && claims.Picture != user.Picture {
		user.Picture = claims.Picture
		changed = true
	}

	return changed
}

// asAuthError folds verifier failures into the authentication taxonomy
// while preserving rich errors that already carry one.
func asAuthError(err error) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}

	clone := ErrIdentityVerificationFailed.Clone()
	clone.Source = err
	return clone
}

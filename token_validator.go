package signin

// TokenValidator validates tokens and extracts claims without tying
// callers to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// KeyRotationValidator accepts sessions signed under any key still in
// the rotation window. Order validators newest key first: a malformed
// result means the token was signed under a different key and the next
// validator gets a try, while expiry and every other failure are final
// no matter which key minted the token.
type KeyRotationValidator struct {
	validators []TokenValidator
}

// NewKeyRotationValidator builds the rotation chain, dropping nil
// entries so optional previous-key slots can be passed through as-is.
func NewKeyRotationValidator(validators ...TokenValidator) *KeyRotationValidator {
	filtered := make([]TokenValidator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			filtered = append(filtered, v)
		}
	}
	return &KeyRotationValidator{validators: filtered}
}

// Validate satisfies the TokenValidator interface.
func (m *KeyRotationValidator) Validate(tokenString string) (AuthClaims, error) {
	var lastErr error
	for _, v := range m.validators {
		claims, err := v.Validate(tokenString)
		if err == nil {
			return claims, nil
		}
		if !IsMalformedError(err) {
			return nil, err
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrTokenMalformed
}

// NewRotatingTokenService wraps the active token service for a signing
// key rollover: new sessions always mint under the active key, while
// presented tokens validate against the active key first and then any
// previous ones still honored.
func NewRotatingTokenService(active TokenService, previous ...TokenValidator) TokenService {
	chain := append([]TokenValidator{active}, previous...)

	return &rotatingTokenService{
		TokenService: active,
		chain:        NewKeyRotationValidator(chain...),
	}
}

type rotatingTokenService struct {
	TokenService
	chain TokenValidator
}

func (s *rotatingTokenService) Validate(tokenString string) (AuthClaims, error) {
	return s.chain.Validate(tokenString)
}

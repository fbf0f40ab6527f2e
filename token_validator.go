package accounts

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrUnableToMapClaims
	}
	return f(tokenString)
}

// MultiTokenValidator runs a chain of validators in order until one accepts
// the token. A malformed verdict moves on to the next validator, any other
// failure (expired, bad signature) is final. Useful during signing-key
// rotation, where tokens minted under the previous key must stay valid.
type MultiTokenValidator []TokenValidator

// NewMultiTokenValidator drops nil entries and returns the chain.
func NewMultiTokenValidator(validators ...TokenValidator) MultiTokenValidator {
	chain := make(MultiTokenValidator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			chain = append(chain, v)
		}
	}
	return chain
}

// Validate satisfies the TokenValidator interface.
func (m MultiTokenValidator) Validate(tokenString string) (AuthClaims, error) {
	var lastErr error
	for _, v := range m {
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

package accounts

import (
	"context"
	"reflect"
)

type Auther struct {
	provider       IdentityProvider
	logger         Logger
	tokenService   TokenService
	tokenValidator TokenValidator
	activitySink   ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		logger:       defLogger{},
		tokenService: tokenService,
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a signed token with the public
// profile. Every failure comes back as the same opaque error so the response
// never reveals whether the email exists, the password is wrong, or the
// account is throttled. The specific reason goes to the logger and sink.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", email, map[string]any{
			"reason": err.Error(),
		})
		return nil, ErrAuthenticationFailed
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", email, map[string]any{
			"reason": ErrIdentityNotFound.Error(),
		})
		return nil, ErrAuthenticationFailed
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, identity.ID(), email, map[string]any{
			"reason": err.Error(),
		})
		return nil, ErrAuthenticationFailed
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, identity.ID(), email, nil)

	return &LoginResult{
		Token:   token,
		Profile: publicFromIdentity(identity),
	}, nil
}

// IsAccountActive reports whether the account behind the email has been
// activated. Unknown accounts report false.
func (s *Auther) IsAccountActive(ctx context.Context, email string) bool {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, email)
	if err != nil {
		s.logger.Debug("IsAccountActive lookup failed", "error", err)
		return false
	}

	if aware, ok := identity.(activeAwareIdentity); ok {
		return aware.Active()
	}

	return false
}

// SessionFromToken validates a raw token and returns its session view.
func (s Auther) SessionFromToken(raw string) (Session, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

// IdentityFromToken validates a raw token and resolves the identity it names.
func (s *Auther) IdentityFromToken(ctx context.Context, raw string) (Identity, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Error("IdentityFromToken validation failed", "error", err)
		return nil, err
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.Subject())
	if err != nil {
		s.logger.Error("IdentityFromToken find identity by identifier: %s", err)
		return nil, err
	}

	return identity, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, profileID, email string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)

	recordActivity(ctx, sink, s.logger, ActivityEvent{
		EventType: eventType,
		ProfileID: profileID,
		Email:     email,
		Metadata:  metadata,
	})
}

type activeAwareIdentity interface {
	Active() bool
}

type publicAwareIdentity interface {
	Public() *PublicProfile
}

func publicFromIdentity(identity Identity) *PublicProfile {
	if pa, ok := identity.(publicAwareIdentity); ok {
		return pa.Public()
	}

	return &PublicProfile{
		Email:    identity.Email(),
		FullName: identity.FullName(),
	}
}

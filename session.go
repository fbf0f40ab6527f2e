package accounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is a decoded token presented as a read only view.
type Session interface {
	GetProfileID() string
	GetEmail() string
	GetAudience() []string
	GetIssuer() string
	GetIssuedAt() *time.Time
}

var _ Session = &SessionObject{}

type SessionObject struct {
	ProfileID      string     `json:"profile_id,omitempty"`
	Email          string     `json:"email,omitempty"`
	Audience       []string   `json:"audience,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetProfileID() string {
	return s.ProfileID
}

func (s *SessionObject) GetProfileUUID() (uuid.UUID, error) {
	return uuid.Parse(s.ProfileID)
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetAudience() []string {
	return s.Audience
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

// TODO: enable only in development!
func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"profile=%s email=%s aud=%v iss=%s iat=%s",
		s.ProfileID,
		s.Email,
		s.Audience,
		s.Issuer,
		issuedAt,
	)
}

// sessionFromAuthClaims creates a SessionObject from AuthClaims
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToMapClaims
	}

	var audience []string
	var issuer string
	if jwtClaims, ok := claims.(*JWTClaims); ok {
		issuer = jwtClaims.RegisteredClaims.Issuer
		audience = append(audience, jwtClaims.RegisteredClaims.Audience...)
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	return &SessionObject{
		ProfileID:      claims.ProfileID(),
		Email:          claims.Subject(),
		Audience:       audience,
		Issuer:         issuer,
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}

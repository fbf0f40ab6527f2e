package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profile is the account model
type Profile struct {
	bun.BaseModel   `bun:"table:profiles,alias:prf"`
	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FullName        string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	Email           string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash    string     `bun:"password_hash" json:"-"`
	ProfileImageURL string     `bun:"profile_image_url" json:"profile_image_url,omitempty"`
	IsActive        bool       `bun:"is_active" json:"is_active"`
	ActivationToken *string    `bun:"activation_token,nullzero" json:"-"`
	LoginAttempts   int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt  *time.Time `bun:"login_attempt_at" json:"-"`
	LoggedInAt      *time.Time `bun:"loggedin_at" json:"-"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasActivationToken reports whether the profile still carries a token
func (p *Profile) HasActivationToken() bool {
	return p != nil && p.ActivationToken != nil && *p.ActivationToken != ""
}

// PublicProfile is the only representation of a Profile that crosses the
// service boundary. It carries no password hash and no activation token.
type PublicProfile struct {
	ID              uuid.UUID  `json:"id,omitempty"`
	FullName        string     `json:"full_name,omitempty"`
	Email           string     `json:"email,omitempty"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// ToPublic maps a Profile to its outward projection. It is a pure mapping,
// no defaults are filled in.
func ToPublic(p *Profile) *PublicProfile {
	if p == nil {
		return nil
	}

	return &PublicProfile{
		ID:              p.ID,
		FullName:        p.FullName,
		Email:           p.Email,
		ProfileImageURL: p.ProfileImageURL,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// ProfileTracker is the store surface the provider needs
type ProfileTracker interface {
	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*Profile, error)
	TrackAttemptedLogin(ctx context.Context, profile *Profile) error
	TrackSuccessfulLogin(ctx context.Context, profile *Profile) error
}

// ProfileProvider resolves profiles into identities
type ProfileProvider struct {
	store  ProfileTracker
	logger Logger
}

// MaxLoginAttempts is the maximun number of attempts a profile gets
// in a period
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "24h"

// NewProfileProvider will create a new ProfileProvider
func NewProfileProvider(store ProfileTracker) *ProfileProvider {
	return &ProfileProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *ProfileProvider) WithLogger(l Logger) *ProfileProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the profile, compare to the password, and return identity
func (u ProfileProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	profile, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve profile during verification")
	}

	if profile == nil {
		return nil, ErrIdentityNotFound
	}

	if profile.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*profile.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if expired {
			profile.LoginAttempts = 0
		}
	}

	// too many attempts in the given window, cool off!
	if profile.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, profile.PasswordHash); err != nil {
		// increment the login_attempts counter and login_attempt_at
		if err2 := u.store.TrackAttemptedLogin(ctx, profile); err2 != nil {
			return nil, errors.Wrap(err2, errors.CategoryInternal, "failed to track login attempt")
		}

		return nil, ErrMismatchedHashAndPassword
	}

	// reset the login_attempts counter and login_attempt_at
	if err := u.store.TrackSuccessfulLogin(ctx, profile); err != nil {
		u.logger.Error("failed to track successful login", "error", err)
	}

	return newAuthIdentity(profile), nil
}

func (u ProfileProvider) FindIdentityByIdentifier(ctx context.Context, email string) (Identity, error) {
	profile, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if profile == nil {
		return nil, ErrIdentityNotFound
	}

	return newAuthIdentity(profile), nil
}

type authIdentity struct {
	id       string
	email    string
	fullName string
	active   bool
	public   *PublicProfile
}

func newAuthIdentity(profile *Profile) authIdentity {
	return authIdentity{
		id:       profile.ID.String(),
		email:    profile.Email,
		fullName: profile.FullName,
		active:   profile.IsActive,
		public:   ToPublic(profile),
	}
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) FullName() string {
	return a.fullName
}

func (a authIdentity) Active() bool {
	return a.active
}

func (a authIdentity) Public() *PublicProfile {
	return a.public
}

var _ Identity = authIdentity{}

package accounts

// ProfileIdentity adapts a Profile into the Identity interface for token generation.
type ProfileIdentity struct {
	profile *Profile
}

// NewIdentityFromProfile returns an Identity adapter for the provided profile.
func NewIdentityFromProfile(profile *Profile) Identity {
	if profile == nil {
		return nil
	}
	return ProfileIdentity{profile: profile}
}

// ID returns the profile's ID as a string.
func (u ProfileIdentity) ID() string {
	if u.profile == nil {
		return ""
	}
	return u.profile.ID.String()
}

// Email returns the profile's email address.
func (u ProfileIdentity) Email() string {
	if u.profile == nil {
		return ""
	}
	return u.profile.Email
}

// FullName returns the profile's display name.
func (u ProfileIdentity) FullName() string {
	if u.profile == nil {
		return ""
	}
	return u.profile.FullName
}

// Active reports whether the profile has been activated.
func (u ProfileIdentity) Active() bool {
	if u.profile == nil {
		return false
	}
	return u.profile.IsActive
}

// Public returns the public projection of the profile.
func (u ProfileIdentity) Public() *PublicProfile {
	if u.profile == nil {
		return nil
	}
	return ToPublic(u.profile)
}

package accounts_test

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	accounts "github.com/goliatone/go-accounts"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockAuthenticator implements accounts.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*accounts.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.LoginResult), args.Error(1)
}

func (m *MockAuthenticator) IsAccountActive(ctx context.Context, email string) bool {
	args := m.Called(ctx, email)
	return args.Bool(0)
}

// MockProfileTracker implements accounts.ProfileTracker
type MockProfileTracker struct {
	mock.Mock
}

func (m *MockProfileTracker) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*accounts.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Profile), args.Error(1)
}

func (m *MockProfileTracker) TrackAttemptedLogin(ctx context.Context, profile *accounts.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileTracker) TrackSuccessfulLogin(ctx context.Context, profile *accounts.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// fakeProfiles is an in memory Profiles store for command handler tests. The
// embedded repository interface covers the methods the fakes never exercise.
type fakeProfiles struct {
	repository.Repository[*accounts.Profile]

	mu      sync.Mutex
	byID    map[string]*accounts.Profile
	created []*accounts.Profile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		byID: map[string]*accounts.Profile{},
	}
}

func (f *fakeProfiles) put(p *accounts.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[p.ID.String()] = p
}

func (f *fakeProfiles) Register(ctx context.Context, profile *accounts.Profile) (*accounts.Profile, error) {
	return f.RegisterTx(ctx, nil, profile)
}

func (f *fakeProfiles) RegisterTx(ctx context.Context, tx bun.IDB, profile *accounts.Profile) (*accounts.Profile, error) {
	return f.CreateTx(ctx, tx, profile)
}

func (f *fakeProfiles) Create(ctx context.Context, record *accounts.Profile, criteria ...repository.InsertCriteria) (*accounts.Profile, error) {
	return f.CreateTx(ctx, nil, record, criteria...)
}

func (f *fakeProfiles) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.Profile, criteria ...repository.InsertCriteria) (*accounts.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, record.Email) {
			return nil, accounts.ErrDuplicateEmail
		}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	f.byID[record.ID.String()] = record
	f.created = append(f.created, record)

	return record, nil
}

func (f *fakeProfiles) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*accounts.Profile, error) {
	return f.GetByEmailTx(ctx, nil, email, criteria...)
}

func (f *fakeProfiles) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*accounts.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.byID {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}

	return nil, repository.NewRecordNotFound()
}

func (f *fakeProfiles) GetByActivationToken(ctx context.Context, token string) (*accounts.Profile, error) {
	return f.GetByActivationTokenTx(ctx, nil, token)
}

func (f *fakeProfiles) GetByActivationTokenTx(ctx context.Context, tx bun.IDB, token string) (*accounts.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.byID {
		if p.ActivationToken != nil && *p.ActivationToken == token {
			return p, nil
		}
	}

	return nil, repository.NewRecordNotFound()
}

func (f *fakeProfiles) UpdateTx(ctx context.Context, tx bun.IDB, record *accounts.Profile, criteria ...repository.UpdateCriteria) (*accounts.Profile, error) {
	f.put(record)
	return record, nil
}

func (f *fakeProfiles) TrackAttemptedLogin(ctx context.Context, profile *accounts.Profile) error {
	return f.TrackAttemptedLoginTx(ctx, nil, profile)
}

func (f *fakeProfiles) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, profile *accounts.Profile) error {
	profile.LoginAttempts++
	now := time.Now()
	profile.LoginAttemptAt = &now
	f.put(profile)
	return nil
}

func (f *fakeProfiles) TrackSuccessfulLogin(ctx context.Context, profile *accounts.Profile) error {
	return f.TrackSuccessfulLoginTx(ctx, nil, profile)
}

func (f *fakeProfiles) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, profile *accounts.Profile) error {
	profile.LoginAttempts = 0
	profile.LoginAttemptAt = nil
	f.put(profile)
	return nil
}

var _ accounts.Profiles = (*fakeProfiles)(nil)

// fakeRepoManager hands the fake store to command handlers. RunInTx invokes
// the callback directly, the fakes ignore the transaction handle.
type fakeRepoManager struct {
	profiles *fakeProfiles
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{profiles: newFakeProfiles()}
}

func (f *fakeRepoManager) Validate() error { return nil }

func (f *fakeRepoManager) MustValidate() {}

func (f *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn(ctx, bun.Tx{})
	}
}

func (f *fakeRepoManager) Profiles() accounts.Profiles {
	return f.profiles
}

var _ accounts.RepositoryManager = (*fakeRepoManager)(nil)

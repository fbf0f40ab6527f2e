package accounts_test

import (
	"context"
	"database/sql"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteCreateProfiles = `CREATE TABLE profiles (
    id TEXT NOT NULL PRIMARY KEY,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT,
    profile_image_url TEXT,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    activation_token TEXT,
    login_attempts INTEGER NOT NULL DEFAULT 0,
    login_attempt_at TIMESTAMP NULL,
    loggedin_at TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

func setupProfilesRepo(t *testing.T) (accounts.Profiles, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateProfiles)
	require.NoError(t, err)

	_, err = bunDB.Exec(`CREATE UNIQUE INDEX idx_profiles_activation_token
		ON profiles (activation_token) WHERE activation_token IS NOT NULL;`)
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
	}

	return accounts.NewProfilesRepository(bunDB), cleanup
}

func seedProfile(t *testing.T, repo accounts.Profiles, email, token string) *accounts.Profile {
	t.Helper()

	record := &accounts.Profile{
		FullName:     "Ann Smith",
		Email:        email,
		PasswordHash: "$2a$04$notarealhashnotarealhash",
	}
	if token != "" {
		record.ActivationToken = &token
	}

	created, err := repo.Register(context.Background(), record)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	return created
}

func TestProfilesRegister(t *testing.T) {
	repo, cleanup := setupProfilesRepo(t)
	defer cleanup()

	ctx := context.Background()

	created := seedProfile(t, repo, "ann@example.com", uuid.NewString())

	t.Run("assigns an id", func(t *testing.T) {
		assert.NotEqual(t, uuid.Nil, created.ID)
	})

	t.Run("duplicate email maps to the conflict error", func(t *testing.T) {
		_, err := repo.Register(ctx, &accounts.Profile{
			FullName:     "Other Ann",
			Email:        "ann@example.com",
			PasswordHash: "hash",
		})
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryConflict, richErr.Category)
		assert.Equal(t, "DUPLICATE_EMAIL", richErr.TextCode)
	})

	t.Run("lookup by email after register", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})
}

func TestProfilesGetByEmail(t *testing.T) {
	repo, cleanup := setupProfilesRepo(t)
	defer cleanup()

	ctx := context.Background()
	seedProfile(t, repo, "ann@example.com", "")

	t.Run("found", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", got.Email)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "  ann@example.com ")
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", got.Email)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestProfilesGetByActivationToken(t *testing.T) {
	repo, cleanup := setupProfilesRepo(t)
	defer cleanup()

	ctx := context.Background()
	token := uuid.NewString()
	created := seedProfile(t, repo, "ann@example.com", token)

	t.Run("found", func(t *testing.T) {
		got, err := repo.GetByActivationToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("unknown token is not found", func(t *testing.T) {
		_, err := repo.GetByActivationToken(ctx, uuid.NewString())
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestProfilesLoginTracking(t *testing.T) {
	repo, cleanup := setupProfilesRepo(t)
	defer cleanup()

	ctx := context.Background()
	created := seedProfile(t, repo, "ann@example.com", "")

	require.NoError(t, repo.TrackAttemptedLogin(ctx, created))
	require.NoError(t, repo.TrackAttemptedLogin(ctx, &accounts.Profile{
		ID:            created.ID,
		LoginAttempts: 1,
	}))

	got, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, got.LoginAttempts)
	assert.NotNil(t, got.LoginAttemptAt)

	require.NoError(t, repo.TrackSuccessfulLogin(ctx, got))

	got, err = repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, got.LoginAttempts)
	assert.Nil(t, got.LoginAttemptAt)
	assert.NotNil(t, got.LoggedInAt)
}

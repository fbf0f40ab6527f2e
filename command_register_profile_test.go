package accounts_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterProfileHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("registers an inactive profile with an activation token", func(t *testing.T) {
		repo := newFakeRepoManager()

		var sent []accounts.Message
		notifier := accounts.NotifierFunc(func(ctx context.Context, msg accounts.Message) error {
			sent = append(sent, msg)
			return nil
		})

		handler := accounts.NewRegisterProfileHandler(repo, "https://app.example.com",
			accounts.WithRegistrationNotifier(notifier, accounts.DeliveryRequired),
		)

		var public *accounts.PublicProfile
		err := handler.Execute(ctx, accounts.RegisterProfileMessage{
			FullName: "Ann Smith",
			Email:    "ann@example.com",
			Password: "password123",
			OnResponse: func(p *accounts.PublicProfile) {
				public = p
			},
		})
		require.NoError(t, err)

		created, err := repo.Profiles().GetByEmail(ctx, "ann@example.com")
		require.NoError(t, err)

		assert.False(t, created.IsActive)
		assert.True(t, created.HasActivationToken())
		assert.NotEqual(t, "password123", created.PasswordHash)
		assert.NoError(t, accounts.ComparePasswordAndHash("password123", created.PasswordHash))

		require.NotNil(t, public)
		assert.Equal(t, "ann@example.com", public.Email)
		assert.False(t, public.IsActive)

		require.Len(t, sent, 1)
		assert.Equal(t, "ann@example.com", sent[0].To)
		assert.Contains(t, sent[0].Body, "/api/v1.0/activate?token="+*created.ActivationToken)
	})

	t.Run("rejects an invalid payload", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := accounts.NewRegisterProfileHandler(repo, "https://app.example.com")

		err := handler.Execute(ctx, accounts.RegisterProfileMessage{
			FullName: "Ann Smith",
			Email:    "not-an-email",
			Password: "password123",
		})
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := accounts.NewRegisterProfileHandler(repo, "https://app.example.com")

		err := handler.Execute(ctx, accounts.RegisterProfileMessage{
			FullName: "Ann Smith",
			Email:    "ann@example.com",
			Password: "short",
		})
		assert.Error(t, err)
	})

	t.Run("duplicate email surfaces a conflict", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := accounts.NewRegisterProfileHandler(repo, "https://app.example.com")

		msg := accounts.RegisterProfileMessage{
			FullName: "Ann Smith",
			Email:    "ann@example.com",
			Password: "password123",
		}

		require.NoError(t, handler.Execute(ctx, msg))

		err := handler.Execute(ctx, accounts.RegisterProfileMessage{
			FullName: "Other Ann",
			Email:    "ann@example.com",
			Password: "password456",
		})
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryConflict, richErr.Category)
	})

	t.Run("required delivery failure surfaces, profile stays persisted", func(t *testing.T) {
		repo := newFakeRepoManager()
		notifier := accounts.NotifierFunc(func(ctx context.Context, msg accounts.Message) error {
			return errors.New("smtp down")
		})

		handler := accounts.NewRegisterProfileHandler(repo, "https://app.example.com",
			accounts.WithRegistrationNotifier(notifier, accounts.DeliveryRequired),
		)

		err := handler.Execute(ctx, accounts.RegisterProfileMessage{
			FullName: "Ann Smith",
			Email:    "ann@example.com",
			Password: "password123",
		})
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryOperation, richErr.Category)

		// the registration itself is not rolled back
		created, err := repo.Profiles().GetByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.False(t, created.IsActive)
	})

	t.Run("best effort delivery failure reports success", func(t *testing.T) {
		repo := newFakeRepoManager()
		notifier := accounts.NotifierFunc(func(ctx context.Context, msg accounts.Message) error {
			return errors.New("smtp down")
		})

		handler := accounts.NewRegisterProfileHandler(repo, "https://app.example.com",
			accounts.WithRegistrationNotifier(notifier, accounts.DeliveryBestEffort),
		)

		err := handler.Execute(ctx, accounts.RegisterProfileMessage{
			FullName: "Ann Smith",
			Email:    "ann@example.com",
			Password: "password123",
		})
		assert.NoError(t, err)
	})

	t.Run("async delivery returns before the notifier runs", func(t *testing.T) {
		repo := newFakeRepoManager()

		started := make(chan struct{})
		var once sync.Once
		notifier := accounts.NotifierFunc(func(ctx context.Context, msg accounts.Message) error {
			once.Do(func() { close(started) })
			return nil
		})

		handler := accounts.NewRegisterProfileHandler(repo, "https://app.example.com",
			accounts.WithRegistrationNotifier(notifier, accounts.DeliveryAsync),
		)

		err := handler.Execute(ctx, accounts.RegisterProfileMessage{
			FullName: "Ann Smith",
			Email:    "ann@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("async notifier never ran")
		}
	})

	t.Run("records a registration activity event", func(t *testing.T) {
		repo := newFakeRepoManager()

		var events []accounts.ActivityEvent
		sink := accounts.ActivitySinkFunc(func(ctx context.Context, event accounts.ActivityEvent) error {
			events = append(events, event)
			return nil
		})

		handler := accounts.NewRegisterProfileHandler(repo, "https://app.example.com",
			accounts.WithRegistrationActivity(sink),
		)

		err := handler.Execute(ctx, accounts.RegisterProfileMessage{
			FullName: "Ann Smith",
			Email:    "ann@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		require.Len(t, events, 1)
		assert.Equal(t, accounts.ActivityEventProfileRegistered, events[0].EventType)
		assert.Equal(t, "ann@example.com", events[0].Email)
		assert.False(t, events[0].OccurredAt.IsZero())
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := accounts.NewRegisterProfileHandler(repo, "https://app.example.com")

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := handler.Execute(cancelled, accounts.RegisterProfileMessage{
			FullName: "Ann Smith",
			Email:    "ann@example.com",
			Password: "password123",
		})
		assert.Error(t, err)
	})
}

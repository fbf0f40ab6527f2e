package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RegisterProfileMessage struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	ProfileImag string `json:"profile_image_url"`
	UseHashid   bool
	OnResponse  func(p *PublicProfile)
}

func (e RegisterProfileMessage) Type() string { return "profile.register" }

func (e RegisterProfileMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.FullName, validation.Required),
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 72)),
	)
}

// RegisterProfileHandler creates the profile inside a transaction and sends
// the activation link once the transaction has committed. Delivery is governed
// by the configured policy, it never rolls back a committed registration.
type RegisterProfileHandler struct {
	repo     RepositoryManager
	delivery delivery
	baseURL  string
	activity ActivitySink
	logger   Logger
}

type RegisterProfileOption func(*RegisterProfileHandler)

func WithRegistrationNotifier(n Notifier, policy DeliveryPolicy) RegisterProfileOption {
	return func(h *RegisterProfileHandler) {
		h.delivery.notifier = n
		h.delivery.policy = policy
	}
}

func WithRegistrationNotifierTimeout(timeout time.Duration) RegisterProfileOption {
	return func(h *RegisterProfileHandler) {
		if timeout > 0 {
			h.delivery.timeout = timeout
		}
	}
}

func WithRegistrationActivity(sink ActivitySink) RegisterProfileOption {
	return func(h *RegisterProfileHandler) {
		h.activity = normalizeActivitySink(sink)
	}
}

func WithRegistrationLogger(logger Logger) RegisterProfileOption {
	return func(h *RegisterProfileHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewRegisterProfileHandler(repo RepositoryManager, activationBaseURL string, opts ...RegisterProfileOption) *RegisterProfileHandler {
	h := &RegisterProfileHandler{
		repo:    repo,
		baseURL: activationBaseURL,
		logger:  defLogger{},
		delivery: delivery{
			notifier: NewNoopNotifier(),
			policy:   DeliveryBestEffort,
			timeout:  DefaultNotifierTimeout,
		},
	}

	for _, opt := range opts {
		opt(h)
	}

	h.activity = normalizeActivitySink(h.activity)
	h.delivery.logger = h.logger
	h.delivery.activity = h.activity

	return h
}

func (h *RegisterProfileHandler) Execute(ctx context.Context, event RegisterProfileMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterProfileHandler) execute(ctx context.Context, event RegisterProfileMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload").
			WithCode(goerrors.CodeBadRequest)
	}

	profile := &Profile{}
	txCtx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(txCtx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		token := uuid.NewString()

		profile.PasswordHash = hash
		profile.Email = event.Email
		profile.FullName = event.FullName
		profile.ProfileImageURL = event.ProfileImag
		profile.IsActive = false
		profile.ActivationToken = &token

		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				profile.ID = id
			}
		}

		if profile, err = h.repo.Profiles().RegisterTx(ctx, tx, profile); err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create profile")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "profile registration transaction failed")
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventProfileRegistered,
		ProfileID: profile.ID.String(),
		Email:     profile.Email,
	})

	link := ActivationLink(h.baseURL, *profile.ActivationToken)
	msg := ActivationMessage(profile.Email, link)

	if err := h.delivery.dispatch(ctx, msg); err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(ToPublic(profile))
	}

	return nil
}

package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ActivateProfileMessage struct {
	Token      string `json:"token" example:"350399bc-c095-4bdc-a59c-3352d44848e4" doc:"Account activation token"`
	OnResponse func(a *ActivateProfileResponse)
}

func (e ActivateProfileMessage) Type() string { return "profile.activate" }

type ActivateProfileResponse struct {
	Found bool `json:"found" example:"true" doc:"Has the token been matched to an account?"`
}

// ActivateProfileHandler flips the account active. An unknown token reports
// Found false without detail, so callers can not enumerate which tokens exist.
// The token is kept on the record, re-submitting it stays a success.
type ActivateProfileHandler struct {
	repo     RepositoryManager
	activity ActivitySink
	logger   Logger
}

type ActivateProfileOption func(*ActivateProfileHandler)

func WithActivationActivity(sink ActivitySink) ActivateProfileOption {
	return func(h *ActivateProfileHandler) {
		h.activity = normalizeActivitySink(sink)
	}
}

func WithActivationLogger(logger Logger) ActivateProfileOption {
	return func(h *ActivateProfileHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewActivateProfileHandler(repo RepositoryManager, opts ...ActivateProfileOption) *ActivateProfileHandler {
	h := &ActivateProfileHandler{
		repo:   repo,
		logger: defLogger{},
	}

	for _, opt := range opts {
		opt(h)
	}

	h.activity = normalizeActivitySink(h.activity)

	return h
}

func (h *ActivateProfileHandler) Execute(ctx context.Context, event ActivateProfileMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during profile activation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateProfileHandler) execute(ctx context.Context, event ActivateProfileMessage) error {
	profile := &Profile{}
	resp := &ActivateProfileResponse{}

	txCtx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var err error

	err = h.repo.RunInTx(txCtx, nil, func(ctx context.Context, tx bun.Tx) error {
		profile, err = h.repo.Profiles().GetByActivationTokenTx(ctx, tx, event.Token)
		if err != nil {
			// an unmatched token is part of the expected flow, not an application error
			if repository.IsRecordNotFound(err) {
				resp.Found = false
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve activation request")
		}

		resp.Found = true

		if profile.IsActive {
			return nil
		}

		profile.IsActive = true
		if _, err := h.repo.Profiles().UpdateTx(ctx, tx, profile); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate profile")
		}

		recordActivity(ctx, h.activity, h.logger, ActivityEvent{
			EventType: ActivityEventProfileActivated,
			ProfileID: profile.ID.String(),
			Email:     profile.Email,
		})

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to execute profile activation")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

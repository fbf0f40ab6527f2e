package accounts

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles is the account store. Email uniqueness and activation-token
// uniqueness are enforced by the database indexes, never by check-then-act
// application code.
type Profiles interface {
	repository.Repository[*Profile]

	Register(ctx context.Context, profile *Profile) (*Profile, error)
	RegisterTx(ctx context.Context, tx bun.IDB, profile *Profile) (*Profile, error)
	Create(ctx context.Context, record *Profile, criteria ...repository.InsertCriteria) (*Profile, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Profile, criteria ...repository.InsertCriteria) (*Profile, error)

	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*Profile, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*Profile, error)
	GetByActivationToken(ctx context.Context, token string) (*Profile, error)
	GetByActivationTokenTx(ctx context.Context, tx bun.IDB, token string) (*Profile, error)

	TrackAttemptedLogin(ctx context.Context, profile *Profile) error
	TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, profile *Profile) error
	TrackSuccessfulLogin(ctx context.Context, profile *Profile) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, profile *Profile) error
}

type profiles struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var (
	_ Profiles                        = (*profiles)(nil)
	_ repository.Repository[*Profile] = (*profiles)(nil)
)

func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
		GetIdentifierValue: func(p *Profile) string {
			if p == nil {
				return ""
			}
			return p.Email
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

func (a *profiles) Register(ctx context.Context, profile *Profile) (*Profile, error) {
	return a.RegisterTx(ctx, a.db, profile)
}

func (a *profiles) RegisterTx(ctx context.Context, tx bun.IDB, profile *Profile) (*Profile, error) {
	return a.CreateTx(ctx, tx, profile)
}

func (a *profiles) Create(ctx context.Context, record *Profile, criteria ...repository.InsertCriteria) (*Profile, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *profiles) CreateTx(ctx context.Context, tx bun.IDB, record *Profile, criteria ...repository.InsertCriteria) (*Profile, error) {
	prepareProfileDefaults(record)

	created, err := a.Repository.CreateTx(ctx, tx, record, criteria...)
	if err != nil {
		if repository.IsDuplicatedKey(err) || IsDuplicateConstraintError(err) {
			return nil, goerrors.Wrap(err, ErrDuplicateEmail.Category, ErrDuplicateEmail.Message).
				WithTextCode(ErrDuplicateEmail.TextCode).
				WithCode(ErrDuplicateEmail.Code).
				WithMetadata(map[string]any{"email": record.Email})
		}
		return nil, err
	}

	return created, nil
}

func (a *profiles) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*Profile, error) {
	return a.GetByEmailTx(ctx, a.db, email, criteria...)
}

func (a *profiles) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*Profile, error) {
	return a.getByColumnTx(ctx, tx, "email", strings.TrimSpace(email), criteria...)
}

func (a *profiles) GetByActivationToken(ctx context.Context, token string) (*Profile, error) {
	return a.GetByActivationTokenTx(ctx, a.db, token)
}

func (a *profiles) GetByActivationTokenTx(ctx context.Context, tx bun.IDB, token string) (*Profile, error) {
	return a.getByColumnTx(ctx, tx, "activation_token", strings.TrimSpace(token))
}

func (a *profiles) getByColumnTx(ctx context.Context, tx bun.IDB, column, value string, criteria ...repository.SelectCriteria) (*Profile, error) {
	record := &Profile{}
	q := tx.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *profiles) TrackSuccessfulLogin(ctx context.Context, profile *Profile) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, profile)
}

func (a *profiles) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, profile *Profile) error {
	// NOTE: ORM updates won't reset login_attempt_at/login_attempts to their
	// zero values, so this goes through raw SQL.
	loggedInAt := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "profiles" AS "prf"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("prf".id = ?);
	`, loggedInAt, profile.ID).Exec(ctx)

	return err
}

func (a *profiles) TrackAttemptedLogin(ctx context.Context, profile *Profile) error {
	return a.TrackAttemptedLoginTx(ctx, a.db, profile)
}

func (a *profiles) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, profile *Profile) error {
	now := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "profiles" AS "prf"
		SET
			"login_attempts" = ?,
			"login_attempt_at" = ?
		WHERE
			("prf".id = ?);
	`, profile.LoginAttempts+1, now, profile.ID).Exec(ctx)

	return err
}

func prepareProfileDefaults(record *Profile) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

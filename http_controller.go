package accounts

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

// RegisterAccountRoutes mounts the accounts JSON API on the given router.
func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountsControllerOption) {
	controller := NewAccountsController(opts...)

	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("accounts.register.post")

	app.Get(controller.Routes.Activate, controller.ActivateGet).
		SetName("accounts.activate.get")

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("accounts.login.post")

	app.Get(controller.Routes.Profile,
		controller.ProfileGet,
		controller.Auther.ProtectedRoute(nil),
	).SetName("accounts.profile.get")

	app.Get(controller.Routes.Health, controller.HealthGet).
		SetName("accounts.health.get")
}

type AccountsControllerRoutes struct {
	Register string
	Activate string
	Login    string
	Profile  string
	Health   string
}

type AccountsController struct {
	Debug    bool
	Logger   Logger
	Repo     RepositoryManager
	Routes   *AccountsControllerRoutes
	Auther   HTTPAuthenticator
	Register *RegisterProfileHandler
	Activate *ActivateProfileHandler
}

type AccountsControllerOption func(*AccountsController) *AccountsController

func WithControllerRepo(repo RepositoryManager) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther HTTPAuthenticator) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRegisterHandler(h *RegisterProfileHandler) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Register = h
		return c
	}
}

func WithControllerActivateHandler(h *ActivateProfileHandler) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Activate = h
		return c
	}
}

func WithControllerDebug(debug bool) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Debug = debug
		return c
	}
}

func NewAccountsController(opts ...AccountsControllerOption) *AccountsController {
	c := &AccountsController{
		Logger: defLogger{},
		Routes: &AccountsControllerRoutes{
			Register: "/api/v1.0/register",
			Activate: "/api/v1.0/activate",
			Login:    "/api/v1.0/login",
			Profile:  "/api/v1.0/profile",
			Health:   "/api/v1.0/health",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in accounts controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in accounts controller...")
	}

	if c.Register == nil {
		panic("Missing RegisterProfileHandler in accounts controller...")
	}

	if c.Activate == nil {
		panic("Missing ActivateProfileHandler in accounts controller...")
	}

	return c
}

func (a *AccountsController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterProfileMessage)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register profile parse payload: ", "error", err)
		return respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("===============================")
	}

	var created *PublicProfile
	payload.OnResponse = func(p *PublicProfile) {
		created = p
	}

	if err := a.Register.Execute(ctx.Context(), *payload); err != nil {
		a.Logger.Error("register profile error: ", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, created)
}

func (a *AccountsController) ActivateGet(ctx router.Context) error {
	token := ctx.Query("token", "")

	var resp *ActivateProfileResponse
	input := ActivateProfileMessage{
		Token: token,
		OnResponse: func(r *ActivateProfileResponse) {
			resp = r
		},
	}

	if err := a.Activate.Execute(ctx.Context(), input); err != nil {
		a.Logger.Error("activate profile error: ", "error", err)
		return respondError(ctx, err)
	}

	if resp == nil || !resp.Found {
		return respondError(ctx, ErrInvalidActivationToken)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "account activated",
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the login identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AccountsController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	// a payload that fails validation can not authenticate, the response is
	// the same opaque credential failure
	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload: ", "error", err)
		return respondError(ctx, ErrAuthenticationFailed)
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	result, err := a.Auther.Login(ctx, *payload)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, result)
}

func (a *AccountsController) ProfileGet(ctx router.Context) error {
	claims, ok := GetClaims(ctx.Context())
	if !ok {
		return respondError(ctx, errors.New("missing claims in request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized))
	}

	profile, err := a.Repo.Profiles().GetByEmail(ctx.Context(), claims.Subject())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return respondError(ctx, ErrProfileNotFound)
		}
		a.Logger.Error("profile get error: ", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, ToPublic(profile))
}

func (a *AccountsController) HealthGet(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "ok",
	})
}

package accounts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// HTTPAuthenticator is the surface the controller needs from the route
// authenticator.
type HTTPAuthenticator interface {
	Login(ctx router.Context, payload LoginRequest) (*LoginResult, error)
	ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc
}

type RouteAuthenticator struct {
	auth             Authenticator
	cfg              Config
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginRequest) (*LoginResult, error) {
	result, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return nil, err
	}

	return result, nil
}

// ProtectedRoute validates the bearer token before the wrapped handler runs
// and stores the claims on the request context.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.AuthErrorHandler
	}

	auther, ok := a.auth.(*Auther)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := tokenFromHeader(ctx.Header("Authorization"), a.cfg.GetAuthScheme())
			if err != nil {
				return errorHandler(ctx, err)
			}

			var validator TokenValidator
			if ok {
				validator = auther.TokenService()
			}
			if validator == nil {
				return errorHandler(ctx, errors.New("no token validator configured", errors.CategoryInternal))
			}

			claims, err := validator.Validate(raw)
			if err != nil {
				var richErr *errors.Error
				if IsTokenExpiredError(err) {
					richErr = ErrTokenExpired
				} else if IsMalformedError(err) {
					richErr = ErrTokenMalformed
				} else {
					richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
						WithCode(errors.CodeUnauthorized)
				}
				return errorHandler(ctx, richErr)
			}

			ctx.Set(a.cfg.GetContextKey(), claims.Subject())
			ctx.SetContext(WithClaimsContext(ctx.Context(), claims))

			return hf(ctx)
		}
	}
}

func tokenFromHeader(header, scheme string) (string, error) {
	if scheme == "" {
		scheme = "Bearer"
	}

	if header == "" {
		return "", errors.New("missing authorization header", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	prefix := scheme + " "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", errors.New("malformed authorization header", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	return strings.TrimSpace(header[len(prefix):]), nil
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	return respondError(c, richErr)
}

// respondError maps a rich error to a JSON error envelope. The category code
// picks the status, the message and text code travel in the body.
func respondError(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	body := map[string]any{
		"message": richErr.Message,
	}

	if richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}

	return c.JSON(status, body)
}

package accounts

import (
	"context"
	"fmt"
	"strings"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Email() string
	FullName() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	IsAccountActive(ctx context.Context, email string) bool
}

// LoginResult is what a successful login hands back: a signed token plus the
// public projection of the authenticated profile.
type LoginResult struct {
	Token   string         `json:"token"`
	Profile *PublicProfile `json:"user"`
}

// Config holds accounts options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetActivationBaseURL() string
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, email string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print(formatLogLine("[ERR]", msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print(formatLogLine("[WRN]", msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print(formatLogLine("[INF]", msg, args))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print(formatLogLine("[DBG]", msg, args))
}

// formatLogLine accepts either printf-style messages or a message followed
// by key-value pairs, so call sites can log structured context without the
// default logger emitting %!(EXTRA ...) noise.
func formatLogLine(level, msg string, args []any) string {
	if len(args) == 0 {
		return level + " ACCOUNTS " + newline(msg)
	}

	if strings.Contains(msg, "%") {
		return fmt.Sprintf(level+" ACCOUNTS "+newline(msg), args...)
	}

	var b strings.Builder
	b.WriteString(level + " ACCOUNTS " + msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	b.WriteString("\n")
	return b.String()
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

package accounts

import (
	"context"
	"fmt"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DeliveryPolicy decides how registration couples to notification dispatch.
type DeliveryPolicy = string

const (
	// DeliveryRequired surfaces a delivery failure to the caller. The
	// registered profile stays persisted either way.
	DeliveryRequired DeliveryPolicy = "required"
	// DeliveryBestEffort logs a delivery failure and reports success.
	DeliveryBestEffort DeliveryPolicy = "best-effort"
	// DeliveryAsync dispatches on a goroutine, failures are logged.
	DeliveryAsync DeliveryPolicy = "async"
)

// DefaultNotifierTimeout bounds every notifier call so a hung mail
// transport cannot block a registration request.
var DefaultNotifierTimeout = 10 * time.Second

// Message is the outbound notification contract
type Message struct {
	To             string
	Subject        string
	Body           string
	Attachment     []byte
	AttachmentName string
}

// Notifier is the outbound e-mail boundary. Implementations own transport
// details; callers own timeouts via ctx.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

// Send satisfies the Notifier interface.
func (f NotifierFunc) Send(ctx context.Context, msg Message) error {
	if f == nil {
		return nil
	}
	return f(ctx, msg)
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, Message) error { return nil }

// NewNoopNotifier returns a Notifier that drops every message.
func NewNoopNotifier() Notifier { return noopNotifier{} }

// ActivationPath is the fixed path an activation link points at, appended to
// the configured base URL.
const ActivationPath = "/api/v1.0/activate"

// ActivationLink builds the link embedded in the activation e-mail.
func ActivationLink(baseURL, token string) string {
	return fmt.Sprintf("%s%s?token=%s", baseURL, ActivationPath, url.QueryEscape(token))
}

// ActivationMessage composes the activation e-mail for a fresh registration.
func ActivationMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Activate your account",
		Body:    "Click on the following link to activate your account: " + link,
	}
}

type delivery struct {
	notifier Notifier
	policy   DeliveryPolicy
	timeout  time.Duration
	logger   Logger
	activity ActivitySink
}

// dispatch sends msg under the configured policy. Only DeliveryRequired
// propagates errors, and even then the caller's persisted state stands.
func (d delivery) dispatch(ctx context.Context, msg Message) error {
	timeout := d.timeout
	if timeout <= 0 {
		timeout = DefaultNotifierTimeout
	}

	if d.policy == DeliveryAsync {
		go func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := d.notifier.Send(sendCtx, msg); err != nil {
				d.reportFailure(sendCtx, msg, err)
			}
		}()
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := d.notifier.Send(sendCtx, msg)
	if err == nil {
		return nil
	}

	d.reportFailure(ctx, msg, err)

	if d.policy == DeliveryRequired {
		return goerrors.Wrap(err, ErrNotificationDelivery.Category, ErrNotificationDelivery.Message).
			WithTextCode(ErrNotificationDelivery.TextCode).
			WithMetadata(map[string]any{"to": msg.To})
	}

	return nil
}

func (d delivery) reportFailure(ctx context.Context, msg Message, err error) {
	if d.logger != nil {
		d.logger.Error("notification delivery failed", "to", msg.To, "error", err)
	}
	recordActivity(ctx, d.activity, d.logger, ActivityEvent{
		EventType: ActivityEventNotificationFailed,
		Email:     msg.To,
		Metadata:  map[string]any{"error": err.Error()},
	})
}

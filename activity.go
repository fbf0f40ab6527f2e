package accounts

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventProfileRegistered  ActivityEventType = "profile.registered"
	ActivityEventProfileActivated   ActivityEventType = "profile.activated"
	ActivityEventLoginSuccess       ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure       ActivityEventType = "auth.login.failure"
	ActivityEventNotificationFailed ActivityEventType = "notify.delivery.failure"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	ProfileID  string
	Email      string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Sinks run best-effort: errors are logged and never block the workflow.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	sink = normalizeActivitySink(sink)

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil && logger != nil {
		logger.Warn("activity sink record error: %v", err)
	}
}

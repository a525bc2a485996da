package notify

import "context"

// Notifier delivers offer events to one downstream channel (email, SQS,
// webhook, ...).
type Notifier interface {
	ID() string
	Type() string
	Send(ctx context.Context, evt Event) error
}

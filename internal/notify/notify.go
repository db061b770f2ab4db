package notify

import (
	"context"

	"go.uber.org/multierr"
)

// Notifier delivers a rendered message to one channel. Delivery is
// best-effort; callers log the error and move on.
type Notifier interface {
	Deliver(ctx context.Context, message string) error
}

// Multi fans a message out to every channel and reports all failures.
type Multi []Notifier

func (m Multi) Deliver(ctx context.Context, message string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Deliver(ctx, message))
	}
	return err
}

// Nop discards every message.
type Nop struct{}

func (Nop) Deliver(context.Context, string) error { return nil }

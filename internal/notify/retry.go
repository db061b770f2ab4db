package notify

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// defaultAttempts bounds how often a chat API is tried per message.
const defaultAttempts = 3

func retry(ctx context.Context, attempts int, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))
}

// permanentOn4xx stops retrying client errors; they will not improve.
func permanentOn4xx(code int, err error) error {
	if code >= 400 && code < 500 && code != 429 {
		return backoff.Permanent(err)
	}
	return err
}

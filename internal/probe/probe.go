package probe

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single connection attempt.
const DefaultTimeout = 5 * time.Second

// Result is the outcome of one reachability check.
//
// Reason is empty on success and carries the dial error otherwise.
type Result struct {
	Up      bool
	Latency time.Duration
	Reason  string
}

// Checker performs a single check against address:port. Implementations must
// not retry and must return once ctx is done.
type Checker interface {
	Check(ctx context.Context, address string, port uint16) Result
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context, address string, port uint16) Result

func (f CheckerFunc) Check(ctx context.Context, address string, port uint16) Result {
	return f(ctx, address, port)
}

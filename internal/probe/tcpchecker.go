package probe

import (
	"context"
	"net"
	"strconv"
	"time"
)

// TCPChecker reports a service as up when a TCP connection completes before
// Timeout. The connection is closed right away.
type TCPChecker struct {
	Timeout time.Duration
	Dialer  *net.Dialer
}

func NewTCPChecker(timeout time.Duration) *TCPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TCPChecker{
		Timeout: timeout,
		Dialer:  &net.Dialer{},
	}
}

func (c *TCPChecker) Check(ctx context.Context, address string, port uint16) Result {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	d := c.Dialer
	if d == nil {
		d = &net.Dialer{}
	}

	start := time.Now()
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(int(port))))
	latency := time.Since(start)
	if err != nil {
		return Result{Up: false, Latency: latency, Reason: err.Error()}
	}
	_ = conn.Close()
	return Result{Up: true, Latency: latency}
}

package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/notify"
	"github.com/hamed0406/portwatch/internal/probe"
)

var ErrNoServices = errors.New("scheduler: no services to monitor")

type options struct {
	clock         clockwork.Clock
	observers     []Observer
	probeTimeout  time.Duration
	notifyTimeout time.Duration
}

type Option func(*options)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithObservers(obs ...Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs...) }
}

func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.probeTimeout = d
		}
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.notifyTimeout = d
		}
	}
}

// Supervisor runs one ServiceMonitor per configured service.
type Supervisor struct {
	logger   *zap.Logger
	checker  probe.Checker
	notifier notify.Notifier
	opts     options
}

func NewSupervisor(logger *zap.Logger, checker probe.Checker, notifier notify.Notifier, opts ...Option) *Supervisor {
	o := options{
		clock:         clockwork.NewRealClock(),
		probeTimeout:  probe.DefaultTimeout,
		notifyTimeout: 10 * time.Second,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Supervisor{logger: logger, checker: checker, notifier: notifier, opts: o}
}

// Handle controls a started set of monitors.
type Handle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	monitors int
}

// Start validates the host set and launches every monitor. The monitors run
// until ctx is cancelled or Stop is called.
func (s *Supervisor) Start(ctx context.Context, hosts []*domain.Host) (*Handle, error) {
	var services []*domain.Service
	for _, h := range hosts {
		if h == nil {
			return nil, errors.New("scheduler: nil host")
		}
		for _, svc := range h.Services {
			if svc == nil {
				return nil, errors.Errorf("scheduler: host %q has a nil service", h.Name)
			}
			if svc.Host != h {
				return nil, errors.Errorf("scheduler: service %q is not owned by host %q", svc.Name, h.Name)
			}
			if svc.Interval <= 0 {
				return nil, errors.Errorf("scheduler: service %s has no interval", svc.Key())
			}
			services = append(services, svc)
		}
	}
	if len(services) == 0 {
		return nil, ErrNoServices
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{}), monitors: len(services)}

	var g errgroup.Group
	for _, svc := range services {
		m := newServiceMonitor(svc, s.checker, s.notifier, s.logger, s.opts)
		s.lifecycle(func(l lifecycle) { l.MonitorStarted() })
		g.Go(func() error {
			defer s.lifecycle(func(l lifecycle) { l.MonitorStopped() })
			m.Run(ctx)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(h.done)
	}()

	s.logger.Info("supervisor_started", zap.Int("hosts", len(hosts)), zap.Int("monitors", len(services)))
	return h, nil
}

func (s *Supervisor) lifecycle(fn func(lifecycle)) {
	for _, o := range s.opts.observers {
		if l, ok := o.(lifecycle); ok {
			fn(l)
		}
	}
}

// Stop cancels every monitor and returns once all of them have exited. No
// probe or delivery is in flight after Stop returns. Safe to call twice.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Wait blocks until every monitor has exited.
func (h *Handle) Wait() { <-h.done }

func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) Monitors() int { return h.monitors }

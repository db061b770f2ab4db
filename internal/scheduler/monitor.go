package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/notify"
	"github.com/hamed0406/portwatch/internal/probe"
)

// ServiceMonitor owns the check loop of a single service. Cycles never
// overlap: the next probe starts only after the previous transition has been
// dispatched.
type ServiceMonitor struct {
	svc       *domain.Service
	checker   probe.Checker
	notifier  notify.Notifier
	logger    *zap.Logger
	clock     clockwork.Clock
	observers []Observer

	probeTimeout  time.Duration
	notifyTimeout time.Duration

	// last is only touched by Run.
	last domain.Status
}

func newServiceMonitor(svc *domain.Service, checker probe.Checker, notifier notify.Notifier, logger *zap.Logger, o options) *ServiceMonitor {
	k := svc.Key()
	return &ServiceMonitor{
		svc:      svc,
		checker:  checker,
		notifier: notifier,
		logger: logger.With(
			zap.String("host", k.Host),
			zap.String("service", k.Name),
			zap.Uint16("port", k.Port),
		),
		clock:         o.clock,
		observers:     o.observers,
		probeTimeout:  o.probeTimeout,
		notifyTimeout: o.notifyTimeout,
		last:          domain.StatusUnknown,
	}
}

// Run polls until ctx is cancelled. The target period between cycle starts
// is the service interval; time spent checking is subtracted from the wait.
func (m *ServiceMonitor) Run(ctx context.Context) {
	m.logger.Info("monitor_started", zap.Duration("interval", m.svc.Interval))
	defer m.logger.Info("monitor_stopped")

	for {
		if ctx.Err() != nil {
			return
		}
		start := m.clock.Now()
		m.cycle(ctx)

		wait := m.svc.Interval - m.clock.Since(start)
		if wait <= 0 {
			continue
		}
		t := m.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.Chan():
		}
	}
}

func (m *ServiceMonitor) cycle(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	res := m.checker.Check(pctx, m.svc.Host.Address, m.svc.Port)
	cancel()

	// A probe cut short by shutdown says nothing about the service.
	if ctx.Err() != nil {
		return
	}

	obs := domain.Observation{
		At:       m.clock.Now(),
		Service:  m.svc,
		Previous: m.last,
		Current:  domain.StatusOf(res.Up),
		Latency:  res.Latency,
		Reason:   res.Reason,
	}
	m.logger.Debug("probe_done",
		zap.Stringer("status", obs.Current),
		zap.Duration("latency", res.Latency),
		zap.String("reason", res.Reason),
	)

	if kind, ok := domain.Transition(obs.Previous, obs.Current); ok {
		m.dispatch(ctx, domain.NewTransitionEvent(m.svc, kind, obs.At))
	}
	m.last = obs.Current

	for _, o := range m.observers {
		m.safely("observer", func() { o.Observe(obs) })
	}
}

func (m *ServiceMonitor) dispatch(ctx context.Context, ev domain.TransitionEvent) {
	msg := notify.Render(ev)
	m.logger.Info("transition",
		zap.Stringer("kind", ev.Kind),
		zap.String("event_id", ev.ID.String()),
	)

	nctx, cancel := context.WithTimeout(ctx, m.notifyTimeout)
	defer cancel()
	m.safely("notifier", func() {
		if err := m.notifier.Deliver(nctx, msg); err != nil {
			m.logger.Warn("notify_failed", zap.String("event_id", ev.ID.String()), zap.Error(err))
		}
	})
}

// safely keeps a misbehaving collaborator from ending the loop.
func (m *ServiceMonitor) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("collaborator_panic", zap.String("component", what), zap.Any("panic", r))
		}
	}()
	fn()
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/probe"
	"github.com/hamed0406/portwatch/internal/repo/memory"
)

type counting struct {
	n int64
}

func (c *counting) Deliver(context.Context, string) error {
	atomic.AddInt64(&c.n, 1)
	return nil
}

type running struct {
	n int64
}

func (r *running) Observe(domain.Observation) {}
func (r *running) MonitorStarted()            { atomic.AddInt64(&r.n, 1) }
func (r *running) MonitorStopped()            { atomic.AddInt64(&r.n, -1) }

func manyServices(n int, interval time.Duration) []*domain.Host {
	h := &domain.Host{Name: "fleet", Address: "10.0.0.1", Interval: interval}
	for i := 0; i < n; i++ {
		h.AddService(fmt.Sprintf("svc-%d", i), uint16(i+1), 0)
	}
	return []*domain.Host{h}
}

func TestSupervisor_StopLeavesNothingInFlight(t *testing.T) {
	for _, n := range []int{1, 10, 1000} {
		t.Run(fmt.Sprintf("monitors=%d", n), func(t *testing.T) {
			var inflight, calls int64
			chk := probe.CheckerFunc(func(ctx context.Context, _ string, _ uint16) probe.Result {
				atomic.AddInt64(&inflight, 1)
				defer atomic.AddInt64(&inflight, -1)
				c := atomic.AddInt64(&calls, 1)
				select {
				case <-ctx.Done():
				case <-time.After(time.Millisecond):
				}
				return probe.Result{Up: c%2 == 0}
			})
			notifier := &counting{}
			live := &running{}

			sup := NewSupervisor(zap.NewNop(), chk, notifier, WithObservers(live))
			h, err := sup.Start(context.Background(), manyServices(n, 5*time.Millisecond))
			require.NoError(t, err)
			require.Equal(t, n, h.Monitors())

			require.Eventually(t, func() bool {
				return atomic.LoadInt64(&calls) >= int64(2*n)
			}, 10*time.Second, 5*time.Millisecond)

			h.Stop()

			require.Zero(t, atomic.LoadInt64(&inflight))
			require.Zero(t, atomic.LoadInt64(&live.n))
			delivered := atomic.LoadInt64(&notifier.n)
			probed := atomic.LoadInt64(&calls)
			time.Sleep(30 * time.Millisecond)
			require.Equal(t, delivered, atomic.LoadInt64(&notifier.n))
			require.Equal(t, probed, atomic.LoadInt64(&calls))

			select {
			case <-h.Done():
			default:
				t.Fatal("done channel not closed after Stop")
			}
			h.Stop() // idempotent
		})
	}
}

func TestSupervisor_FailingServiceDoesNotAffectOthers(t *testing.T) {
	const interval = 10 * time.Second
	fc := clockwork.NewFakeClock()

	good := &domain.Host{Name: "good", Address: "good.local", Interval: interval}
	good.AddService("http", 80, 0)
	bad := &domain.Host{Name: "bad", Address: "bad.local", Interval: interval}
	bad.AddService("http", 80, 0)
	stuck := &domain.Host{Name: "stuck", Address: "stuck.local", Interval: interval}
	stuck.AddService("http", 80, 0)

	var mu sync.Mutex
	var goodStarts []time.Time
	var stuckOnce sync.Once
	stuckEntered := make(chan struct{})
	chk := probe.CheckerFunc(func(ctx context.Context, addr string, _ uint16) probe.Result {
		switch addr {
		case "bad.local":
			return probe.Result{Up: false, Reason: "connect: connection refused"}
		case "stuck.local":
			stuckOnce.Do(func() { close(stuckEntered) })
			<-ctx.Done()
			return probe.Result{Up: false, Reason: ctx.Err().Error()}
		}
		mu.Lock()
		goodStarts = append(goodStarts, fc.Now())
		mu.Unlock()
		return probe.Result{Up: true}
	})

	var goodMsgs []string
	notifier := notifierFunc(func(msg string) error {
		if kindOf(msg) == domain.InitialDown {
			panic("chat api exploded")
		}
		mu.Lock()
		goodMsgs = append(goodMsgs, msg)
		mu.Unlock()
		return nil
	})

	sup := NewSupervisor(zap.NewNop(), chk, notifier, WithClock(fc), WithProbeTimeout(time.Hour))
	h, err := sup.Start(context.Background(), []*domain.Host{good, bad, stuck})
	require.NoError(t, err)

	<-stuckEntered
	// good and bad each park on their wait timer; stuck never gets there
	for i := 0; i < 5; i++ {
		fc.BlockUntil(2)
		fc.Advance(interval)
	}
	fc.BlockUntil(2)
	h.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, goodStarts, 6)
	for i := 1; i < len(goodStarts); i++ {
		require.Equal(t, interval, goodStarts[i].Sub(goodStarts[i-1]), "gap %d", i)
	}
	require.Len(t, goodMsgs, 1)
	require.Equal(t, domain.InitialUp, kindOf(goodMsgs[0]))
}

type notifierFunc func(string) error

func (f notifierFunc) Deliver(_ context.Context, m string) error { return f(m) }

func TestSupervisor_RecordsIntoStatusStore(t *testing.T) {
	store := memory.New()
	hosts := manyServices(3, 5*time.Millisecond)
	require.NoError(t, store.Register(context.Background(), hosts))

	chk := probe.CheckerFunc(func(context.Context, string, uint16) probe.Result { return probe.Result{Up: true} })
	sup := NewSupervisor(zap.NewNop(), chk, nil, WithObservers(RecordTo(store, zap.NewNop())))
	h, err := sup.Start(context.Background(), hosts)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		all, _ := store.List(context.Background())
		for _, st := range all {
			if st.Status != domain.StatusUp {
				return false
			}
		}
		return len(all) == 3
	}, 5*time.Second, 5*time.Millisecond)
	h.Stop()
}

func TestSupervisor_ParentContextCancelStopsMonitors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	chk := probe.CheckerFunc(func(context.Context, string, uint16) probe.Result { return probe.Result{Up: true} })
	h, err := NewSupervisor(nil, chk, nil).Start(ctx, manyServices(4, time.Hour))
	require.NoError(t, err)

	cancel()
	waited := make(chan struct{})
	go func() {
		h.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("monitors still running after parent cancel")
	}
}

func TestSupervisor_StartRejectsInvalidHosts(t *testing.T) {
	sup := NewSupervisor(zap.NewNop(), probe.NewTCPChecker(time.Second), nil)

	_, err := sup.Start(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoServices)

	empty := &domain.Host{Name: "empty", Address: "10.0.0.1", Interval: time.Second}
	_, err = sup.Start(context.Background(), []*domain.Host{empty})
	require.ErrorIs(t, err, ErrNoServices)

	noInterval := &domain.Host{Name: "x", Address: "10.0.0.1"}
	noInterval.AddService("ssh", 22, 0)
	_, err = sup.Start(context.Background(), []*domain.Host{noInterval})
	require.Error(t, err)

	orphan := &domain.Host{Name: "y", Address: "10.0.0.1", Interval: time.Second}
	orphan.Services = append(orphan.Services, &domain.Service{Name: "ssh", Port: 22, Interval: time.Second})
	_, err = sup.Start(context.Background(), []*domain.Host{orphan})
	require.Error(t, err)

	_, err = sup.Start(context.Background(), []*domain.Host{nil})
	require.EqualError(t, err, "scheduler: nil host")

	holey := &domain.Host{Name: "z", Address: "10.0.0.1", Interval: time.Second}
	holey.AddService("ssh", 22, 0)
	holey.Services = append(holey.Services, nil)
	_, err = sup.Start(context.Background(), []*domain.Host{holey})
	require.EqualError(t, err, `scheduler: host "z" has a nil service`)
}

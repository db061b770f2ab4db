package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hamed0406/portwatch/internal/domain"
)

const namespace = "portwatch"

// Metrics exposes probe and transition counters on its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	probes      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	up          *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	monitors    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "TCP reachability checks by result.",
		}, []string{"host", "service", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Time spent connecting to a service.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"host", "service"}),
		up: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_up",
			Help:      "1 if the last check reached the service, 0 otherwise.",
		}, []string{"host", "service", "port"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Reachability transitions by kind.",
		}, []string{"kind"}),
		monitors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitors_running",
			Help:      "Service monitors currently running.",
		}),
	}
	m.Registry.MustRegister(
		m.probes, m.duration, m.up, m.transitions, m.monitors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one poll cycle.
func (m *Metrics) Observe(obs domain.Observation) {
	s := obs.Service
	if s == nil {
		return
	}
	k := s.Key()
	m.probes.WithLabelValues(k.Host, k.Name, obs.Current.String()).Inc()
	m.duration.WithLabelValues(k.Host, k.Name).Observe(obs.Latency.Seconds())

	v := 0.0
	if obs.Current == domain.StatusUp {
		v = 1
	}
	m.up.WithLabelValues(k.Host, k.Name, strconv.Itoa(int(k.Port))).Set(v)

	if kind, ok := domain.Transition(obs.Previous, obs.Current); ok {
		m.transitions.WithLabelValues(kind.String()).Inc()
	}
}

func (m *Metrics) MonitorStarted() { m.monitors.Inc() }
func (m *Metrics) MonitorStopped() { m.monitors.Dec() }

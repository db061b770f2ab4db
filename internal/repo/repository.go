package repo

import (
	"context"
	"time"

	"github.com/hamed0406/portwatch/internal/domain"
)

// ServiceStatus is the latest observation recorded for one service.
type ServiceStatus struct {
	Key         domain.ServiceKey `json:"key"`
	Address     string            `json:"address"`
	Interval    time.Duration     `json:"interval_ns"`
	Status      domain.Status     `json:"status"`
	LatencyMS   float64           `json:"latency_ms"`
	Reason      string            `json:"reason,omitempty"`
	CheckedAt   time.Time         `json:"checked_at"`
	ChangedAt   time.Time         `json:"changed_at"`
	Transitions int               `json:"transitions"`
}

// StatusStore keeps only the most recent observation per service.
type StatusStore interface {
	Register(ctx context.Context, hosts []*domain.Host) error
	Record(ctx context.Context, obs domain.Observation) error
	List(ctx context.Context) ([]ServiceStatus, error)
	ByHost(ctx context.Context, host string) ([]ServiceStatus, error)
}

package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/repo"
)

// Observer sees every observation made by a monitor, transition or not.
// Observe is called from the monitor goroutine and must not block for long.
type Observer interface {
	Observe(obs domain.Observation)
}

type ObserverFunc func(obs domain.Observation)

func (f ObserverFunc) Observe(obs domain.Observation) { f(obs) }

// lifecycle is implemented by observers that track running monitors.
type lifecycle interface {
	MonitorStarted()
	MonitorStopped()
}

// RecordTo mirrors observations into a status store.
func RecordTo(store repo.StatusStore, logger *zap.Logger) Observer {
	return ObserverFunc(func(obs domain.Observation) {
		if err := store.Record(context.Background(), obs); err != nil {
			logger.Warn("status_record_failed", zap.String("service", obs.Service.Key().String()), zap.Error(err))
		}
	})
}

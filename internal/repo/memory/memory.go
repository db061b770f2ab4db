package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/repo"
)

type Store struct {
	mu       sync.RWMutex
	services map[domain.ServiceKey]*repo.ServiceStatus
}

func New() *Store {
	return &Store{
		services: make(map[domain.ServiceKey]*repo.ServiceStatus),
	}
}

// Register seeds every service as unknown so it is listed before its first check.
func (m *Store) Register(ctx context.Context, hosts []*domain.Host) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range hosts {
		for _, s := range h.Services {
			if _, ok := m.services[s.Key()]; ok {
				continue
			}
			m.services[s.Key()] = &repo.ServiceStatus{
				Key:      s.Key(),
				Address:  s.Address(),
				Interval: s.Interval,
				Status:   domain.StatusUnknown,
			}
		}
	}
	return nil
}

func (m *Store) Record(ctx context.Context, obs domain.Observation) error {
	if obs.Service == nil {
		return nil
	}
	key := obs.Service.Key()

	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.services[key]
	if st == nil {
		st = &repo.ServiceStatus{
			Key:      key,
			Address:  obs.Service.Address(),
			Interval: obs.Service.Interval,
		}
		m.services[key] = st
	}
	if obs.Current != obs.Previous {
		st.ChangedAt = obs.At
		st.Transitions++
	}
	st.Status = obs.Current
	st.LatencyMS = float64(obs.Latency.Microseconds()) / 1000
	st.Reason = obs.Reason
	st.CheckedAt = obs.At
	return nil
}

func (m *Store) List(ctx context.Context) ([]repo.ServiceStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]repo.ServiceStatus, 0, len(m.services))
	for _, st := range m.services {
		out = append(out, *st)
	}
	sortStatuses(out)
	return out, nil
}

func (m *Store) ByHost(ctx context.Context, host string) ([]repo.ServiceStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []repo.ServiceStatus
	for k, st := range m.services {
		if k.Host == host {
			out = append(out, *st)
		}
	}
	sortStatuses(out)
	return out, nil
}

func sortStatuses(s []repo.ServiceStatus) {
	sort.Slice(s, func(i, j int) bool {
		a, b := s[i].Key, s[j].Key
		if a.Host != b.Host {
			return a.Host < b.Host
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Port < b.Port
	})
}

var _ repo.StatusStore = (*Store)(nil)

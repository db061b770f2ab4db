package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Host groups services that share a network address and a default cadence.
type Host struct {
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Interval time.Duration `json:"interval"`
	Services []*Service    `json:"-"`
}

// Service is a single TCP port on a Host.
type Service struct {
	Name     string        `json:"name"`
	Port     uint16        `json:"port"`
	Interval time.Duration `json:"interval"`
	Host     *Host         `json:"-"`
}

// ServiceKey identifies a service by (host, name, port).
type ServiceKey struct {
	Host string `json:"host"`
	Name string `json:"name"`
	Port uint16 `json:"port"`
}

func (k ServiceKey) String() string {
	return k.Host + "/" + k.Name + ":" + strconv.Itoa(int(k.Port))
}

func (s *Service) Key() ServiceKey {
	k := ServiceKey{Name: s.Name, Port: s.Port}
	if s.Host != nil {
		k.Host = s.Host.Name
	}
	return k
}

// Address returns the dialable host:port of the service.
func (s *Service) Address() string {
	if s.Host == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.Host.Address, s.Port)
}

// AddService attaches a service to h, inheriting the host interval when the
// service does not override it.
func (h *Host) AddService(name string, port uint16, interval time.Duration) *Service {
	if interval <= 0 {
		interval = h.Interval
	}
	s := &Service{Name: name, Port: port, Interval: interval, Host: h}
	h.Services = append(h.Services, s)
	return s
}

// Observation is produced once per poll cycle.
type Observation struct {
	At       time.Time
	Service  *Service
	Previous Status
	Current  Status
	Latency  time.Duration
	Reason   string
}

type TransitionEvent struct {
	ID          uuid.UUID      `json:"id"`
	At          time.Time      `json:"at"`
	HostName    string         `json:"host_name"`
	HostAddress string         `json:"host_address"`
	ServiceName string         `json:"service_name"`
	Port        uint16         `json:"port"`
	Kind        TransitionKind `json:"kind"`
}

// NewTransitionEvent builds the event for s observed at the given wall-clock time.
func NewTransitionEvent(s *Service, kind TransitionKind, at time.Time) TransitionEvent {
	ev := TransitionEvent{
		ID:          uuid.New(),
		At:          at,
		ServiceName: s.Name,
		Port:        s.Port,
		Kind:        kind,
	}
	if s.Host != nil {
		ev.HostName = s.Host.Name
		ev.HostAddress = s.Host.Address
	}
	return ev
}

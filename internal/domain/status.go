package domain

import (
	"encoding/json"
	"fmt"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusUp
	StatusDown
)

func StatusOf(up bool) Status {
	if up {
		return StatusUp
	}
	return StatusDown
}

func (s Status) String() string {
	switch s {
	case StatusUp:
		return "up"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v {
	case "up":
		*s = StatusUp
	case "down":
		*s = StatusDown
	case "unknown", "":
		*s = StatusUnknown
	default:
		return fmt.Errorf("unknown status %q", v)
	}
	return nil
}

type TransitionKind int

const (
	InitialUp TransitionKind = iota + 1
	InitialDown
	WentDown
	WentUp
)

func (k TransitionKind) String() string {
	switch k {
	case InitialUp:
		return "initial_up"
	case InitialDown:
		return "initial_down"
	case WentDown:
		return "went_down"
	case WentUp:
		return "went_up"
	default:
		return fmt.Sprintf("transition(%d)", int(k))
	}
}

func (k TransitionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Up reports whether the service is reachable after the transition.
func (k TransitionKind) Up() bool { return k == InitialUp || k == WentUp }

// Initial reports whether this is the first observation of the service.
func (k TransitionKind) Initial() bool { return k == InitialUp || k == InitialDown }

// Transition maps a previous and current status to the event it produces.
// ok is false when nothing changed. current must be Up or Down.
func Transition(previous, current Status) (kind TransitionKind, ok bool) {
	switch {
	case previous == StatusUnknown && current == StatusUp:
		return InitialUp, true
	case previous == StatusUnknown && current == StatusDown:
		return InitialDown, true
	case previous == StatusUp && current == StatusDown:
		return WentDown, true
	case previous == StatusDown && current == StatusUp:
		return WentUp, true
	}
	return 0, false
}

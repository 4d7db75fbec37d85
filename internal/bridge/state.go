package bridge

import "time"

// State is the bridge lifecycle phase.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event is one recorded run lifecycle event.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Type      string    `json:"type"`
	Details   string    `json:"details,omitempty"`
}

// Events returns a copy of all recorded run events.
func (b *Bridge) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := make([]Event, len(b.events))
	copy(events, b.events)
	return events
}

func (b *Bridge) logEvent(t, details string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, Event{Timestamp: time.Now().UTC(), Type: t, Details: details})
}

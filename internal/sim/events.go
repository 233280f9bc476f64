package sim

import (
	"sync"
	"time"
)

// EventType enumerates the kinds of events the simulator records.
type EventType string

const (
	EventStart           EventType = "sim.start"
	EventStop            EventType = "sim.stop"
	EventLatencySet      EventType = "latency.set"
	EventLatencyRejected EventType = "latency.rejected"
	EventStatusChange    EventType = "status.change"
	EventChaosToggle     EventType = "chaos.toggle"
	EventChaosSpike      EventType = "chaos.spike"
)

// Event is one entry of the simulator's event log.
type Event struct {
	Seq      uint64         `json:"seq"`
	AtUnixMs int64          `json:"atUnixMs"`
	Tick     uint64         `json:"tick"`
	Type     EventType      `json:"type"`
	Service  string         `json:"service,omitempty"`
	Message  string         `json:"message"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// EventLog is a fixed-size ring of recent events.
type EventLog struct {
	mu       sync.Mutex
	capacity int
	events   []Event
	nextSeq  uint64
	now      func() time.Time
}

// NewEventLog constructs an event log holding at most capacity events.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = 512
	}
	return &EventLog{capacity: capacity, nextSeq: 1, now: time.Now}
}

// Append stores ev and returns its assigned sequence number.
func (l *EventLog) Append(ev Event) uint64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ev.Seq = l.nextSeq
	l.nextSeq++
	if ev.AtUnixMs == 0 {
		ev.AtUnixMs = l.now().UnixMilli()
	}
	if len(l.events) >= l.capacity {
		copy(l.events, l.events[1:])
		l.events[len(l.events)-1] = ev
	} else {
		l.events = append(l.events, ev)
	}
	return ev.Seq
}

// Since returns events with Seq > after and the latest sequence delivered.
func (l *EventLog) Since(after uint64) ([]Event, uint64) {
	if l == nil {
		return nil, after
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := 0
	for idx < len(l.events) && l.events[idx].Seq <= after {
		idx++
	}
	out := make([]Event, len(l.events)-idx)
	copy(out, l.events[idx:])
	latest := after
	if len(out) > 0 {
		latest = out[len(out)-1].Seq
	}
	return out, latest
}

// Len returns the number of retained events.
func (l *EventLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

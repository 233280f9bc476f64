// Simulator owning the per-service queue slots and their tick loop
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/telemetry"
)

// SampleWriter is an interface to support different output writers.
type SampleWriter interface {
	Write(telemetry.SampleRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.SampleRow) error
}

// State is the lifecycle state of the tick scheduler.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// ServiceSlot is the externally visible record of one monitored service.
type ServiceSlot struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latency   float64 `json:"latency"`
	Occupancy float64 `json:"occupancy"`
	Status    Status  `json:"status"`
}

// Snapshot is an immutable view of every slot after some tick.
type Snapshot struct {
	RunID    string        `json:"run_id"`
	Tick     uint64        `json:"tick"`
	Taken    time.Time     `json:"taken"`
	State    State         `json:"state"`
	Chaos    bool          `json:"chaos"`
	Services []ServiceSlot `json:"services"`
}

// Service returns the slot with the given ID.
func (s Snapshot) Service(id string) (ServiceSlot, bool) {
	for _, sl := range s.Services {
		if sl.ID == id {
			return sl, true
		}
	}
	return ServiceSlot{}, false
}

// TickHook runs after every applied tick, outside the simulator lock.
// It may call SetLatency but must not call Stop.
type TickHook func(ctx context.Context, snap Snapshot)

// slot is the mutable per-service state owned by the simulator.
type slot struct {
	id        string
	name      string
	latency   float64
	occupancy float64
	status    Status
}

// Simulator drives queue occupancy for a fixed set of services.
type Simulator struct {
	runID         string
	slots         []*slot
	index         map[string]*slot
	bounds        config.LatencyBounds
	drainConstant float64
	tickInterval  time.Duration
	chaosRate     float64
	inflow        Inflow
	rand          *rand.Rand
	writer        SampleWriter
	events        *EventLog
	metrics       *Metrics
	hooks         []TickHook
	now           func() time.Time
	log           *slog.Logger

	mu     sync.Mutex
	tickMu sync.Mutex
	tick   uint64
	chaos  bool
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	snap   atomic.Pointer[Snapshot]
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithInflow replaces the seeded random inflow source.
func WithInflow(in Inflow) Option {
	return func(s *Simulator) { s.inflow = in }
}

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// WithEventLog records events into l instead of a private log.
func WithEventLog(l *EventLog) Option {
	return func(s *Simulator) { s.events = l }
}

// WithMetrics publishes slot state to m.
func WithMetrics(m *Metrics) Option {
	return func(s *Simulator) { s.metrics = m }
}

// WithTickHook registers h to run after every tick.
func WithTickHook(h TickHook) Option {
	return func(s *Simulator) { s.hooks = append(s.hooks, h) }
}

// WithLogger sets the logger. Without it the logger is taken from the Start context.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

// WithRunID sets the identifier stamped on samples and snapshots.
func WithRunID(id string) Option {
	return func(s *Simulator) { s.runID = id }
}

// NewSimulator builds an idle simulator with one slot per configured service.
// writer may be nil.
func NewSimulator(cfg *config.SimulationConfig, writer SampleWriter, opts ...Option) *Simulator {
	if cfg == nil {
		cfg = config.Default()
	}
	bounds := cfg.Latency
	if bounds.Min <= 0 {
		bounds.Min = config.DefaultLatencyMin
	}
	if bounds.Max <= bounds.Min {
		bounds.Max = math.Max(bounds.Min, config.DefaultLatencyMax)
	}
	drain := cfg.DrainConstant
	if drain <= 0 {
		drain = config.DefaultDrainConstant
	}
	inflowMax := cfg.InflowMax
	if inflowMax < 0 {
		inflowMax = 0
	}
	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = config.DefaultTickInterval
	}
	chaosRate := cfg.ChaosRate
	if chaosRate < 0 {
		chaosRate = 0
	} else if chaosRate > 1 {
		chaosRate = 1
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Simulator{
		runID:         cfg.RunID,
		index:         make(map[string]*slot, len(cfg.Services)),
		bounds:        bounds,
		drainConstant: drain,
		tickInterval:  tickInterval,
		chaosRate:     chaosRate,
		inflow:        NewRandomInflow(seed, inflowMax),
		rand:          rand.New(rand.NewSource(seed)),
		writer:        writer,
		now:           time.Now,
		state:         StateIdle,
	}
	for _, svc := range cfg.Services {
		latency := svc.Latency
		if !bounds.Contains(latency) {
			latency = bounds.Min
		}
		occ := clampOccupancy(svc.SeedOccupancy)
		sl := &slot{
			id:        svc.ID,
			name:      svc.Name,
			latency:   latency,
			occupancy: occ,
			status:    Classify(occ),
		}
		s.slots = append(s.slots, sl)
		s.index[sl.id] = sl
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	if s.events == nil {
		s.events = NewEventLog(0)
	}
	for _, sl := range s.slots {
		s.metrics.observeSlot(sl.id, sl.latency, sl.occupancy)
	}
	s.mu.Lock()
	s.publishLocked()
	s.mu.Unlock()
	return s
}

// RunID returns the identifier of this simulator run.
func (s *Simulator) RunID() string { return s.runID }

// TickInterval returns the scheduler period.
func (s *Simulator) TickInterval() time.Duration { return s.tickInterval }

// Bounds returns the latency range accepted by SetLatency.
func (s *Simulator) Bounds() config.LatencyBounds { return s.bounds }

// Events returns the simulator's event log.
func (s *Simulator) Events() *EventLog { return s.events }

// ServiceIDs lists the tracked services in slot order.
func (s *Simulator) ServiceIDs() []string {
	ids := make([]string, len(s.slots))
	for i, sl := range s.slots {
		ids[i] = sl.id
	}
	return ids
}

// Snapshot returns the most recently published state. It never waits for a
// tick in progress.
func (s *Simulator) Snapshot() Snapshot {
	p := s.snap.Load()
	out := *p
	out.Services = append([]ServiceSlot(nil), p.Services...)
	return out
}

// State returns the scheduler state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetLatency changes a service's latency for all following ticks.
func (s *Simulator) SetLatency(id string, latency float64) error {
	s.mu.Lock()
	prev, err := s.setLatencyLocked(id, latency)
	tick := s.tick
	if err == nil {
		s.publishLocked()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger().Warn("latency write rejected", "service", id, "latency", latency, "err", err)
		s.events.Append(Event{
			Tick:    tick,
			Type:    EventLatencyRejected,
			Service: id,
			Message: err.Error(),
			Fields:  map[string]any{"latency": latency},
		})
		return err
	}
	s.events.Append(Event{
		Tick:    tick,
		Type:    EventLatencySet,
		Service: id,
		Message: fmt.Sprintf("%s latency %.1f -> %.1f", id, prev, latency),
		Fields:  map[string]any{"from": prev, "to": latency},
	})
	return nil
}

func (s *Simulator) setLatencyLocked(id string, latency float64) (float64, error) {
	sl, ok := s.index[id]
	if !ok {
		s.metrics.observeRejection("unknown_service")
		return 0, fmt.Errorf("%w: %q", ErrUnknownService, id)
	}
	if !s.bounds.Contains(latency) {
		s.metrics.observeRejection("invalid_latency")
		return sl.latency, fmt.Errorf("%w: %g not in [%g, %g]", ErrInvalidLatency, latency, s.bounds.Min, s.bounds.Max)
	}
	prev := sl.latency
	sl.latency = latency
	s.metrics.observeSlot(sl.id, sl.latency, sl.occupancy)
	return prev, nil
}

// ToggleChaos flips chaos mode on or off and returns the new state.
func (s *Simulator) ToggleChaos() bool {
	s.mu.Lock()
	s.chaos = !s.chaos
	on := s.chaos
	tick := s.tick
	s.publishLocked()
	s.mu.Unlock()
	s.events.Append(Event{
		Tick:    tick,
		Type:    EventChaosToggle,
		Message: fmt.Sprintf("chaos mode %t", on),
		Fields:  map[string]any{"chaos": on},
	})
	return on
}

// Chaos returns whether chaos mode is active.
func (s *Simulator) Chaos() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chaos
}

// injectChaosLocked may spike one random service to the maximum latency.
func (s *Simulator) injectChaosLocked() (string, bool) {
	if len(s.slots) == 0 || s.rand.Float64() >= s.chaosRate {
		return "", false
	}
	sl := s.slots[s.rand.Intn(len(s.slots))]
	if _, err := s.setLatencyLocked(sl.id, s.bounds.Max); err != nil {
		return "", false
	}
	return sl.id, true
}

func (s *Simulator) publishLocked() {
	snap := &Snapshot{
		RunID:    s.runID,
		Tick:     s.tick,
		Taken:    s.now().UTC(),
		State:    s.state,
		Chaos:    s.chaos,
		Services: make([]ServiceSlot, len(s.slots)),
	}
	for i, sl := range s.slots {
		snap.Services[i] = ServiceSlot{
			ID:        sl.id,
			Name:      sl.name,
			Latency:   sl.latency,
			Occupancy: sl.occupancy,
			Status:    sl.status,
		}
	}
	s.snap.Store(snap)
}

func (s *Simulator) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return slog.Default()
}

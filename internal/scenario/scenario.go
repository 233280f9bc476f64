package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"bulkhead-sim/internal/logging"
	"bulkhead-sim/internal/sim"
)

// Trigger event types.
const (
	// EventTicksElapsed carries the number of ticks since the phase was entered.
	EventTicksElapsed = "ticks_elapsed"
	// EventCriticalServices carries the number of services in the critical tier.
	EventCriticalServices = "critical_services"
)

// Scenario defines a scripted incident with ordered phases and an overall description.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Phase describes a stage of the incident: the latencies applied on entry and
// the triggers that move on to another phase.
type Phase struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Latencies   map[string]float64 `yaml:"latencies,omitempty"`
	Triggers    []Trigger          `yaml:"triggers,omitempty"`
}

// Trigger moves the scenario to another phase based on an event.
type Trigger struct {
	Event string `yaml:"event"`
	Value int    `yaml:"value"`
	Next  string `yaml:"next"`
}

// Event represents a runtime occurrence that may advance the scenario.
type Event struct {
	Type  string
	Value int
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks phase names are unique and every trigger points at a phase.
func (s *Scenario) Validate() error {
	if len(s.Phases) == 0 {
		return errors.New("scenario has no phases")
	}
	names := make(map[string]bool, len(s.Phases))
	for _, p := range s.Phases {
		if p.Name == "" {
			return errors.New("scenario phase without name")
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate phase %q", p.Name)
		}
		names[p.Name] = true
	}
	for _, p := range s.Phases {
		for _, tr := range p.Triggers {
			if tr.Event != EventTicksElapsed && tr.Event != EventCriticalServices {
				return fmt.Errorf("phase %q: unknown trigger event %q", p.Name, tr.Event)
			}
			if !names[tr.Next] {
				return fmt.Errorf("phase %q: trigger targets unknown phase %q", p.Name, tr.Next)
			}
		}
	}
	return nil
}

// Phase returns the phase with the given name.
func (s *Scenario) Phase(name string) (Phase, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// NextPhase returns the name of the next phase given the current phase and event.
// If no trigger matches, ok will be false.
func (s *Scenario) NextPhase(current string, ev Event) (next string, ok bool) {
	for _, p := range s.Phases {
		if p.Name != current {
			continue
		}
		for _, tr := range p.Triggers {
			if tr.Event == ev.Type && ev.Value >= tr.Value {
				return tr.Next, true
			}
		}
	}
	return "", false
}

// LatencySetter applies a latency to a named service.
type LatencySetter interface {
	SetLatency(id string, latency float64) error
}

// Runner drives a scenario from simulator snapshots.
type Runner struct {
	sc     *Scenario
	setter LatencySetter
	log    *slog.Logger

	mu      sync.Mutex
	phase   string
	entered uint64
	started bool
}

// NewRunner validates sc and returns a runner positioned before its first phase.
func NewRunner(sc *Scenario, setter LatencySetter) (*Runner, error) {
	if sc == nil {
		return nil, errors.New("nil scenario")
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &Runner{sc: sc, setter: setter}, nil
}

// WithLogger sets the logger used for phase changes.
func (r *Runner) WithLogger(l *slog.Logger) *Runner {
	r.log = l
	return r
}

// Current returns the active phase name, empty before Start.
func (r *Runner) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Start enters the first phase at the given tick.
func (r *Runner) Start(ctx context.Context, tick uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	r.started = true
	return r.enterLocked(ctx, r.sc.Phases[0], tick)
}

// Observe evaluates the current phase's triggers against snap and advances
// at most one phase.
func (r *Runner) Observe(ctx context.Context, snap sim.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		r.started = true
		return r.enterLocked(ctx, r.sc.Phases[0], snap.Tick)
	}
	critical := 0
	for _, s := range snap.Services {
		if s.Status == sim.StatusCritical {
			critical++
		}
	}
	events := []Event{
		{Type: EventTicksElapsed, Value: int(snap.Tick - r.entered)},
		{Type: EventCriticalServices, Value: critical},
	}
	for _, ev := range events {
		next, ok := r.sc.NextPhase(r.phase, ev)
		if !ok {
			continue
		}
		p, _ := r.sc.Phase(next)
		r.logger(ctx).Info("scenario phase change", "scenario", r.sc.Name, "from", r.phase, "to", next, "trigger", ev.Type, "value", ev.Value, "tick", snap.Tick)
		return r.enterLocked(ctx, p, snap.Tick)
	}
	return nil
}

// Hook adapts the runner to a simulator tick hook.
func (r *Runner) Hook() sim.TickHook {
	return func(ctx context.Context, snap sim.Snapshot) {
		if err := r.Observe(ctx, snap); err != nil {
			r.logger(ctx).Warn("scenario latency rejected", "scenario", r.sc.Name, "phase", r.Current(), "err", err)
		}
	}
}

func (r *Runner) enterLocked(ctx context.Context, p Phase, tick uint64) error {
	r.phase = p.Name
	r.entered = tick
	var errs []error
	for id, v := range p.Latencies {
		if err := r.setter.SetLatency(id, v); err != nil {
			errs = append(errs, fmt.Errorf("phase %q: %w", p.Name, err))
		}
	}
	r.logger(ctx).Debug("scenario phase entered", "phase", p.Name, "tick", tick, "latencies", len(p.Latencies))
	return errors.Join(errs...)
}

func (r *Runner) logger(ctx context.Context) *slog.Logger {
	if r.log != nil {
		return r.log
	}
	return logging.FromContext(ctx)
}

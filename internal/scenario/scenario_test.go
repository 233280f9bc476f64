package scenario

import (
	"context"
	"errors"
	"testing"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/sim"
)

type recordingSetter struct {
	calls map[string]float64
	err   error
}

func (r *recordingSetter) SetLatency(id string, v float64) error {
	if r.calls == nil {
		r.calls = make(map[string]float64)
	}
	r.calls[id] = v
	return r.err
}

func TestScenarioTransition(t *testing.T) {
	s := Scenario{
		Phases: []Phase{{
			Name:     "calm",
			Triggers: []Trigger{{Event: EventTicksElapsed, Value: 10, Next: "storm"}},
		}, {
			Name: "storm",
		}},
	}

	if _, ok := s.NextPhase("calm", Event{Type: EventTicksElapsed, Value: 9}); ok {
		t.Fatalf("transition fired early")
	}
	next, ok := s.NextPhase("calm", Event{Type: EventTicksElapsed, Value: 10})
	if !ok || next != "storm" {
		t.Fatalf("expected transition to storm, got %s", next)
	}
}

func TestLoadScenario(t *testing.T) {
	sc, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if sc.Name != "example" {
		t.Fatalf("unexpected name %s", sc.Name)
	}
	if sc.Description != "basic test scenario" {
		t.Fatalf("unexpected description %s", sc.Description)
	}
	if len(sc.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(sc.Phases))
	}
	if sc.Phases[1].Latencies["payments"] != 10 {
		t.Fatalf("unexpected storm latencies %v", sc.Phases[1].Latencies)
	}
}

func TestLoadRejectsUnknownTarget(t *testing.T) {
	if _, err := Load("testdata/bad_target.yaml"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := Load("testdata/missing.yaml"); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestBuiltInArcs(t *testing.T) {
	arcs := BuiltIn()
	for _, n := range []string{"slow-dependency", "rolling-degradation"} {
		arc, ok := arcs[n]
		if !ok {
			t.Fatalf("arc %s not found", n)
		}
		if arc.Description == "" {
			t.Fatalf("arc %s missing description", n)
		}
		if err := arc.Validate(); err != nil {
			t.Fatalf("arc %s invalid: %v", n, err)
		}
		ids := map[string]bool{}
		for _, id := range config.Default().ServiceIDs() {
			ids[id] = true
		}
		for _, p := range arc.Phases {
			for id := range p.Latencies {
				if !ids[id] {
					t.Fatalf("arc %s phase %s names unknown service %s", n, p.Name, id)
				}
			}
		}
	}
}

func TestRunnerDrivesSimulator(t *testing.T) {
	sc, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := sim.NewSimulator(config.Default(), nil, sim.WithInflow(sim.ConstantInflow(0)))
	r, err := NewRunner(sc, s)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	ctx := context.Background()
	if err := r.Start(ctx, 0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.Current() != "calm" {
		t.Fatalf("phase = %s", r.Current())
	}

	hook := r.Hook()
	for i := 0; i < 2; i++ {
		if err := s.Step(ctx); err != nil {
			t.Fatalf("step: %v", err)
		}
		hook(ctx, s.Snapshot())
	}
	if r.Current() != "storm" {
		t.Fatalf("phase = %s, want storm", r.Current())
	}
	slot, _ := s.Snapshot().Service("payments")
	if slot.Latency != 10 {
		t.Fatalf("payments latency = %v", slot.Latency)
	}
}

func TestRunnerCriticalTrigger(t *testing.T) {
	sc := &Scenario{
		Name: "crit",
		Phases: []Phase{
			{Name: "watch", Triggers: []Trigger{{Event: EventCriticalServices, Value: 1, Next: "respond"}}},
			{Name: "respond", Latencies: map[string]float64{"payments": 1}},
		},
	}
	setter := &recordingSetter{}
	r, err := NewRunner(sc, setter)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	ctx := context.Background()
	snap := sim.Snapshot{Tick: 1, Services: []sim.ServiceSlot{{ID: "payments", Status: sim.StatusWarning}}}
	if err := r.Observe(ctx, snap); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if err := r.Observe(ctx, snap); err != nil || r.Current() != "watch" {
		t.Fatalf("advanced without a critical service: %s %v", r.Current(), err)
	}
	snap.Services[0].Status = sim.StatusCritical
	if err := r.Observe(ctx, snap); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if r.Current() != "respond" || setter.calls["payments"] != 1 {
		t.Fatalf("phase = %s calls = %v", r.Current(), setter.calls)
	}
}

func TestRunnerReportsRejectedLatency(t *testing.T) {
	sc := &Scenario{Phases: []Phase{{Name: "only", Latencies: map[string]float64{"search": 3}}}}
	setter := &recordingSetter{err: sim.ErrUnknownService}
	r, err := NewRunner(sc, setter)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	if err := r.Start(context.Background(), 0); !errors.Is(err, sim.ErrUnknownService) {
		t.Fatalf("expected wrapped ErrUnknownService, got %v", err)
	}
}

func TestNewRunnerRejectsEmpty(t *testing.T) {
	if _, err := NewRunner(&Scenario{}, &recordingSetter{}); err == nil {
		t.Fatalf("expected error")
	}
}

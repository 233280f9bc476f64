package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simulation.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeTemp(t, `
tick_interval: 250ms
seed: 42
latency:
  min: 1
  max: 10
services:
  - id: payments
    name: Payments
    seed_occupancy: 10
    latency: 2.5
  - id: reviews
    seed_occupancy: 15
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("tick interval = %v, want 250ms", cfg.TickInterval)
	}
	if cfg.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Seed)
	}
	if len(cfg.Services) != 2 || cfg.Services[0].Latency != 2.5 {
		t.Fatalf("unexpected services: %+v", cfg.Services)
	}
	if cfg.Services[1].Name != "reviews" || cfg.Services[1].Latency != 1 {
		t.Errorf("expected defaults for reviews, got %+v", cfg.Services[1])
	}
	if cfg.InflowMax != DefaultInflowMax || cfg.DrainConstant != DefaultDrainConstant {
		t.Errorf("expected model defaults, got inflow=%g drain=%g", cfg.InflowMax, cfg.DrainConstant)
	}
}

func TestLoadConfig_RepositoryFile(t *testing.T) {
	cfg, err := Load("../../config/simulation.yaml", "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if got := strings.Join(cfg.ServiceIDs(), ","); got != "payments,inventory,reviews" {
		t.Errorf("service ids = %s", got)
	}
}

func TestLoadConfig_SchemaRejectsUnknownField(t *testing.T) {
	path := writeTemp(t, `
services:
  - id: payments
    colour: emerald
`)
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected schema validation error for unknown field")
	}
}

func TestLoadConfig_SchemaRejectsSeedOutOfRange(t *testing.T) {
	path := writeTemp(t, `
services:
  - id: payments
    seed_occupancy: 140
`)
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected schema validation error for seed_occupancy")
	}
}

func TestLoadConfig_DuplicateIDs(t *testing.T) {
	path := writeTemp(t, `
services:
  - id: payments
  - id: payments
`)
	_, err := Load(path, "")
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestLoadConfig_LatencyOutsideBounds(t *testing.T) {
	path := writeTemp(t, `
latency:
  min: 1
  max: 5
services:
  - id: payments
    latency: 7
`)
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected latency bounds error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	seeds := []float64{10, 20, 15}
	for i, s := range cfg.Services {
		if s.SeedOccupancy != seeds[i] || s.Latency != 1 {
			t.Errorf("service %d = %+v", i, s)
		}
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Errorf("tick interval = %v", cfg.TickInterval)
	}
}

func TestLatencyBoundsContains(t *testing.T) {
	b := LatencyBounds{Min: 1, Max: 10}
	for _, v := range []float64{1, 5.5, 10} {
		if !b.Contains(v) {
			t.Errorf("expected %g inside bounds", v)
		}
	}
	for _, v := range []float64{0, -1, 0.5, 10.01} {
		if b.Contains(v) {
			t.Errorf("expected %g outside bounds", v)
		}
	}
}

func TestLoadConfig_ExplicitZeros(t *testing.T) {
	path := writeTemp(t, `
chaos_rate: 0
inflow_max: 0
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ChaosRate != 0 || cfg.InflowMax != 0 {
		t.Fatalf("explicit zeros overwritten: chaos_rate=%g inflow_max=%g", cfg.ChaosRate, cfg.InflowMax)
	}

	path = writeTemp(t, "seed: 7\n")
	cfg, err = Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ChaosRate != DefaultChaosRate || cfg.InflowMax != DefaultInflowMax {
		t.Fatalf("omitted fields not defaulted: chaos_rate=%g inflow_max=%g", cfg.ChaosRate, cfg.InflowMax)
	}
}

func TestLoadConfig_StepLargerThanRange(t *testing.T) {
	path := writeTemp(t, `
latency:
  min: 1
  max: 10
  step: 50
`)
	_, err := Load(path, "")
	if err == nil || !strings.Contains(err.Error(), "step") {
		t.Fatalf("expected latency step error, got %v", err)
	}
}

// YAML config loader with CUE validation integration
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var embeddedSchema []byte

// Reference values of the queue dynamics model.
const (
	DefaultTickInterval  = 100 * time.Millisecond
	DefaultInflowMax     = 8.0
	DefaultDrainConstant = 12.0
	DefaultLatencyMin    = 1.0
	DefaultLatencyMax    = 10.0
	DefaultLatencyStep   = 0.1
	DefaultChaosRate     = 0.05
	DefaultAdminAddr     = ":8080"
)

// Service describes one monitored service and its starting point.
type Service struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	SeedOccupancy float64 `yaml:"seed_occupancy"`
	Latency       float64 `yaml:"latency"`
}

// LatencyBounds limits what the latency control surface accepts.
type LatencyBounds struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// Contains reports whether v is a finite value inside the bounds.
func (b LatencyBounds) Contains(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return false
	}
	return v >= b.Min && v <= b.Max
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SimulationConfig is the root configuration for the simulator and its surfaces.
type SimulationConfig struct {
	RunID         string        `yaml:"run_id"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	Seed          int64         `yaml:"seed"`
	InflowMax     float64       `yaml:"inflow_max"`
	DrainConstant float64       `yaml:"drain_constant"`
	Latency       LatencyBounds `yaml:"latency"`
	ChaosRate     float64       `yaml:"chaos_rate"`
	AdminAddr     string        `yaml:"admin_addr"`
	Log           LogConfig     `yaml:"log"`
	Services      []Service     `yaml:"services"`
}

// DefaultServices returns the three reference services.
func DefaultServices() []Service {
	return []Service{
		{ID: "payments", Name: "Payments", SeedOccupancy: 10, Latency: 1},
		{ID: "inventory", Name: "Inventory", SeedOccupancy: 20, Latency: 1},
		{ID: "reviews", Name: "Reviews", SeedOccupancy: 15, Latency: 1},
	}
}

// Default returns the reference configuration.
func Default() *SimulationConfig {
	cfg := &SimulationConfig{InflowMax: DefaultInflowMax, ChaosRate: DefaultChaosRate}
	cfg.applyDefaults()
	return cfg
}

// Load loads YAML config and validates it against a CUE schema.
// An empty cueSchemaPath uses the schema compiled into the binary.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	schema := embeddedSchema
	if cueSchemaPath != "" {
		schema, err = os.ReadFile(cueSchemaPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read CUE schema: %w", err)
		}
	}
	return Parse(configPath, data, schema)
}

// Parse validates and decodes YAML config bytes. name is used in error messages.
func Parse(name string, data, schema []byte) (*SimulationConfig, error) {
	if err := ValidateWithCue(name, data, schema); err != nil {
		return nil, err
	}
	// decode over the defaults so explicit zeros survive
	cfg := Default()
	cfg.Services = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateWithCue checks YAML config bytes against the #Config definition of a CUE schema.
func ValidateWithCue(name string, yamlBytes, schemaBytes []byte) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileBytes(schemaBytes, cue.Filename("schema.cue"))
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("compile CUE schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return errors.New("CUE schema does not define #Config")
	}

	file, err := cueyaml.Extract(name, yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(file)
	if err := configVal.Err(); err != nil {
		return fmt.Errorf("cannot build YAML config: %w", err)
	}

	final := def.Unify(configVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func (c *SimulationConfig) applyDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.DrainConstant == 0 {
		c.DrainConstant = DefaultDrainConstant
	}
	if c.Latency.Min == 0 {
		c.Latency.Min = DefaultLatencyMin
	}
	if c.Latency.Max == 0 {
		c.Latency.Max = DefaultLatencyMax
	}
	if c.Latency.Step == 0 {
		c.Latency.Step = DefaultLatencyStep
	}
	if c.AdminAddr == "" {
		c.AdminAddr = DefaultAdminAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if len(c.Services) == 0 {
		c.Services = DefaultServices()
	}
	for i := range c.Services {
		if c.Services[i].Name == "" {
			c.Services[i].Name = c.Services[i].ID
		}
		if c.Services[i].Latency == 0 {
			c.Services[i].Latency = c.Latency.Min
		}
	}
}

// Validate checks cross-field constraints the schema cannot express.
func (c *SimulationConfig) Validate() error {
	if c.Latency.Min <= 0 || c.Latency.Min >= c.Latency.Max {
		return fmt.Errorf("latency bounds must satisfy 0 < min < max, got [%g, %g]", c.Latency.Min, c.Latency.Max)
	}
	if c.Latency.Step <= 0 || c.Latency.Step > c.Latency.Max-c.Latency.Min {
		return fmt.Errorf("latency step must satisfy 0 < step <= max-min, got %g for [%g, %g]", c.Latency.Step, c.Latency.Min, c.Latency.Max)
	}
	if len(c.Services) == 0 {
		return errors.New("no services defined in the configuration")
	}
	seen := make(map[string]struct{}, len(c.Services))
	for _, s := range c.Services {
		if s.ID == "" {
			return errors.New("service id must not be empty")
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate service id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.SeedOccupancy < 0 || s.SeedOccupancy > 100 {
			return fmt.Errorf("service %q: seed_occupancy %g outside [0, 100]", s.ID, s.SeedOccupancy)
		}
		if !c.Latency.Contains(s.Latency) {
			return fmt.Errorf("service %q: latency %g outside [%g, %g]", s.ID, s.Latency, c.Latency.Min, c.Latency.Max)
		}
	}
	return nil
}

// ServiceIDs lists the configured service IDs in order.
func (c *SimulationConfig) ServiceIDs() []string {
	ids := make([]string, len(c.Services))
	for i, s := range c.Services {
		ids[i] = s.ID
	}
	return ids
}

package sim

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// Inflow supplies the arrival term for one service on one tick.
type Inflow interface {
	Draw(serviceID string) float64
}

// RandomInflow draws uniformly from [0, max). Every service gets its own
// stream, so one service's draws never depend on how often another drew.
// It is not safe for concurrent use; the simulator serializes access.
type RandomInflow struct {
	seed    int64
	max     float64
	streams map[string]*rand.Rand
}

// NewRandomInflow creates a RandomInflow whose streams derive from seed.
func NewRandomInflow(seed int64, max float64) *RandomInflow {
	return &RandomInflow{seed: seed, max: max, streams: make(map[string]*rand.Rand)}
}

// Draw returns the next inflow value for serviceID.
func (r *RandomInflow) Draw(serviceID string) float64 {
	src, ok := r.streams[serviceID]
	if !ok {
		src = rand.New(rand.NewSource(StreamSeed(r.seed, serviceID)))
		r.streams[serviceID] = src
	}
	return src.Float64() * r.max
}

// StreamSeed derives the per-service seed from the base seed and the service ID.
func StreamSeed(seed int64, serviceID string) int64 {
	h := xxhash.New()
	_, _ = h.WriteString("inflow::")
	_, _ = h.WriteString(serviceID)
	return seed ^ int64(h.Sum64())
}

// ConstantInflow returns the same inflow for every service on every tick.
type ConstantInflow float64

// Draw implements Inflow.
func (c ConstantInflow) Draw(string) float64 { return float64(c) }

// InflowFunc adapts a function to Inflow.
type InflowFunc func(serviceID string) float64

// Draw implements Inflow.
func (f InflowFunc) Draw(serviceID string) float64 { return f(serviceID) }

package sim

import "math"

// Occupancy bounds, in percent.
const (
	MinOccupancy = 0.0
	MaxOccupancy = 100.0
)

// DrainRate is the outflow per tick for a service with the given latency.
// A slow dependency clears its backlog proportionally slower. latency must be > 0.
func DrainRate(latency, drainConstant float64) float64 {
	return drainConstant / latency
}

// NextOccupancy applies one tick of inflow and outflow and clamps the result
// to [MinOccupancy, MaxOccupancy].
func NextOccupancy(current, inflow, outflow float64) float64 {
	return clampOccupancy(current + inflow - outflow)
}

func clampOccupancy(v float64) float64 {
	return math.Min(MaxOccupancy, math.Max(MinOccupancy, v))
}

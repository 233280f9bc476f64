package lesson

// Compartments is the number of watertight sections in the ship.
const Compartments = 4

// BreachTarget is the compartment the iceberg strikes in the lesson.
const BreachTarget = 1

// Ship is the maritime picture of a bulkhead: water entering one compartment
// stays there.
type Ship struct {
	flooded [Compartments]bool
}

// Breach floods compartment i (0-based). Out of range indexes are ignored.
func (s *Ship) Breach(i int) {
	if i < 0 || i >= Compartments {
		return
	}
	s.flooded[i] = true
}

// Repair pumps every compartment dry.
func (s *Ship) Repair() { s.flooded = [Compartments]bool{} }

// Flooded reports whether compartment i holds water.
func (s *Ship) Flooded(i int) bool {
	return i >= 0 && i < Compartments && s.flooded[i]
}

// Breached reports whether any compartment holds water.
func (s *Ship) Breached() bool {
	for _, f := range s.flooded {
		if f {
			return true
		}
	}
	return false
}

// Status is the line shown under the hull.
func (s *Ship) Status() string {
	if s.Breached() {
		return "HULL BREACH - CONTAINED"
	}
	return "HULL INTEGRITY 100%"
}

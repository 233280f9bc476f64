package sim

// Status is the tier a service's pool occupancy falls into.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Occupancy thresholds, in percent of pool capacity.
const (
	WarningThreshold  = 60.0
	CriticalThreshold = 90.0
)

// Classify maps an occupancy value to a status tier. Anything that is not
// above the warning threshold is healthy, NaN included.
func Classify(occupancy float64) Status {
	switch {
	case occupancy > CriticalThreshold:
		return StatusCritical
	case occupancy > WarningThreshold:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

// Label returns the banner text displayed for the status.
func (s Status) Label() string {
	switch s {
	case StatusCritical:
		return "CRITICAL - REJECTING"
	case StatusWarning:
		return "WARNING - HIGH LOAD"
	default:
		return "HEALTHY"
	}
}

// Severity orders statuses: healthy < warning < critical.
func (s Status) Severity() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

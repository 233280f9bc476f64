// Sample rows emitted by the simulator on every tick
package telemetry

import (
	"os"
	"time"
)

// SampleRow represents one service's state after one tick.
type SampleRow struct {
	RunID     string    `json:"run_id"`     // TAG
	ServiceID string    `json:"service_id"` // TAG
	Name      string    `json:"name"`       // FIELD
	Tick      uint64    `json:"tick"`       // FIELD
	Latency   float64   `json:"latency"`    // FIELD
	Occupancy float64   `json:"occupancy"`  // FIELD
	Status    string    `json:"status"`     // FIELD
	Timestamp time.Time `json:"ts"`         // TIME INDEX
}

// SampleTableName holds the table name used when writing to GreptimeDB.
// It defaults to "bulkhead_samples" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var SampleTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "bulkhead_samples"
}()

func (SampleRow) TableName() string {
	return SampleTableName
}

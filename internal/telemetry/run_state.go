package telemetry

import (
	"os"
	"time"
)

// RunStateRow captures per-cycle bridge run metrics.
type RunStateRow struct {
	PlantID   string    `json:"plant_id"`
	RunID     string    `json:"run_id"`
	State     string    `json:"state"`
	LinkUp    bool      `json:"link_up"`
	Cycle     uint64    `json:"cycle"`
	SimTimeS  float64   `json:"sim_time_s"`
	CycleMS   float64   `json:"cycle_ms"`
	Timestamp time.Time `json:"ts"`
}

// RunStateTableName holds the table name used for run state rows in
// GreptimeDB. It defaults to "bridge_run_state" but can be overridden
// via the RUN_STATE_TABLE environment variable.
var RunStateTableName = func() string {
	if env := os.Getenv("RUN_STATE_TABLE"); env != "" {
		return env
	}
	return "bridge_run_state"
}()

func (RunStateRow) TableName() string {
	return RunStateTableName
}

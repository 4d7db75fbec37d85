// Telemetry structs with greptime tags
package telemetry

import (
	"os"
	"time"
)

// CycleRow represents one sampled hydraulic quantity for GreptimeDB.
type CycleRow struct {
	PlantID    string    `json:"plant_id"`    // TAG
	RunID      string    `json:"run_id"`      // TAG
	Quantity   string    `json:"quantity"`    // TAG
	AssetIndex int       `json:"asset_index"` // TAG
	Cycle      uint64    `json:"cycle"`       // FIELD
	Value      float64   `json:"value"`       // FIELD
	SimTimeS   float64   `json:"sim_time_s"`  // FIELD
	Timestamp  time.Time `json:"ts"`          // TIME INDEX
}

// CycleTableName holds the table name used when writing to GreptimeDB.
// It defaults to "plant_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var CycleTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "plant_telemetry"
}()

func (CycleRow) TableName() string {
	return CycleTableName
}

// Sampled quantity names.
const (
	QuantityJunctionPressure = "junction_pressure"
	QuantityTankHead         = "tank_head"
	QuantityPumpFlow         = "pump_flow"
	QuantityPipeStatus       = "pipe_status"
	QuantityPumpSetting      = "pump_setting"
)

// ControlFrame holds one cycle's decoded controller outputs,
// ordered by asset index.
type ControlFrame struct {
	PipeOpen     []bool    `json:"pipe_open"`
	PumpSettings []float64 `json:"pump_settings"`
}

// TelemetryFrame holds one cycle's computed hydraulic state,
// ordered by asset index, in engine-native units.
type TelemetryFrame struct {
	JunctionPressures []float64 `json:"junction_pressures"`
	TankHeads         []float64 `json:"tank_heads"`
	PumpFlows         []float64 `json:"pump_flows"`
}

// NetworkOverview summarizes a loaded network model.
type NetworkOverview struct {
	Model      string        `json:"model"`
	Junctions  int           `json:"junctions"`
	Reservoirs int           `json:"reservoirs"`
	Tanks      int           `json:"tanks"`
	Pipes      int           `json:"pipes"`
	Pumps      int           `json:"pumps"`
	Valves     int           `json:"valves"`
	HydStep    time.Duration `json:"hyd_step"`
}

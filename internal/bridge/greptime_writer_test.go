package bridge

import (
	"context"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"waterops-bridge/internal/telemetry"
)

type mockGreptimeClient struct {
	table *table.Table
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterCycleRows(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	rows := []telemetry.CycleRow{
		{
			PlantID:    "p1",
			RunID:      "r1",
			Quantity:   telemetry.QuantityJunctionPressure,
			AssetIndex: 7,
			Cycle:      4,
			Value:      10.5,
			SimTimeS:   4,
			Timestamp:  ts,
		},
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, pointsTable: "plant_telemetry"}

	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}

	schema := m.table.GetRows().Schema
	if len(schema) != 8 {
		t.Fatalf("unexpected schema length: %d", len(schema))
	}
	if schema[3].Datatype != gpb.ColumnDataType_INT64 {
		t.Fatalf("asset_index column type = %v, want %v", schema[3].Datatype, gpb.ColumnDataType_INT64)
	}
	if schema[7].Datatype != gpb.ColumnDataType_TIMESTAMP_MILLISECOND {
		t.Fatalf("ts column type = %v, want %v", schema[7].Datatype, gpb.ColumnDataType_TIMESTAMP_MILLISECOND)
	}

	values := m.table.GetRows().Rows[0].Values
	if got := values[0].GetStringValue(); got != "p1" {
		t.Fatalf("plant_id = %s, want p1", got)
	}
	if got := values[3].GetI64Value(); got != 7 {
		t.Fatalf("asset_index = %d, want 7", got)
	}
	if got := values[5].GetF64Value(); got != 10.5 {
		t.Fatalf("value = %v, want 10.5", got)
	}
}

func TestGreptimeWriterState(t *testing.T) {
	row := telemetry.RunStateRow{
		PlantID:   "p1",
		RunID:     "r1",
		State:     "running",
		LinkUp:    true,
		Cycle:     4,
		SimTimeS:  4,
		CycleMS:   1.25,
		Timestamp: time.Unix(0, 0).UTC(),
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, stateTable: "bridge_run_state"}

	if err := w.WriteState(row); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}

	values := m.table.GetRows().Rows[0].Values
	if got := values[2].GetStringValue(); got != "running" {
		t.Fatalf("state = %s, want running", got)
	}
	if !values[3].GetBoolValue() {
		t.Fatalf("link_up = false, want true")
	}
}

package bridge

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"waterops-bridge/internal/telemetry"
)

type collectWriter struct{ rows []telemetry.CycleRow }

func (c *collectWriter) Write(r telemetry.CycleRow) error {
	c.rows = append(c.rows, r)
	return nil
}

func TestReplayLog(t *testing.T) {
	rows := []telemetry.CycleRow{
		{PlantID: "p1", Quantity: telemetry.QuantityJunctionPressure, AssetIndex: 1, Cycle: 1, Timestamp: time.Unix(0, 0)},
		{PlantID: "p1", Quantity: telemetry.QuantityTankHead, AssetIndex: 3, Cycle: 1, Timestamp: time.Unix(1, 0)},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &collectWriter{}
	if err := ReplayLog(&buf, cw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(cw.rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.rows))
	}
	for i, r := range rows {
		if cw.rows[i].Quantity != r.Quantity || cw.rows[i].AssetIndex != r.AssetIndex {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.rows[i], r)
		}
	}
}

func TestReplayLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.json")
	row := telemetry.CycleRow{PlantID: "p1", Quantity: telemetry.QuantityPumpFlow, AssetIndex: 2, Timestamp: time.Unix(0, 0)}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cw := &collectWriter{}
	if err := ReplayLogFile(path, cw, 0); err != nil {
		t.Fatalf("ReplayLogFile: %v", err)
	}
	if len(cw.rows) != 1 || cw.rows[0].Quantity != telemetry.QuantityPumpFlow {
		t.Fatalf("unexpected rows: %+v", cw.rows)
	}
}

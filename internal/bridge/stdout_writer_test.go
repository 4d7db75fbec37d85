package bridge

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"waterops-bridge/internal/telemetry"
)

func TestJSONStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &JSONStdoutWriter{out: buf}
	row := telemetry.CycleRow{
		PlantID:    "p1",
		Quantity:   telemetry.QuantityJunctionPressure,
		AssetIndex: 4,
		Cycle:      2,
		Value:      51.7,
		Timestamp:  time.Unix(0, 0).UTC(),
	}
	if err := w.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
	var got telemetry.CycleRow
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Quantity != row.Quantity || got.Value != row.Value || got.AssetIndex != row.AssetIndex {
		t.Fatalf("unexpected row: %#v", got)
	}
}

func TestColorStdoutWriterOverviewPrintedOnce(t *testing.T) {
	ov := &telemetry.NetworkOverview{
		Model:     "net1.inp",
		Junctions: 9,
		Tanks:     1,
		Pipes:     12,
		Pumps:     1,
		HydStep:   time.Second,
	}
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{overview: ov, out: buf}
	row := telemetry.CycleRow{
		PlantID:    "p1",
		Quantity:   telemetry.QuantityPumpFlow,
		AssetIndex: 2,
		Cycle:      1,
		Value:      40,
		Timestamp:  time.Unix(0, 0).UTC(),
	}
	if err := w.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Network Overview:") || !strings.Contains(output, "net1.inp") {
		t.Fatalf("overview not printed: %q", output)
	}
	if !strings.Contains(output, "\x1b[") {
		t.Fatalf("expected color codes in output: %q", output)
	}

	buf.Reset()
	if err := w.Write(row); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if strings.Contains(buf.String(), "Network Overview:") {
		t.Fatalf("overview printed more than once")
	}
}

func TestColorStdoutWriterState(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{out: buf}
	row := telemetry.RunStateRow{
		PlantID:   "p1",
		State:     "running",
		LinkUp:    true,
		Cycle:     3,
		SimTimeS:  3,
		CycleMS:   1.5,
		Timestamp: time.Unix(0, 0).UTC(),
	}
	if err := w.WriteState(row); err != nil {
		t.Fatalf("write state failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "STATE") || !strings.Contains(output, "state=running") {
		t.Fatalf("unexpected state line: %q", output)
	}
	if !strings.Contains(output, "link_up=true") {
		t.Fatalf("link flag missing: %q", output)
	}
}

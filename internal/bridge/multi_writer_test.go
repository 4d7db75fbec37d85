package bridge

import (
	"testing"

	"waterops-bridge/internal/telemetry"
)

type stubCycleWriter struct{ rows []telemetry.CycleRow }

func (s *stubCycleWriter) Write(r telemetry.CycleRow) error {
	s.rows = append(s.rows, r)
	return nil
}

type stubStateWriter struct{ states []telemetry.RunStateRow }

func (s *stubStateWriter) WriteState(r telemetry.RunStateRow) error {
	s.states = append(s.states, r)
	return nil
}

func TestMultiWriterFanOut(t *testing.T) {
	a := &stubCycleWriter{}
	b := &stubCycleWriter{}
	mw := NewMultiWriter([]CycleWriter{a, b}, nil)
	if err := mw.Write(telemetry.CycleRow{Quantity: telemetry.QuantityPumpFlow}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(a.rows) != 1 || len(b.rows) != 1 {
		t.Fatalf("expected row in both writers, got %d and %d", len(a.rows), len(b.rows))
	}
}

func TestMultiWriterBatchUpgrade(t *testing.T) {
	plain := &stubCycleWriter{}
	batch := &collectBatchWriter{}
	mw := NewMultiWriter([]CycleWriter{plain, batch}, nil)
	rows := []telemetry.CycleRow{
		{Quantity: telemetry.QuantityJunctionPressure, AssetIndex: 1},
		{Quantity: telemetry.QuantityJunctionPressure, AssetIndex: 2},
	}
	if err := mw.WriteBatch(rows); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if len(plain.rows) != 2 {
		t.Fatalf("plain writer should see each row, got %d", len(plain.rows))
	}
	if len(batch.batches) != 1 || len(batch.batches[0]) != 2 {
		t.Fatalf("batch writer should see one batch of 2, got %+v", batch.batches)
	}
	if batch.writes != 0 {
		t.Fatalf("batch writer must not receive single rows, got %d", batch.writes)
	}
}

type stubStatusWriter struct {
	stubCycleWriter
	admin    bool
	overview telemetry.NetworkOverview
}

func (s *stubStatusWriter) SetAdminStatus(listening bool) { s.admin = listening }
func (s *stubStatusWriter) SetOverview(ov telemetry.NetworkOverview) { s.overview = ov }

func TestMultiWriterForwardsStatus(t *testing.T) {
	s := &stubStatusWriter{}
	mw := NewMultiWriter([]CycleWriter{&stubCycleWriter{}, s}, nil)
	mw.SetAdminStatus(true)
	if !s.admin {
		t.Fatalf("admin status not forwarded")
	}
	mw.SetOverview(telemetry.NetworkOverview{Model: "net1.inp"})
	if s.overview.Model != "net1.inp" {
		t.Fatalf("overview not forwarded")
	}
}

func TestMultiWriterState(t *testing.T) {
	a := &stubStateWriter{}
	b := &stubStateWriter{}
	mw := NewMultiWriter(nil, []StateWriter{a, b})
	if err := mw.WriteState(telemetry.RunStateRow{State: "running"}); err != nil {
		t.Fatalf("write state: %v", err)
	}
	if len(a.states) != 1 || len(b.states) != 1 {
		t.Fatalf("expected state in both writers, got %d and %d", len(a.states), len(b.states))
	}
}

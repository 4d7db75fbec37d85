package bridge

import "waterops-bridge/internal/telemetry"

// MultiWriter fan-outs cycle and state rows to multiple writers.
type MultiWriter struct {
	cycleWriters []CycleWriter
	stateWriters []StateWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(cws []CycleWriter, sws []StateWriter) *MultiWriter {
	return &MultiWriter{cycleWriters: cws, stateWriters: sws}
}

// Write sends a cycle row to all writers.
func (mw *MultiWriter) Write(row telemetry.CycleRow) error {
	for _, w := range mw.cycleWriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple cycle rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.CycleRow) error {
	for _, w := range mw.cycleWriters {
		if bw, ok := w.(batchCycleWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteState sends a run state row to all state writers.
func (mw *MultiWriter) WriteState(row telemetry.RunStateRow) error {
	for _, w := range mw.stateWriters {
		if err := w.WriteState(row); err != nil {
			return err
		}
	}
	return nil
}

// SetAdminStatus forwards the admin API status to capable writers.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	for _, w := range mw.cycleWriters {
		if aw, ok := w.(AdminStatusWriter); ok {
			aw.SetAdminStatus(listening)
		}
	}
}

// SetOverview forwards the network overview to capable writers.
func (mw *MultiWriter) SetOverview(ov telemetry.NetworkOverview) {
	for _, w := range mw.cycleWriters {
		if ow, ok := w.(OverviewWriter); ok {
			ow.SetOverview(ov)
		}
	}
}

package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waterops-bridge/internal/hydraulic"
	"waterops-bridge/internal/logging"
	"waterops-bridge/internal/regmap"
	"waterops-bridge/internal/telemetry"
)

// Run drives the bridge through its lifecycle: connect and load, cycle
// until ctx is cancelled or a cycle fails, then drain. Cancellation is
// the clean-shutdown path and returns nil; any other cause is returned
// to the caller after draining.
func (b *Bridge) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Info("starting bridge", "plant", b.plantID, "run_id", b.runID, "interval", b.interval)
	b.setState(StateStarting)

	runErr := b.start(ctx)
	if runErr == nil {
		b.setState(StateRunning)
		runErr = b.loop(ctx)
	}

	b.setState(StateDraining)
	b.drain(ctx)
	b.setState(StateStopped)

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// loop paces cycles at the configured wall-clock interval. Cancellation
// is observed between cycles, never mid-I/O.
func (b *Bridge) loop(ctx context.Context) error {
	log := logging.FromContext(ctx)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := b.runCycle(ctx); err != nil {
				log.Error("cycle failed", "cycle", b.Cycles()+1, "err", err)
				return err
			}
		case <-ctx.Done():
			log.Info("stopping bridge")
			return nil
		}
	}
}

// runCycle executes one control cycle: pull controls, apply them to
// the model, advance one hydraulic step, push telemetry back. Any
// failure aborts the run; a cycle never applies half-updated controls.
func (b *Bridge) runCycle(ctx context.Context) error {
	started := time.Now()

	coils, err := b.link.ReadCoils(regmap.PipeStatusBase, regmap.PipeStatusSlots)
	if err != nil {
		return fmt.Errorf("read controls: %w", err)
	}
	regs, err := b.link.ReadHoldingRegisters(regmap.PumpSettingBase, regmap.PumpSettingSlots)
	if err != nil {
		return fmt.Errorf("read controls: %w", err)
	}

	frame, err := regmap.DecodeControlFrame(coils, regs, len(b.pipes), len(b.pumps))
	if err != nil {
		return fmt.Errorf("decode controls: %w", err)
	}

	// Pipes first, then pumps; both apply to the same next step.
	for i, idx := range b.pipes {
		if err := b.plant.SetPipeStatus(idx, frame.PipeOpen[i]); err != nil {
			return fmt.Errorf("apply controls: %w", err)
		}
	}
	for i, idx := range b.pumps {
		if err := b.plant.SetPumpSetting(idx, frame.PumpSettings[i]); err != nil {
			return fmt.Errorf("apply controls: %w", err)
		}
	}

	if err := b.plant.Step(); err != nil {
		return err
	}

	tf, err := b.readTelemetry()
	if err != nil {
		return err
	}

	writes, err := regmap.EncodeTelemetry(tf)
	if err != nil {
		return fmt.Errorf("encode telemetry: %w", err)
	}
	for _, w := range writes {
		if err := b.link.WriteRegisters(w.Addr, w.Values); err != nil {
			return fmt.Errorf("write telemetry: %w", err)
		}
	}

	b.publish(ctx, frame, tf, time.Since(started))
	return nil
}

// readTelemetry pulls the just-computed state in canonical index
// order.
func (b *Bridge) readTelemetry() (telemetry.TelemetryFrame, error) {
	tf := telemetry.TelemetryFrame{
		JunctionPressures: make([]float64, 0, len(b.junctions)),
		TankHeads:         make([]float64, 0, len(b.tanks)),
		PumpFlows:         make([]float64, 0, len(b.pumps)),
	}
	for _, idx := range b.junctions {
		v, err := b.plant.Pressure(idx)
		if err != nil {
			return tf, err
		}
		tf.JunctionPressures = append(tf.JunctionPressures, v)
	}
	for _, idx := range b.tanks {
		v, err := b.plant.Head(idx)
		if err != nil {
			return tf, err
		}
		tf.TankHeads = append(tf.TankHeads, v)
	}
	for _, idx := range b.pumps {
		v, err := b.plant.Flow(idx)
		if err != nil {
			return tf, err
		}
		tf.PumpFlows = append(tf.PumpFlows, v)
	}
	return tf, nil
}

// publish updates the admin snapshot and hands the cycle to the
// history writer. Writer failures are logged and never abort the run.
func (b *Bridge) publish(ctx context.Context, cf telemetry.ControlFrame, tf telemetry.TelemetryFrame, elapsed time.Duration) {
	log := logging.FromContext(ctx)
	simS := b.plant.SimTime().Seconds()
	cycleMS := float64(elapsed.Microseconds()) / 1000.0

	b.mu.Lock()
	b.cycles++
	cycle := b.cycles
	b.lastControl = cf
	b.lastTelemetry = tf
	b.lastSimS = simS
	b.lastCycleMS = cycleMS
	b.mu.Unlock()

	if b.writer == nil {
		return
	}

	now := time.Now().UTC()
	rows := b.cycleRows(cf, tf, cycle, simS, now)

	// Batch support if writer implements WriteBatch
	if bw, ok := b.writer.(batchCycleWriter); ok {
		if err := bw.WriteBatch(rows); err != nil {
			log.Error("history batch write failed", "err", err)
		}
	} else {
		for _, row := range rows {
			if err := b.writer.Write(row); err != nil {
				log.Error("history write failed", "quantity", row.Quantity, "asset", row.AssetIndex, "err", err)
			}
		}
	}

	if sw, ok := b.writer.(StateWriter); ok {
		row := telemetry.RunStateRow{
			PlantID:   b.plantID,
			RunID:     b.runID,
			State:     b.State().String(),
			LinkUp:    b.link.Connected(),
			Cycle:     cycle,
			SimTimeS:  simS,
			CycleMS:   cycleMS,
			Timestamp: now,
		}
		if err := sw.WriteState(row); err != nil {
			log.Error("state write failed", "err", err)
		}
	}
}

// cycleRows flattens the cycle into one row per quantity and asset,
// telemetry first, then the applied controls.
func (b *Bridge) cycleRows(cf telemetry.ControlFrame, tf telemetry.TelemetryFrame, cycle uint64, simS float64, now time.Time) []telemetry.CycleRow {
	rows := make([]telemetry.CycleRow, 0,
		len(tf.JunctionPressures)+len(tf.TankHeads)+len(tf.PumpFlows)+len(cf.PipeOpen)+len(cf.PumpSettings))

	add := func(quantity string, idx hydraulic.AssetIndex, value float64) {
		rows = append(rows, telemetry.CycleRow{
			PlantID:    b.plantID,
			RunID:      b.runID,
			Quantity:   quantity,
			AssetIndex: int(idx),
			Cycle:      cycle,
			Value:      value,
			SimTimeS:   simS,
			Timestamp:  now,
		})
	}

	for i, v := range tf.JunctionPressures {
		add(telemetry.QuantityJunctionPressure, b.junctions[i], v)
	}
	for i, v := range tf.TankHeads {
		add(telemetry.QuantityTankHead, b.tanks[i], v)
	}
	for i, v := range tf.PumpFlows {
		add(telemetry.QuantityPumpFlow, b.pumps[i], v)
	}
	for i, open := range cf.PipeOpen {
		v := 0.0
		if open {
			v = 1.0
		}
		add(telemetry.QuantityPipeStatus, b.pipes[i], v)
	}
	for i, s := range cf.PumpSettings {
		add(telemetry.QuantityPumpSetting, b.pumps[i], s)
	}
	return rows
}

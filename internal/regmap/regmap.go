// Package regmap defines the fixed register layout shared with the
// field controller. Addresses and encodings are a compatibility
// contract; both ends hard-code this table, so any change here is a
// breaking change on the wire.
package regmap

import (
	"fmt"
	"math"

	"waterops-bridge/internal/telemetry"
)

// Wire layout. Control blocks are fixed-size slots sized to a maximum
// asset count regardless of actual network size, so both ends can
// address them without a handshake. Telemetry values are float32
// register pairs, high word first.
const (
	PipeStatusBase  = 0 // coils, one per pipe, wire-true means closed
	PipeStatusSlots = 100

	PumpSettingBase  = 0 // holding registers, one per pump, raw/100.0
	PumpSettingSlots = 100

	PressureBase = 100 // one pair per junction
	HeadBase     = 200 // one pair per tank
	FlowBase     = 300 // one pair per pump

	// A pair occupies two consecutive registers, so the pressure and
	// head blocks hold 50 assets each before running into the next
	// base. The flow block has nothing above it.
	PressureSlots = (HeadBase - PressureBase) / 2
	HeadSlots     = (FlowBase - HeadBase) / 2
	FlowSlots     = 100

	settingScale = 100.0
)

// DecodePipeStatuses converts a raw coil block into per-pipe open
// flags. The wire convention is inverted: a set coil means the pipe
// is closed, so an all-zero block decodes to all pipes open. Slots
// beyond pipeCount are ignored.
func DecodePipeStatuses(coils []bool, pipeCount int) ([]bool, error) {
	if len(coils) < pipeCount {
		return nil, fmt.Errorf("coil block holds %d of %d pipes", len(coils), pipeCount)
	}
	open := make([]bool, pipeCount)
	for i := range open {
		open[i] = !coils[i]
	}
	return open, nil
}

// DecodePumpSettings converts a raw holding-register block into
// relative pump speeds, 100 raw units per 1.0. Slots beyond pumpCount
// are ignored.
func DecodePumpSettings(regs []uint16, pumpCount int) ([]float64, error) {
	if len(regs) < pumpCount {
		return nil, fmt.Errorf("register block holds %d of %d pumps", len(regs), pumpCount)
	}
	settings := make([]float64, pumpCount)
	for i := range settings {
		settings[i] = float64(regs[i]) / settingScale
	}
	return settings, nil
}

// DecodeControlFrame decodes raw coil and holding-register blocks into
// a control frame for the given asset counts.
func DecodeControlFrame(coils []bool, regs []uint16, pipeCount, pumpCount int) (telemetry.ControlFrame, error) {
	open, err := DecodePipeStatuses(coils, pipeCount)
	if err != nil {
		return telemetry.ControlFrame{}, err
	}
	settings, err := DecodePumpSettings(regs, pumpCount)
	if err != nil {
		return telemetry.ControlFrame{}, err
	}
	return telemetry.ControlFrame{PipeOpen: open, PumpSettings: settings}, nil
}

// EncodeFloat32 packs v into a register pair, high word first.
func EncodeFloat32(v float64) [2]uint16 {
	bits := math.Float32bits(float32(v))
	return [2]uint16{uint16(bits >> 16), uint16(bits)}
}

// DecodeFloat32 unpacks a high-word-first register pair.
func DecodeFloat32(pair [2]uint16) float64 {
	bits := uint32(pair[0])<<16 | uint32(pair[1])
	return float64(math.Float32frombits(bits))
}

// RegisterWrite is one contiguous write to the output register space.
type RegisterWrite struct {
	Addr   uint16
	Values []uint16
}

// EncodeTelemetry lays a telemetry frame out as register writes, one
// pair per value: pressures from PressureBase, heads from HeadBase,
// flows from FlowBase, each at base+2*index.
func EncodeTelemetry(f telemetry.TelemetryFrame) ([]RegisterWrite, error) {
	blocks := []struct {
		name   string
		base   uint16
		slots  int
		values []float64
	}{
		{"junction pressure", PressureBase, PressureSlots, f.JunctionPressures},
		{"tank head", HeadBase, HeadSlots, f.TankHeads},
		{"pump flow", FlowBase, FlowSlots, f.PumpFlows},
	}

	writes := make([]RegisterWrite, 0, len(f.JunctionPressures)+len(f.TankHeads)+len(f.PumpFlows))
	for _, b := range blocks {
		if len(b.values) > b.slots {
			return nil, fmt.Errorf("%d %s values exceed %d pair slots", len(b.values), b.name, b.slots)
		}
		for i, v := range b.values {
			pair := EncodeFloat32(v)
			writes = append(writes, RegisterWrite{Addr: b.base + uint16(2*i), Values: pair[:]})
		}
	}
	return writes, nil
}

// CheckCapacity rejects networks whose asset counts do not fit the
// fixed slot layout.
func CheckCapacity(pipes, pumps, junctions, tanks int) error {
	switch {
	case pipes > PipeStatusSlots:
		return fmt.Errorf("%d pipes exceed %d coil slots", pipes, PipeStatusSlots)
	case pumps > PumpSettingSlots:
		return fmt.Errorf("%d pumps exceed %d register slots", pumps, PumpSettingSlots)
	case junctions > PressureSlots:
		return fmt.Errorf("%d junctions exceed %d pressure pair slots", junctions, PressureSlots)
	case tanks > HeadSlots:
		return fmt.Errorf("%d tanks exceed %d head pair slots", tanks, HeadSlots)
	}
	return nil
}

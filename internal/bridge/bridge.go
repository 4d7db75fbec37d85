// Bridge orchestrating the PLC link and the hydraulic model
package bridge

import (
	"context"
	"sync"
	"time"

	"waterops-bridge/internal/hydraulic"
	"waterops-bridge/internal/logging"
	"waterops-bridge/internal/regmap"
	"waterops-bridge/internal/telemetry"

	"github.com/google/uuid"
)

// Link is the field-controller connection the bridge drives.
// fieldlink.Link satisfies it; tests substitute fakes.
type Link interface {
	Connect(ctx context.Context) error
	ReadCoils(addr, quantity uint16) ([]bool, error)
	ReadHoldingRegisters(addr, quantity uint16) ([]uint16, error)
	WriteRegisters(addr uint16, values []uint16) error
	Connected() bool
	Close() error
}

// Plant is the hydraulic model surface the bridge drives.
// hydraulic.Adapter satisfies it.
type Plant interface {
	Load(path string) error
	Overview() telemetry.NetworkOverview
	Indices(class hydraulic.Class) []hydraulic.AssetIndex
	SetPipeStatus(idx hydraulic.AssetIndex, open bool) error
	SetPumpSetting(idx hydraulic.AssetIndex, setting float64) error
	Begin() error
	Step() error
	SimTime() time.Duration
	Pressure(idx hydraulic.AssetIndex) (float64, error)
	Head(idx hydraulic.AssetIndex) (float64, error)
	Flow(idx hydraulic.AssetIndex) (float64, error)
	End() error
}

// CycleWriter is an interface to support different history writers.
type CycleWriter interface {
	Write(telemetry.CycleRow) error
}

// Optional: writers can also support batch mode.
type batchCycleWriter interface {
	WriteBatch([]telemetry.CycleRow) error
}

// StateWriter handles run state rows.
type StateWriter interface {
	WriteState(telemetry.RunStateRow) error
}

// AdminStatusWriter allows writers to receive admin API status updates.
type AdminStatusWriter interface {
	SetAdminStatus(listening bool)
}

// OverviewWriter allows writers to receive the network overview once
// the model is loaded.
type OverviewWriter interface {
	SetOverview(telemetry.NetworkOverview)
}

// Bridge couples one field controller to one hydraulic model and runs
// the control cycle between them. All engine and link I/O happens on
// the goroutine that called Run; the mutex only guards the snapshot
// read by the admin server.
type Bridge struct {
	plantID  string
	runID    string
	netPath  string
	link     Link
	plant    Plant
	writer   CycleWriter
	interval time.Duration

	pipes     []hydraulic.AssetIndex
	pumps     []hydraulic.AssetIndex
	junctions []hydraulic.AssetIndex
	tanks     []hydraulic.AssetIndex

	mu            sync.Mutex
	state         State
	linkUp        bool
	cycles        uint64
	lastSimS      float64
	lastCycleMS   float64
	lastControl   telemetry.ControlFrame
	lastTelemetry telemetry.TelemetryFrame
	overview      telemetry.NetworkOverview
	events        []Event
}

// New wires a bridge from its parts. The link and the plant stay
// untouched until Run.
func New(plantID, netPath string, link Link, plant Plant, writer CycleWriter, interval time.Duration) *Bridge {
	if interval <= 0 {
		interval = time.Second
	}
	return &Bridge{
		plantID:  plantID,
		runID:    uuid.New().String(),
		netPath:  netPath,
		link:     link,
		plant:    plant,
		writer:   writer,
		interval: interval,
		state:    StateStarting,
	}
}

// start connects the link, loads the network and brings the solver up.
// Any failure is fatal for the run.
func (b *Bridge) start(ctx context.Context) error {
	log := logging.FromContext(ctx)

	if err := b.link.Connect(ctx); err != nil {
		return err
	}
	b.setLinkUp(true)
	b.logEvent("connected", "")

	if err := b.plant.Load(b.netPath); err != nil {
		return err
	}
	ov := b.plant.Overview()
	if err := regmap.CheckCapacity(ov.Pipes, ov.Pumps, ov.Junctions, ov.Tanks); err != nil {
		return err
	}

	b.pipes = b.plant.Indices(hydraulic.ClassPipe)
	b.pumps = b.plant.Indices(hydraulic.ClassPump)
	b.junctions = b.plant.Indices(hydraulic.ClassJunction)
	b.tanks = b.plant.Indices(hydraulic.ClassTank)

	if err := b.plant.Begin(); err != nil {
		return err
	}

	b.mu.Lock()
	b.overview = ov
	b.mu.Unlock()
	if ow, ok := b.writer.(OverviewWriter); ok {
		ow.SetOverview(ov)
	}

	log.Info("network loaded",
		"model", ov.Model,
		"junctions", ov.Junctions,
		"reservoirs", ov.Reservoirs,
		"tanks", ov.Tanks,
		"pipes", ov.Pipes,
		"pumps", ov.Pumps,
		"valves", ov.Valves,
		"hyd_step", ov.HydStep,
	)
	b.logEvent("loaded", ov.Model)
	return nil
}

// drain releases the link and the engine. It always runs to
// completion; failures are logged, never escalated.
func (b *Bridge) drain(ctx context.Context) {
	log := logging.FromContext(ctx)

	if b.link != nil && b.link.Connected() {
		if err := b.link.Close(); err != nil {
			log.Error("field link close failed", "err", err)
		}
	}
	b.setLinkUp(false)

	if b.plant != nil {
		if err := b.plant.End(); err != nil {
			log.Error("engine shutdown failed", "err", err)
		}
	}
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
	b.logEvent(s.String(), "")
}

func (b *Bridge) setLinkUp(up bool) {
	b.mu.Lock()
	b.linkUp = up
	b.mu.Unlock()
}

// State returns the current lifecycle phase.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// LinkUp reports whether the field link is connected.
func (b *Bridge) LinkUp() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.linkUp
}

// Cycles returns the number of completed cycles.
func (b *Bridge) Cycles() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cycles
}

// SimTimeS returns the model clock of the last completed cycle, in
// seconds.
func (b *Bridge) SimTimeS() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSimS
}

// LastCycleMS returns the wall-clock cost of the last cycle.
func (b *Bridge) LastCycleMS() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastCycleMS
}

// Snapshot returns the control and telemetry frames of the last
// completed cycle.
func (b *Bridge) Snapshot() (telemetry.ControlFrame, telemetry.TelemetryFrame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastControl, b.lastTelemetry
}

// Overview describes the loaded network; zero until loading finished.
func (b *Bridge) Overview() telemetry.NetworkOverview {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overview
}

// PlantID returns the configured plant identifier.
func (b *Bridge) PlantID() string { return b.plantID }

// RunID returns the unique identifier of this run.
func (b *Bridge) RunID() string { return b.runID }

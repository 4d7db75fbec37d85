package hydraulic

import (
	"path/filepath"
	"time"

	"waterops-bridge/internal/telemetry"
)

// The solver is configured for one-second hydraulic intervals and a
// short initial horizon; every Step pushes the horizon out by one
// interval, so the run is effectively unbounded.
const (
	initialDuration = 10 * time.Second
	stepSize        = time.Second
)

// Adapter owns one engine instance and its lifecycle. It is not safe
// for concurrent use; all calls must come from a single goroutine.
type Adapter struct {
	eng      Engine
	indices  map[Class][]AssetIndex
	overview telemetry.NetworkOverview
	hydStep  time.Duration
	simTime  time.Duration

	loaded  bool
	began   bool
	stepped bool
}

// NewAdapter wraps eng. The engine is untouched until Load.
func NewAdapter(eng Engine) *Adapter {
	return &Adapter{eng: eng}
}

// Load parses the network model at path and prepares the solver time
// settings. Any failure is reported as a ConfigError.
func (a *Adapter) Load(path string) error {
	if err := a.eng.Open(path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	a.loaded = true
	if err := a.configure(path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}

func (a *Adapter) configure(path string) error {
	if err := a.eng.SetDuration(initialDuration); err != nil {
		return err
	}
	if err := a.eng.SetHydraulicStep(stepSize); err != nil {
		return err
	}
	// The engine may clamp the step, so read back what it accepted.
	step, err := a.eng.HydraulicStep()
	if err != nil {
		return err
	}
	if step <= 0 {
		step = stepSize
	}
	a.hydStep = step

	nodes, err := a.eng.NodeCount()
	if err != nil {
		return err
	}
	links, err := a.eng.LinkCount()
	if err != nil {
		return err
	}

	a.indices = make(map[Class][]AssetIndex)
	for i := 1; i <= nodes; i++ {
		c, err := a.eng.NodeClass(AssetIndex(i))
		if err != nil {
			return err
		}
		a.indices[c] = append(a.indices[c], AssetIndex(i))
	}
	for i := 1; i <= links; i++ {
		c, err := a.eng.LinkClass(AssetIndex(i))
		if err != nil {
			return err
		}
		a.indices[c] = append(a.indices[c], AssetIndex(i))
	}

	a.overview = telemetry.NetworkOverview{
		Model:      filepath.Base(path),
		Junctions:  len(a.indices[ClassJunction]),
		Reservoirs: len(a.indices[ClassReservoir]),
		Tanks:      len(a.indices[ClassTank]),
		Pipes:      len(a.indices[ClassPipe]),
		Pumps:      len(a.indices[ClassPump]),
		Valves:     len(a.indices[ClassValve]),
		HydStep:    a.hydStep,
	}
	return nil
}

// Indices returns the engine indices of the given class in ascending
// order. This order is the canonical frame ordering for controls and
// telemetry.
func (a *Adapter) Indices(class Class) []AssetIndex {
	src := a.indices[class]
	out := make([]AssetIndex, len(src))
	copy(out, src)
	return out
}

// Overview describes the loaded network.
func (a *Adapter) Overview() telemetry.NetworkOverview {
	return a.overview
}

// SetPipeStatus opens or closes the pipe at idx for the next step.
func (a *Adapter) SetPipeStatus(idx AssetIndex, open bool) error {
	if !a.loaded {
		return &SimulationError{Op: "set pipe status", Err: ErrNotLoaded}
	}
	if err := a.eng.SetLinkStatus(idx, open); err != nil {
		return &SimulationError{Op: "set pipe status", Err: err}
	}
	return nil
}

// SetPumpSetting applies a relative pump speed (1.0 = nominal) for the
// next step.
func (a *Adapter) SetPumpSetting(idx AssetIndex, setting float64) error {
	if !a.loaded {
		return &SimulationError{Op: "set pump setting", Err: ErrNotLoaded}
	}
	if err := a.eng.SetLinkSetting(idx, setting); err != nil {
		return &SimulationError{Op: "set pump setting", Err: err}
	}
	return nil
}

// Begin initializes the solver for an open-ended sequence of steps.
// Must be paired with End on shutdown.
func (a *Adapter) Begin() error {
	if !a.loaded {
		return &SimulationError{Op: "begin analysis", Err: ErrNotLoaded}
	}
	if err := a.eng.OpenHydraulics(); err != nil {
		return &SimulationError{Op: "begin analysis", Err: err}
	}
	a.began = true
	if err := a.eng.InitHydraulics(); err != nil {
		return &SimulationError{Op: "begin analysis", Err: err}
	}
	return nil
}

// Step advances the model exactly one hydraulic interval. The run
// horizon is extended by one interval first, so the solver never
// reaches the end of its nominal duration.
func (a *Adapter) Step() error {
	if !a.began {
		return &SimulationError{Op: "step", Err: ErrNotBegun}
	}
	dur, err := a.eng.Duration()
	if err != nil {
		return &SimulationError{Op: "step", Err: err}
	}
	if err := a.eng.SetDuration(dur + a.hydStep); err != nil {
		return &SimulationError{Op: "step", Err: err}
	}
	t, err := a.eng.RunHydraulics()
	if err != nil {
		return &SimulationError{Op: "step", Err: err}
	}
	a.simTime = t
	if _, err := a.eng.NextHydraulics(); err != nil {
		return &SimulationError{Op: "step", Err: err}
	}
	a.stepped = true
	return nil
}

// Pressure returns the just-computed pressure at a junction.
func (a *Adapter) Pressure(idx AssetIndex) (float64, error) {
	if !a.stepped {
		return 0, &SimulationError{Op: "read pressure", Err: ErrNotStepped}
	}
	v, err := a.eng.Pressure(idx)
	if err != nil {
		return 0, &SimulationError{Op: "read pressure", Err: err}
	}
	return v, nil
}

// Head returns the just-computed hydraulic head at a node.
func (a *Adapter) Head(idx AssetIndex) (float64, error) {
	if !a.stepped {
		return 0, &SimulationError{Op: "read head", Err: ErrNotStepped}
	}
	v, err := a.eng.Head(idx)
	if err != nil {
		return 0, &SimulationError{Op: "read head", Err: err}
	}
	return v, nil
}

// Flow returns the just-computed flow through a link.
func (a *Adapter) Flow(idx AssetIndex) (float64, error) {
	if !a.stepped {
		return 0, &SimulationError{Op: "read flow", Err: ErrNotStepped}
	}
	v, err := a.eng.Flow(idx)
	if err != nil {
		return 0, &SimulationError{Op: "read flow", Err: err}
	}
	return v, nil
}

// SimTime returns the model clock of the last completed step.
func (a *Adapter) SimTime() time.Duration {
	return a.simTime
}

// End releases the solver and the loaded project. Calling End more
// than once, or before Begin, is a no-op.
func (a *Adapter) End() error {
	var firstErr error
	if a.began {
		a.began = false
		if err := a.eng.CloseHydraulics(); err != nil {
			firstErr = &SimulationError{Op: "end analysis", Err: err}
		}
	}
	if a.loaded {
		a.loaded = false
		if err := a.eng.Close(); err != nil && firstErr == nil {
			firstErr = &SimulationError{Op: "end analysis", Err: err}
		}
	}
	return firstErr
}

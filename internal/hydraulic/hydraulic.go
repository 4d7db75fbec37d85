// Package hydraulic exposes the hydraulic engine as an index-addressed
// state container: load a network once, then apply controls and step
// the solver one hydraulic interval at a time.
package hydraulic

import "time"

// AssetIndex is a 1-based engine index for a node or link.
type AssetIndex int

// Class partitions network assets the way the engine reports them.
type Class int

const (
	ClassJunction Class = iota
	ClassReservoir
	ClassTank
	ClassPipe
	ClassPump
	ClassValve
)

func (c Class) String() string {
	switch c {
	case ClassJunction:
		return "junction"
	case ClassReservoir:
		return "reservoir"
	case ClassTank:
		return "tank"
	case ClassPipe:
		return "pipe"
	case ClassPump:
		return "pump"
	case ClassValve:
		return "valve"
	default:
		return "unknown"
	}
}

// Engine is the solver surface the adapter drives. The epanet package
// provides the real implementation; tests substitute fakes.
type Engine interface {
	Open(inpPath string) error
	Close() error

	NodeCount() (int, error)
	LinkCount() (int, error)
	NodeClass(idx AssetIndex) (Class, error)
	LinkClass(idx AssetIndex) (Class, error)

	Duration() (time.Duration, error)
	SetDuration(d time.Duration) error
	HydraulicStep() (time.Duration, error)
	SetHydraulicStep(d time.Duration) error

	SetLinkStatus(idx AssetIndex, open bool) error
	SetLinkSetting(idx AssetIndex, setting float64) error

	Pressure(idx AssetIndex) (float64, error)
	Head(idx AssetIndex) (float64, error)
	Flow(idx AssetIndex) (float64, error)

	OpenHydraulics() error
	InitHydraulics() error
	RunHydraulics() (time.Duration, error)
	NextHydraulics() (time.Duration, error)
	CloseHydraulics() error
}

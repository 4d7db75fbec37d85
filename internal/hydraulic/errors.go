package hydraulic

import (
	"errors"
	"fmt"
)

// Lifecycle guard sentinels, wrapped in a SimulationError when a call
// arrives before the adapter reached the needed phase.
var (
	ErrNotLoaded  = errors.New("no network loaded")
	ErrNotBegun   = errors.New("analysis not begun")
	ErrNotStepped = errors.New("no step computed yet")
)

// ConfigError reports a network model that could not be loaded.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("load network %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// SimulationError reports a failed engine operation.
type SimulationError struct {
	Op  string
	Err error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation: %s: %v", e.Op, e.Err)
}

func (e *SimulationError) Unwrap() error { return e.Err }

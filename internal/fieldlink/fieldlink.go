// Package fieldlink owns the Modbus TCP connection to the field
// controller: blocking connect with retry, single-shot coil and
// register I/O, and explicit close. Failed I/O is never retried here;
// the caller decides disposition.
package fieldlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simonvetter/modbus"

	"waterops-bridge/internal/logging"
)

// ErrNotConnected is returned by I/O calls on a link that has never
// connected or has been closed.
var ErrNotConnected = errors.New("not connected")

// LinkError wraps a failed link operation with the underlying
// transport error.
type LinkError struct {
	Op  string
	Err error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("field link: %s: %v", e.Op, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// transport is the subset of the Modbus client the link drives.
// *modbus.ModbusClient satisfies it; tests substitute a fake.
type transport interface {
	Open() error
	Close() error
	ReadCoils(addr uint16, quantity uint16) ([]bool, error)
	ReadRegisters(addr uint16, quantity uint16, regType modbus.RegType) ([]uint16, error)
	WriteRegisters(addr uint16, values []uint16) error
}

// Config holds the field endpoint parameters.
type Config struct {
	Host          string
	Port          int
	UnitID        uint8
	RetryInterval time.Duration
}

// Link is a Modbus TCP connection to the field controller. Connection
// state only changes through Connect and Close; a failed read or write
// leaves the state as is.
type Link struct {
	mb        transport
	retry     time.Duration
	connected bool
}

// New builds a link for the given endpoint. Nothing is dialed until
// Connect.
func New(cfg Config) (*Link, error) {
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL: fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port),
	})
	if err != nil {
		return nil, fmt.Errorf("modbus client: %w", err)
	}
	if err := client.SetUnitId(cfg.UnitID); err != nil {
		return nil, fmt.Errorf("unit id %d: %w", cfg.UnitID, err)
	}

	retry := cfg.RetryInterval
	if retry <= 0 {
		retry = time.Second
	}
	return &Link{mb: client, retry: retry}, nil
}

// Connect dials the endpoint, retrying at the configured interval
// until it succeeds or ctx is cancelled.
func (l *Link) Connect(ctx context.Context) error {
	log := logging.FromContext(ctx)
	for attempt := 1; ; attempt++ {
		err := l.mb.Open()
		if err == nil {
			l.connected = true
			log.Info("field link connected", "attempt", attempt)
			return nil
		}
		log.Warn("field link connect failed, retrying", "attempt", attempt, "error", err)

		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReadCoils reads quantity coils starting at addr.
func (l *Link) ReadCoils(addr, quantity uint16) ([]bool, error) {
	if !l.connected {
		return nil, &LinkError{Op: "read coils", Err: ErrNotConnected}
	}
	bits, err := l.mb.ReadCoils(addr, quantity)
	if err != nil {
		return nil, &LinkError{Op: "read coils", Err: err}
	}
	return bits, nil
}

// ReadHoldingRegisters reads quantity 16-bit holding registers
// starting at addr.
func (l *Link) ReadHoldingRegisters(addr, quantity uint16) ([]uint16, error) {
	if !l.connected {
		return nil, &LinkError{Op: "read holding registers", Err: ErrNotConnected}
	}
	regs, err := l.mb.ReadRegisters(addr, quantity, modbus.HOLDING_REGISTER)
	if err != nil {
		return nil, &LinkError{Op: "read holding registers", Err: err}
	}
	return regs, nil
}

// WriteRegisters writes values to consecutive registers starting at
// addr.
func (l *Link) WriteRegisters(addr uint16, values []uint16) error {
	if !l.connected {
		return &LinkError{Op: "write registers", Err: ErrNotConnected}
	}
	if err := l.mb.WriteRegisters(addr, values); err != nil {
		return &LinkError{Op: "write registers", Err: err}
	}
	return nil
}

// Close shuts the connection down. Closing a link that never connected
// or is already closed is a no-op.
func (l *Link) Close() error {
	if !l.connected {
		return nil
	}
	l.connected = false
	if err := l.mb.Close(); err != nil {
		return &LinkError{Op: "close", Err: err}
	}
	return nil
}

// Connected reports whether the link is currently connected.
func (l *Link) Connected() bool { return l.connected }

// Package epanet binds the EPANET 2.2 hydraulic toolkit (libepanet2)
// and satisfies hydraulic.Engine. Toolkit time values are seconds;
// node and link indices are 1-based.
package epanet

/*
#cgo LDFLAGS: -lepanet2
#include <stdlib.h>
#include <epanet2_2.h>
*/
import "C"

import (
	"fmt"
	"time"
	"unsafe"

	"waterops-bridge/internal/hydraulic"
)

// Error is a toolkit error code with its message text.
type Error struct {
	Op   string
	Code int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("epanet: %s: %s (code %d)", e.Op, e.Msg, e.Code)
}

// Toolkit convention: zero is success, codes below 100 are warnings
// (the solver still produced a result), 100 and above are errors.
func check(op string, code C.int) error {
	if code < 100 {
		return nil
	}
	var buf [C.EN_MAXMSG + 1]C.char
	C.EN_geterror(code, &buf[0], C.EN_MAXMSG)
	return &Error{Op: op, Code: int(code), Msg: C.GoString(&buf[0])}
}

// Engine wraps one toolkit project handle.
type Engine struct {
	ph C.EN_Project
}

var _ hydraulic.Engine = (*Engine)(nil)

// New allocates a toolkit project.
func New() (*Engine, error) {
	e := &Engine{}
	if err := check("create project", C.EN_createproject(&e.ph)); err != nil {
		return nil, err
	}
	return e, nil
}

// Open loads the network model at path. Report and binary output files
// stay disabled.
func (e *Engine) Open(path string) error {
	inp := C.CString(path)
	rpt := C.CString("")
	out := C.CString("")
	defer C.free(unsafe.Pointer(inp))
	defer C.free(unsafe.Pointer(rpt))
	defer C.free(unsafe.Pointer(out))
	return check("open "+path, C.EN_open(e.ph, inp, rpt, out))
}

// Close unloads the model and frees the project handle.
func (e *Engine) Close() error {
	if e.ph == nil {
		return nil
	}
	err := check("close project", C.EN_close(e.ph))
	C.EN_deleteproject(e.ph)
	e.ph = nil
	return err
}

func (e *Engine) NodeCount() (int, error) {
	var n C.int
	if err := check("node count", C.EN_getcount(e.ph, C.EN_NODECOUNT, &n)); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (e *Engine) LinkCount() (int, error) {
	var n C.int
	if err := check("link count", C.EN_getcount(e.ph, C.EN_LINKCOUNT, &n)); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (e *Engine) NodeClass(idx hydraulic.AssetIndex) (hydraulic.Class, error) {
	var t C.int
	if err := check("node type", C.EN_getnodetype(e.ph, C.int(idx), &t)); err != nil {
		return 0, err
	}
	switch t {
	case C.EN_JUNCTION:
		return hydraulic.ClassJunction, nil
	case C.EN_RESERVOIR:
		return hydraulic.ClassReservoir, nil
	case C.EN_TANK:
		return hydraulic.ClassTank, nil
	}
	return 0, fmt.Errorf("epanet: node %d: unknown type %d", idx, int(t))
}

func (e *Engine) LinkClass(idx hydraulic.AssetIndex) (hydraulic.Class, error) {
	var t C.int
	if err := check("link type", C.EN_getlinktype(e.ph, C.int(idx), &t)); err != nil {
		return 0, err
	}
	switch t {
	case C.EN_CVPIPE, C.EN_PIPE:
		return hydraulic.ClassPipe, nil
	case C.EN_PUMP:
		return hydraulic.ClassPump, nil
	case C.EN_PRV, C.EN_PSV, C.EN_PBV, C.EN_FCV, C.EN_TCV, C.EN_GPV:
		return hydraulic.ClassValve, nil
	}
	return 0, fmt.Errorf("epanet: link %d: unknown type %d", idx, int(t))
}

func (e *Engine) Duration() (time.Duration, error) {
	var v C.long
	if err := check("get duration", C.EN_gettimeparam(e.ph, C.EN_DURATION, &v)); err != nil {
		return 0, err
	}
	return time.Duration(v) * time.Second, nil
}

func (e *Engine) SetDuration(d time.Duration) error {
	return check("set duration", C.EN_settimeparam(e.ph, C.EN_DURATION, C.long(d/time.Second)))
}

func (e *Engine) HydraulicStep() (time.Duration, error) {
	var v C.long
	if err := check("get hydraulic step", C.EN_gettimeparam(e.ph, C.EN_HYDSTEP, &v)); err != nil {
		return 0, err
	}
	return time.Duration(v) * time.Second, nil
}

func (e *Engine) SetHydraulicStep(d time.Duration) error {
	return check("set hydraulic step", C.EN_settimeparam(e.ph, C.EN_HYDSTEP, C.long(d/time.Second)))
}

func (e *Engine) SetLinkStatus(idx hydraulic.AssetIndex, open bool) error {
	status := 0.0
	if open {
		status = 1.0
	}
	return check("set link status", C.EN_setlinkvalue(e.ph, C.int(idx), C.EN_STATUS, C.double(status)))
}

func (e *Engine) SetLinkSetting(idx hydraulic.AssetIndex, setting float64) error {
	return check("set link setting", C.EN_setlinkvalue(e.ph, C.int(idx), C.EN_SETTING, C.double(setting)))
}

func (e *Engine) Pressure(idx hydraulic.AssetIndex) (float64, error) {
	return e.nodeValue("get pressure", idx, C.EN_PRESSURE)
}

func (e *Engine) Head(idx hydraulic.AssetIndex) (float64, error) {
	return e.nodeValue("get head", idx, C.EN_HEAD)
}

func (e *Engine) nodeValue(op string, idx hydraulic.AssetIndex, prop C.int) (float64, error) {
	var v C.double
	if err := check(op, C.EN_getnodevalue(e.ph, C.int(idx), prop, &v)); err != nil {
		return 0, err
	}
	return float64(v), nil
}

func (e *Engine) Flow(idx hydraulic.AssetIndex) (float64, error) {
	var v C.double
	if err := check("get flow", C.EN_getlinkvalue(e.ph, C.int(idx), C.EN_FLOW, &v)); err != nil {
		return 0, err
	}
	return float64(v), nil
}

func (e *Engine) OpenHydraulics() error {
	return check("open hydraulics", C.EN_openH(e.ph))
}

// InitHydraulics starts the solver without a hydraulics output file;
// results stay in memory.
func (e *Engine) InitHydraulics() error {
	return check("init hydraulics", C.EN_initH(e.ph, C.EN_NOSAVE))
}

func (e *Engine) RunHydraulics() (time.Duration, error) {
	var t C.long
	if err := check("run hydraulics", C.EN_runH(e.ph, &t)); err != nil {
		return 0, err
	}
	return time.Duration(t) * time.Second, nil
}

func (e *Engine) NextHydraulics() (time.Duration, error) {
	var step C.long
	if err := check("next hydraulic step", C.EN_nextH(e.ph, &step)); err != nil {
		return 0, err
	}
	return time.Duration(step) * time.Second, nil
}

func (e *Engine) CloseHydraulics() error {
	return check("close hydraulics", C.EN_closeH(e.ph))
}

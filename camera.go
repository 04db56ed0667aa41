package scicam

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/visiona/scicam/driver"
)

// Camera is the configurable session over an opened device. While a Camera
// is usable the device is not streaming and every writable parameter
// accepts writes. StartAcquisition hands the device to an Acquisition and
// locks this session's mutators until the acquisition stops.
//
// A Camera is safe for concurrent read-only queries. Mutations, including
// Close and StartAcquisition, must be serialized by the caller.
type Camera struct {
	drv    driver.Driver
	handle driver.Handle
	index  int
	id     string

	owned  atomic.Bool // an Acquisition currently holds the device
	closed atomic.Bool
}

// Open claims the device at index and returns its configurable session.
func Open(drv driver.Driver, index int) (*Camera, error) {
	if drv == nil {
		return nil, driver.NewError(driver.CodeInvalidArg, "open")
	}
	h, err := drv.Open(index)
	if err != nil {
		return nil, err
	}
	c := &Camera{
		drv:    drv,
		handle: h,
		index:  index,
		id:     uuid.New().String(),
	}
	slog.Info("scicam: device opened", "device", index, "session_id", c.id)
	return c, nil
}

// DeviceCount reports how many devices the backend can currently open.
func DeviceCount(drv driver.Driver) (int, error) {
	if drv == nil {
		return 0, driver.NewError(driver.CodeInvalidArg, "device_count")
	}
	return drv.DeviceCount()
}

// SetDebugLevel sets the backend's own log verbosity. The setting is
// driver-global and takes effect before any device is open.
func SetDebugLevel(drv driver.Driver, level DebugLevel) error {
	if drv == nil {
		return driver.NewError(driver.CodeInvalidArg, "set_debug_level")
	}
	return drv.SetParamInt(driver.Global, keyDebugLevel, int32(level))
}

// SessionID returns the id correlating this session's log lines.
func (c *Camera) SessionID() string { return c.id }

// Close releases the device handle. Closing twice is a no-op; closing
// while an Acquisition owns the device fails with AcquisitionActive, the
// Acquisition's own Close tears both down.
func (c *Camera) Close() error {
	if c.owned.Load() {
		return driver.NewError(driver.CodeAcquisitionActive, "close")
	}
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.drv.Close(c.handle); err != nil {
		return err
	}
	slog.Info("scicam: device closed", "device", c.index, "session_id", c.id)
	return nil
}

func (c *Camera) guardRead(op string) error {
	if c.closed.Load() {
		return driver.NewError(driver.CodeInvalidHandle, op)
	}
	return nil
}

func (c *Camera) guardWrite(op string) error {
	if err := c.guardRead(op); err != nil {
		return err
	}
	if c.owned.Load() {
		return driver.NewError(driver.CodeAcquisitionActive, op)
	}
	return nil
}

// ParamInt reads an integer parameter or one of its limit records.
// Read-only queries stay legal while an acquisition is running.
func (c *Camera) ParamInt(p Param) (int32, error) {
	if err := c.guardRead("get_param"); err != nil {
		return 0, err
	}
	if err := checkParam(p, kindInt, "get_param", false); err != nil {
		return 0, err
	}
	return c.drv.GetParamInt(c.handle, string(p))
}

// SetParamInt writes an integer parameter. Backend failures (out of range,
// off the increment grid, unsupported on this model) propagate unchanged.
func (c *Camera) SetParamInt(p Param, value int32) error {
	if err := c.guardWrite("set_param"); err != nil {
		return err
	}
	if err := checkParam(p, kindInt, "set_param", true); err != nil {
		return err
	}
	if err := c.drv.SetParamInt(c.handle, string(p), value); err != nil {
		return err
	}
	slog.Debug("scicam: parameter set", "session_id", c.id, "param", string(p), "value", value)
	return nil
}

// ParamFloat reads a floating point parameter or one of its limit records.
func (c *Camera) ParamFloat(p Param) (float32, error) {
	if err := c.guardRead("get_param"); err != nil {
		return 0, err
	}
	if err := checkParam(p, kindFloat, "get_param", false); err != nil {
		return 0, err
	}
	return c.drv.GetParamFloat(c.handle, string(p))
}

// SetParamFloat writes a floating point parameter.
func (c *Camera) SetParamFloat(p Param, value float32) error {
	if err := c.guardWrite("set_param"); err != nil {
		return err
	}
	if err := checkParam(p, kindFloat, "set_param", true); err != nil {
		return err
	}
	if err := c.drv.SetParamFloat(c.handle, string(p), value); err != nil {
		return err
	}
	slog.Debug("scicam: parameter set", "session_id", c.id, "param", string(p), "value", value)
	return nil
}

// ParamString reads a string parameter (device name, serial number).
func (c *Camera) ParamString(p Param) (string, error) {
	if err := c.guardRead("get_param"); err != nil {
		return "", err
	}
	if err := checkParam(p, kindString, "get_param", false); err != nil {
		return "", err
	}
	return c.drv.GetParamString(c.handle, string(p))
}

// IntLimits reads the min/max/increment record of an integer parameter.
func (c *Camera) IntLimits(p Param) (Limits, error) {
	var l Limits
	var err error
	if l.Min, err = c.ParamInt(p.Min()); err != nil {
		return Limits{}, err
	}
	if l.Max, err = c.ParamInt(p.Max()); err != nil {
		return Limits{}, err
	}
	if l.Inc, err = c.ParamInt(p.Increment()); err != nil {
		return Limits{}, err
	}
	return l, nil
}

// FloatLimits reads the min/max/increment record of a float parameter.
func (c *Camera) FloatLimits(p Param) (FloatLimits, error) {
	var l FloatLimits
	var err error
	if l.Min, err = c.ParamFloat(p.Min()); err != nil {
		return FloatLimits{}, err
	}
	if l.Max, err = c.ParamFloat(p.Max()); err != nil {
		return FloatLimits{}, err
	}
	if l.Inc, err = c.ParamFloat(p.Increment()); err != nil {
		return FloatLimits{}, err
	}
	return l, nil
}

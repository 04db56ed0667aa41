// Package sim implements the driver contract against an in-process
// simulated device. It exists for development and tests on machines
// without a camera: registers carry real min/max/increment records, the
// region-of-interest registers constrain each other the way sensors do,
// software triggering and frame pacing behave like a live transport, and
// frames are synthesized with deterministic patterns.
//
// Faults can be injected per operation to exercise failure paths that a
// healthy device never takes.
package sim

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/visiona/scicam/driver"
)

// defaultMaxWait bounds a frame wait when the caller passes no timeout.
const defaultMaxWait = 24 * time.Hour

// Config shapes the simulated fleet. The zero value is usable: one
// 1280x1024 mono8 device, no row padding, frames delivered as fast as
// they are asked for.
type Config struct {
	Devices       int                // number of devices, default 1
	SensorWidth   int32              // default 1280
	SensorHeight  int32              // default 1024
	RowPadding    int32              // extra bytes per frame row, default 0
	DefaultFormat driver.PixelFormat // default FormatMono8
	FramePeriod   time.Duration      // free-run pacing, 0 = immediate
}

// Driver is a simulated device backend. Safe for concurrent use.
type Driver struct {
	cfg Config

	mu         sync.Mutex
	devices    []*device
	handles    map[driver.Handle]*device
	nextHandle uint64
	global     map[string]*register
	faults     map[string]*fault
}

type fault struct {
	skip int
	code driver.Code
}

// New builds a simulated backend. Zero config fields fall back to
// defaults; nonsensical ones fail fast.
func New(cfg Config) (*Driver, error) {
	if cfg.Devices < 0 {
		return nil, fmt.Errorf("sim: device count %d is negative", cfg.Devices)
	}
	if cfg.Devices == 0 {
		cfg.Devices = 1
	}
	if cfg.SensorWidth < 0 || cfg.SensorHeight < 0 {
		return nil, fmt.Errorf("sim: sensor %dx%d is negative", cfg.SensorWidth, cfg.SensorHeight)
	}
	if cfg.SensorWidth == 0 {
		cfg.SensorWidth = 1280
	}
	if cfg.SensorHeight == 0 {
		cfg.SensorHeight = 1024
	}
	if cfg.SensorWidth%widthInc != 0 {
		return nil, fmt.Errorf("sim: sensor width %d is not a multiple of %d", cfg.SensorWidth, widthInc)
	}
	if cfg.SensorHeight%heightInc != 0 {
		return nil, fmt.Errorf("sim: sensor height %d is not a multiple of %d", cfg.SensorHeight, heightInc)
	}
	if cfg.RowPadding < 0 {
		return nil, fmt.Errorf("sim: row padding %d is negative", cfg.RowPadding)
	}
	if cfg.DefaultFormat.BytesPerPixel() == 0 {
		return nil, fmt.Errorf("sim: default format %s has no fixed pixel size", cfg.DefaultFormat)
	}

	d := &Driver{
		cfg:        cfg,
		handles:    make(map[driver.Handle]*device),
		nextHandle: 1,
		global: map[string]*register{
			"auto_bandwidth_calculation": intReg(1, 0, 1, 1),
			"debug_level":                intReg(2, 0, 5, 1),
		},
		faults: make(map[string]*fault),
	}
	for i := 0; i < cfg.Devices; i++ {
		d.devices = append(d.devices, newDevice(i, cfg))
	}
	slog.Debug("sim: backend ready", "devices", cfg.Devices,
		"sensor_width", cfg.SensorWidth, "sensor_height", cfg.SensorHeight)
	return d, nil
}

// InjectFault makes the skip-th next call of op fail with code, once.
// Ops: "open", "close", "start_acquisition", "stop_acquisition",
// "get_param", "set_param", "get_image", "device_count".
func (d *Driver) InjectFault(op string, skip int, code driver.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[op] = &fault{skip: skip, code: code}
	slog.Debug("sim: fault injected", "op", op, "skip", skip, "code", code.String())
}

// Acquiring reports whether the device at index is currently streaming.
// Test introspection, not part of the driver contract.
func (d *Driver) Acquiring(index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.devices) {
		return false
	}
	dev := d.devices[index]
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.acquiring
}

// OpenHandles reports how many handles are currently open across all
// devices. Test introspection.
func (d *Driver) OpenHandles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handles)
}

func (d *Driver) takeFault(op, param string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.faults[op]
	if !ok {
		return nil
	}
	if f.skip > 0 {
		f.skip--
		return nil
	}
	delete(d.faults, op)
	if param != "" {
		return driver.NewParamError(f.code, op, param)
	}
	return driver.NewError(f.code, op)
}

func (d *Driver) device(h driver.Handle, op string) (*device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dev, ok := d.handles[h]
	if !ok {
		return nil, driver.NewError(driver.CodeInvalidHandle, op)
	}
	return dev, nil
}

// DeviceCount implements driver.Driver.
func (d *Driver) DeviceCount() (int, error) {
	if err := d.takeFault("device_count", ""); err != nil {
		return 0, err
	}
	return len(d.devices), nil
}

// Open implements driver.Driver.
func (d *Driver) Open(index int) (driver.Handle, error) {
	if err := d.takeFault("open", ""); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.devices) {
		return 0, driver.NewError(driver.CodeInvalidArg, "open")
	}
	dev := d.devices[index]
	h := driver.Handle(d.nextHandle)
	d.nextHandle++
	d.handles[h] = dev
	dev.mu.Lock()
	dev.openCount++
	dev.mu.Unlock()
	slog.Debug("sim: device opened", "device", index, "handle", uint64(h))
	return h, nil
}

// Close implements driver.Driver. Closing the last handle of a streaming
// device also ends its acquisition, like powering the transport down.
func (d *Driver) Close(h driver.Handle) error {
	if err := d.takeFault("close", ""); err != nil {
		return err
	}
	d.mu.Lock()
	dev, ok := d.handles[h]
	if !ok {
		d.mu.Unlock()
		return driver.NewError(driver.CodeInvalidHandle, "close")
	}
	delete(d.handles, h)
	d.mu.Unlock()

	dev.mu.Lock()
	dev.openCount--
	if dev.openCount == 0 && dev.acquiring {
		dev.acquiring = false
		dev.buf = nil
	}
	dev.mu.Unlock()
	slog.Debug("sim: device closed", "device", dev.index, "handle", uint64(h))
	return nil
}

// StartAcquisition implements driver.Driver.
func (d *Driver) StartAcquisition(h driver.Handle) error {
	if err := d.takeFault("start_acquisition", ""); err != nil {
		return err
	}
	dev, err := d.device(h, "start_acquisition")
	if err != nil {
		return err
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.acquiring {
		return driver.NewError(driver.CodeAcquisitionActive, "start_acquisition")
	}
	dev.acquiring = true
	dev.seq = 0
	dev.trigPending = 0
	dev.nextDue = time.Time{}
	slog.Debug("sim: acquisition started", "device", dev.index)
	return nil
}

// StopAcquisition implements driver.Driver. Stopping an idle device is a
// no-op, which keeps teardown paths simple for callers.
func (d *Driver) StopAcquisition(h driver.Handle) error {
	if err := d.takeFault("stop_acquisition", ""); err != nil {
		return err
	}
	dev, err := d.device(h, "stop_acquisition")
	if err != nil {
		return err
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.acquiring = false
	slog.Debug("sim: acquisition stopped", "device", dev.index)
	return nil
}

// GetParamInt implements driver.Driver.
func (d *Driver) GetParamInt(h driver.Handle, key string) (int32, error) {
	if err := d.takeFault("get_param", key); err != nil {
		return 0, err
	}
	if h == driver.Global {
		return d.globalGet(key)
	}
	dev, err := d.device(h, "get_param")
	if err != nil {
		return 0, err
	}
	return dev.getInt(key)
}

// SetParamInt implements driver.Driver.
func (d *Driver) SetParamInt(h driver.Handle, key string, value int32) error {
	if err := d.takeFault("set_param", key); err != nil {
		return err
	}
	if h == driver.Global {
		return d.globalSet(key, value)
	}
	dev, err := d.device(h, "set_param")
	if err != nil {
		return err
	}
	return dev.setInt(key, value)
}

// GetParamFloat implements driver.Driver.
func (d *Driver) GetParamFloat(h driver.Handle, key string) (float32, error) {
	if err := d.takeFault("get_param", key); err != nil {
		return 0, err
	}
	if h == driver.Global {
		return 0, driver.NewParamError(driver.CodeUnknownParam, "get_param", key)
	}
	dev, err := d.device(h, "get_param")
	if err != nil {
		return 0, err
	}
	return dev.getFloat(key)
}

// SetParamFloat implements driver.Driver.
func (d *Driver) SetParamFloat(h driver.Handle, key string, value float32) error {
	if err := d.takeFault("set_param", key); err != nil {
		return err
	}
	if h == driver.Global {
		return driver.NewParamError(driver.CodeUnknownParam, "set_param", key)
	}
	dev, err := d.device(h, "set_param")
	if err != nil {
		return err
	}
	return dev.setFloat(key, value)
}

// GetParamString implements driver.Driver.
func (d *Driver) GetParamString(h driver.Handle, key string) (string, error) {
	if err := d.takeFault("get_param", key); err != nil {
		return "", err
	}
	if h == driver.Global {
		return "", driver.NewParamError(driver.CodeUnknownParam, "get_param", key)
	}
	dev, err := d.device(h, "get_param")
	if err != nil {
		return "", err
	}
	return dev.getString(key)
}

// GetImage implements driver.Driver.
func (d *Driver) GetImage(h driver.Handle, timeout time.Duration) (driver.Image, error) {
	if err := d.takeFault("get_image", ""); err != nil {
		return driver.Image{}, err
	}
	dev, err := d.device(h, "get_image")
	if err != nil {
		return driver.Image{}, err
	}
	return dev.nextImage(timeout)
}

func (d *Driver) globalGet(key string) (int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	base, suffix := splitKey(key)
	reg, ok := d.global[base]
	if !ok {
		return 0, driver.NewParamError(driver.CodeUnknownParam, "get_param", key)
	}
	return reg.readInt(suffix), nil
}

func (d *Driver) globalSet(key string, value int32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	base, suffix := splitKey(key)
	reg, ok := d.global[base]
	if !ok {
		return driver.NewParamError(driver.CodeUnknownParam, "set_param", key)
	}
	if suffix != "" {
		return driver.NewParamError(driver.CodeReadOnly, "set_param", key)
	}
	if err := reg.checkInt(value, key); err != nil {
		return err
	}
	reg.i = value
	return nil
}

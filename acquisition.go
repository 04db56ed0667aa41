package scicam

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/visiona/scicam/driver"
)

// Acquisition is the streaming session over a device. It is created by
// Camera.StartAcquisition and owns the device until StopAcquisition or
// Close.
//
// Only parameters the device accepts mid-stream are settable here:
// exposure, gain, image user data and the software trigger. Everything
// else is deliberately missing from this type; reconfiguring requires
// stopping first. Read-only queries remain available.
//
// Like Camera, an Acquisition takes no locks: concurrent reads are fine,
// NextFrame and the setters must be serialized by the caller.
type Acquisition struct {
	cam *Camera

	// gen advances on every fetch attempt and on stop; frames carry the
	// value they were fetched under and refuse buffer access once it
	// moves on.
	gen    atomic.Uint64
	active atomic.Bool
	closed atomic.Bool

	frames        atomic.Uint64
	bytes         atomic.Uint64
	timeouts      atomic.Uint64
	fetchErrors   atomic.Uint64
	lastFrameNano atomic.Int64
}

// StartAcquisition switches the device into streaming and returns the
// acquisition session. On failure the error is returned and the Camera
// stays configurable; nothing is consumed by a transition that did not
// happen.
func (c *Camera) StartAcquisition() (*Acquisition, error) {
	if err := c.guardWrite("start_acquisition"); err != nil {
		return nil, err
	}
	if err := c.drv.StartAcquisition(c.handle); err != nil {
		return nil, err
	}
	c.owned.Store(true)
	a := &Acquisition{cam: c}
	a.active.Store(true)
	slog.Info("scicam: acquisition started", "device", c.index, "session_id", c.id)
	return a, nil
}

// StopAcquisition ends streaming and gives the configurable session back.
// On failure the error is returned and the acquisition stays active; the
// caller keeps a usable session either way.
func (a *Acquisition) StopAcquisition() (*Camera, error) {
	if !a.active.Load() {
		return nil, driver.NewError(driver.CodeAcquisitionStopped, "stop_acquisition")
	}
	if err := a.cam.drv.StopAcquisition(a.cam.handle); err != nil {
		return nil, err
	}
	a.invalidate()
	slog.Info("scicam: acquisition stopped", "device", a.cam.index,
		"session_id", a.cam.id, "frames", a.frames.Load())
	return a.cam, nil
}

// Close stops the acquisition if it is still running and closes the
// device. Stop failures are logged, not returned; the close result is.
// Closing twice is a no-op.
func (a *Acquisition) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	if a.active.Load() {
		if err := a.cam.drv.StopAcquisition(a.cam.handle); err != nil {
			slog.Warn("scicam: stopping acquisition on close failed",
				"session_id", a.cam.id, "error", err)
		}
		a.invalidate()
	}
	return a.cam.Close()
}

func (a *Acquisition) invalidate() {
	a.gen.Add(1)
	a.active.Store(false)
	a.cam.owned.Store(false)
}

// NextFrame blocks until the device delivers a frame, or fails with the
// Timeout code once timeout elapses. A timeout <= 0 means the backend's
// maximum wait; there is no other cancellation.
//
// Fetching invalidates every previously returned Frame of this
// acquisition: the backend is free to reuse their buffers for the new
// frame.
func (a *Acquisition) NextFrame(timeout time.Duration) (*Frame, error) {
	if !a.active.Load() {
		return nil, driver.NewError(driver.CodeAcquisitionStopped, "get_image")
	}
	g := a.gen.Add(1)
	img, err := a.cam.drv.GetImage(a.cam.handle, timeout)
	if err != nil {
		if driver.IsTimeout(err) {
			a.timeouts.Add(1)
		} else {
			a.fetchErrors.Add(1)
		}
		return nil, err
	}
	a.frames.Add(1)
	a.bytes.Add(uint64(len(img.Data)))
	a.lastFrameNano.Store(time.Now().UnixNano())
	f := &Frame{acq: a, gen: g, img: img, traceID: uuid.New().String()}
	slog.Debug("scicam: frame fetched", "session_id", a.cam.id,
		"frame", img.FrameNumber, "trace_id", f.traceID)
	return f, nil
}

// SetExposure adjusts the exposure time in microseconds without stopping
// the stream.
func (a *Acquisition) SetExposure(micros float32) error {
	return a.setLiveFloat(ParamExposure, micros)
}

// Exposure returns the exposure time in microseconds.
func (a *Acquisition) Exposure() (float32, error) {
	return a.cam.ParamFloat(ParamExposure)
}

// SetGain adjusts the selected gain stage in dB without stopping the
// stream.
func (a *Acquisition) SetGain(db float32) error {
	return a.setLiveFloat(ParamGain, db)
}

// Gain returns the gain of the selected stage in dB.
func (a *Acquisition) Gain() (float32, error) {
	return a.cam.ParamFloat(ParamGain)
}

// SetImageUserData changes the value echoed into the headers of frames
// exposed from now on.
func (a *Acquisition) SetImageUserData(v int32) error {
	return a.setLiveInt(ParamImageUserData, v)
}

// SoftwareTrigger arms one exposure when the trigger source is
// TriggerSoftware. A trigger yields one frame, two when the short
// interval shutter feature is enabled.
func (a *Acquisition) SoftwareTrigger() error {
	return a.setLiveInt(ParamTriggerSoftware, 1)
}

// ParamInt reads an integer parameter while streaming.
func (a *Acquisition) ParamInt(p Param) (int32, error) {
	return a.cam.ParamInt(p)
}

// ParamFloat reads a floating point parameter while streaming.
func (a *Acquisition) ParamFloat(p Param) (float32, error) {
	return a.cam.ParamFloat(p)
}

func (a *Acquisition) setLiveFloat(p Param, v float32) error {
	if !a.active.Load() {
		return driver.NewParamError(driver.CodeAcquisitionStopped, "set_param", string(p))
	}
	if err := a.cam.drv.SetParamFloat(a.cam.handle, string(p), v); err != nil {
		return err
	}
	slog.Debug("scicam: live parameter set", "session_id", a.cam.id,
		"param", string(p), "value", v)
	return nil
}

func (a *Acquisition) setLiveInt(p Param, v int32) error {
	if !a.active.Load() {
		return driver.NewParamError(driver.CodeAcquisitionStopped, "set_param", string(p))
	}
	if err := a.cam.drv.SetParamInt(a.cam.handle, string(p), v); err != nil {
		return err
	}
	slog.Debug("scicam: live parameter set", "session_id", a.cam.id,
		"param", string(p), "value", v)
	return nil
}

// AcqStats is a point-in-time snapshot of an acquisition's fetch activity.
type AcqStats struct {
	FramesFetched uint64
	BytesFetched  uint64
	Timeouts      uint64
	FetchErrors   uint64
	LastFrameAt   time.Time
}

// Stats returns a snapshot of the acquisition's counters. Safe to call
// from any goroutine.
func (a *Acquisition) Stats() AcqStats {
	s := AcqStats{
		FramesFetched: a.frames.Load(),
		BytesFetched:  a.bytes.Load(),
		Timeouts:      a.timeouts.Load(),
		FetchErrors:   a.fetchErrors.Load(),
	}
	if nano := a.lastFrameNano.Load(); nano != 0 {
		s.LastFrameAt = time.Unix(0, nano)
	}
	return s
}

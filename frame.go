package scicam

import (
	"time"

	"github.com/visiona/scicam/driver"
)

// Frame is a borrowed view over one delivered frame: a copy of the frame
// header plus a reference into backend-owned buffer memory.
//
// The header copy belongs to the Frame, so metadata accessors work
// forever. The buffer does not: it is only guaranteed until the next
// NextFrame on the same Acquisition or until the acquisition stops, and
// every buffer access (Bytes, View.At, View.Data) re-checks that before
// touching memory. A Frame that outlived its buffer answers with absent
// values, never with stale bytes and never with a panic.
type Frame struct {
	acq     *Acquisition
	gen     uint64
	img     driver.Image
	traceID string
}

// Valid reports whether the frame's buffer is still the one the backend
// delivered: the acquisition is active and no later fetch has happened.
func (f *Frame) Valid() bool {
	return f.acq != nil && f.acq.active.Load() && f.acq.gen.Load() == f.gen
}

// Bytes returns the raw payload, row padding included, or nil and false
// once the frame is stale or the backend delivered no buffer.
func (f *Frame) Bytes() ([]byte, bool) {
	if !f.Valid() || f.img.Data == nil {
		return nil, false
	}
	return f.img.Data, true
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return int(f.img.Width) }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return int(f.img.Height) }

// PaddingX returns the extra bytes appended to every pixel row.
func (f *Frame) PaddingX() int { return int(f.img.PaddingX) }

// Format returns the pixel format of the payload.
func (f *Frame) Format() driver.PixelFormat { return f.img.Format }

// FrameNumber returns the 1-based frame count within this acquisition.
func (f *Frame) FrameNumber() uint32 { return f.img.FrameNumber }

// Timestamp returns the capture instant, assembled from the header's two
// 32-bit second and microsecond fields.
func (f *Frame) Timestamp() time.Time {
	return time.Unix(int64(f.img.TsSec), int64(f.img.TsUSec)*int64(time.Microsecond/time.Nanosecond))
}

// ExposureTime returns the exposure the device actually used for this
// frame, which can differ from the requested value.
func (f *Frame) ExposureTime() time.Duration {
	return time.Duration(f.img.ExposureTimeUs) * time.Microsecond
}

// GainDB returns the gain the device applied to this frame.
func (f *Frame) GainDB() float32 { return f.img.GainDB }

// BlackLevel returns the sensor's black level for this frame.
func (f *Frame) BlackLevel() uint32 { return f.img.BlackLevel }

// AbsoluteOffset returns the frame's top-left corner on the full sensor.
func (f *Frame) AbsoluteOffset() (x, y int) {
	return int(f.img.AbsOffsetX), int(f.img.AbsOffsetY)
}

// UserData returns the image user data register's value at exposure time.
func (f *Frame) UserData() uint32 { return f.img.UserData }

// TraceID returns the id correlating this frame's log lines.
func (f *Frame) TraceID() string { return f.traceID }

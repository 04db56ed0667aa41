// Package driver defines the contract between the scicam wrapper and a
// camera device backend.
//
// A backend owns the device transport: it opens and closes devices, flips
// acquisition on and off, reads and writes named parameters and delivers
// raw frame buffers. The wrapper on top of this package adds session
// semantics and buffer interpretation but no transport policy of its own:
// every failure a backend reports crosses this boundary exactly once, as a
// *Error carrying the device code, and is never retried or suppressed here.
//
// Backends in this repository: sim (in-process simulated device) and
// gstcam (GStreamer capture pipeline). Vendor bindings plug in the same
// way.
package driver

import "time"

// Handle identifies one opened device within a backend. Handles are opaque:
// the wrapper never inspects or arithmetics them, it only passes them back
// to the backend that issued them.
type Handle uint64

// Global is the pseudo-handle addressing driver-global state, usable before
// any device is open. Backends route parameter access on Global to their
// process-wide registers (auto bandwidth calculation, debug level).
const Global Handle = 0

// Image is the frame header a backend fills for every delivered frame. The
// layout mirrors the transport's frame record and is read-only for callers;
// Data aliases backend-owned memory that stays valid only until the next
// GetImage on the same handle (unsafe buffer policy) or until acquisition
// stops.
type Image struct {
	// Data is the pixel payload. Nil when the backend delivered a header
	// without a mapped buffer.
	Data []byte

	// BytesTotal is the payload size the backend declares for Data. Zero
	// means the backend does not report a size and callers fall back to
	// geometry (width x height x channels).
	BytesTotal uint32

	Width    uint32
	Height   uint32
	PaddingX uint32 // extra bytes appended to every row
	Format   PixelFormat

	// FrameNumber counts delivered frames per acquisition, starting at 1.
	FrameNumber uint32

	// TsSec and TsUSec carry the capture instant split into two 32-bit
	// fields, seconds and microseconds.
	TsSec  uint32
	TsUSec uint32

	// ExposureTimeUs and GainDB report the settings the device actually
	// used for this frame, which can differ from the requested values.
	ExposureTimeUs uint32
	GainDB         float32

	BlackLevel uint32
	AbsOffsetX uint32 // region offset on the full sensor
	AbsOffsetY uint32
	UserData   uint32 // echo of the image user data register
}

// Driver is implemented by device backends. All calls are synchronous and
// blocking; none of them spawn work the caller has to manage. Implementations
// must be safe for concurrent read-style calls (parameter gets, DeviceCount)
// on the same handle, exactly like the devices they stand in for.
type Driver interface {
	// DeviceCount reports how many devices the backend can currently open.
	DeviceCount() (int, error)

	// Open claims the device at index (0-based enumeration order) and
	// returns its handle. Opening does not start acquisition.
	Open(index int) (Handle, error)

	// Close releases the device. The handle is dead afterwards; any
	// further call with it fails with CodeInvalidHandle.
	Close(h Handle) error

	// StartAcquisition switches the device into streaming. Parameters
	// outside the device's live set reject writes until StopAcquisition.
	StartAcquisition(h Handle) error

	// StopAcquisition ends streaming. Buffers handed out for this
	// acquisition are invalid afterwards.
	StopAcquisition(h Handle) error

	// GetParamInt reads the named integer parameter. Keys are ASCII
	// identifiers; a ":min", ":max" or ":inc" suffix addresses the
	// parameter's limit record instead of its value.
	GetParamInt(h Handle, key string) (int32, error)

	// SetParamInt writes the named integer parameter. Values outside the
	// parameter's range or off its increment grid fail with
	// CodeOutOfRange and leave the register unchanged.
	SetParamInt(h Handle, key string, value int32) error

	// GetParamFloat reads the named floating point parameter.
	GetParamFloat(h Handle, key string) (float32, error)

	// SetParamFloat writes the named floating point parameter.
	SetParamFloat(h Handle, key string, value float32) error

	// GetParamString reads the named string parameter (device name,
	// serial number).
	GetParamString(h Handle, key string) (string, error)

	// GetImage blocks until the next frame is available and fills img
	// with its header and buffer, or fails with CodeTimeout once timeout
	// elapses. A timeout <= 0 means the backend's maximum wait.
	// The buffer aliased by img.Data is overwritten or released by the
	// next GetImage or StopAcquisition on the same handle.
	GetImage(h Handle, timeout time.Duration) (Image, error)
}

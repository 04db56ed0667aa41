// Package scicam wraps machine-vision camera backends behind a small,
// session-oriented acquisition API.
//
// # Architecture
//
// The package is a thin policy layer over the driver contract defined in
// the driver subpackage. Backends (sim, gstcam, vendor bindings) own the
// transport; this package owns two things the transport does not give you:
//
//   - a device session state machine that separates configuration from
//     streaming, and
//   - a typed, bounds-checked view over the raw frame buffers the backend
//     hands out.
//
// # Session model
//
// A device moves through two session types with distinct capabilities:
//
//	cam, err := scicam.Open(drv, 0)        // Camera: configurable
//	acq, err := cam.StartAcquisition()     // Acquisition: streaming
//	frame, err := acq.NextFrame(5 * time.Second)
//	cam, err = acq.StopAcquisition()       // configurable again
//	err = cam.Close()
//
// While an Acquisition owns the device, Camera mutators fail with the
// device code AcquisitionActive; the Acquisition type itself only exposes
// the setters the device accepts mid-stream (exposure, gain, image user
// data, software trigger), so anything else is unrepresentable rather than
// checked. Failed transitions leave the source session usable: a Camera
// whose StartAcquisition fails is still configurable, an Acquisition whose
// StopAcquisition fails is still streaming.
//
// # Frame views
//
// NextFrame returns a Frame: a borrowed view over backend-owned buffer
// memory plus a copy of the frame header. Metadata reads are always safe.
// Pixel access goes through a typed view:
//
//	v := scicam.ViewOf[uint8](frame)
//	val, ok := v.At(x, y)
//
// The buffer behind a Frame is only guaranteed until the next NextFrame on
// the same Acquisition or until the acquisition stops. Every buffer access
// checks a generation counter and reports absent values instead of reading
// stale memory; nothing here panics on bad coordinates or dead frames.
//
// # Errors
//
// Every failure carries a device code from the driver package, whether it
// was detected by the backend or by this layer. Codes are never retried or
// swallowed; helpers like driver.IsTimeout and driver.IsNotSupported let
// callers decide which failures matter to them.
//
// # Concurrency
//
// The wrapper takes no locks. Read-only queries are safe from multiple
// goroutines, matching the devices themselves; anything that mutates
// device state, including NextFrame and session transitions, must be
// serialized by the caller.
package scicam

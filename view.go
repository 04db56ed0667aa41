package scicam

import "unsafe"

// Scalar is the element type of a pixel view: one byte per sample or one
// 16-bit word per sample, matching the 8- and 16-bit pixel formats.
type Scalar interface {
	~uint8 | ~uint16
}

// View interprets a Frame's buffer as pixels of element type T. The view
// itself is free to construct and carries no state beyond the frame; a
// mismatch between T and the frame's format is not an error here, it just
// makes every access absent or meaningless, exactly like aiming the wrong
// cast at raw memory would — except bounds-checked.
//
// Address math per pixel: a row occupies
//
//	stride = width*elemSize*channels + paddingX
//
// bytes, and pixel (x, y) starts at byte offset
//
//	stride*y + x*elemSize*channels.
type View[T Scalar] struct {
	frame *Frame
}

// ViewOf wraps a frame in a typed view. Mono8, Raw8, RGB24 and RGB32
// payloads are viewed with uint8 elements, Mono16 and Raw16 with uint16.
func ViewOf[T Scalar](f *Frame) View[T] {
	return View[T]{frame: f}
}

// At returns the first channel of the pixel at (x, y). The second return
// is false when the pixel is unavailable: coordinates out of bounds,
// buffer missing or shorter than the address math expects, frame stale,
// or a format without a known channel layout.
func (v View[T]) At(x, y int) (T, bool) {
	return v.AtChannel(x, y, 0)
}

// AtChannel returns sample c of the pixel at (x, y). Channels are indexed
// in payload order, 0 to Channels()-1.
func (v View[T]) AtChannel(x, y, c int) (T, bool) {
	var zero T
	f := v.frame
	if f == nil || !f.Valid() || f.img.Data == nil {
		return zero, false
	}
	ch := f.img.Format.Channels()
	if ch == 0 || c < 0 || c >= ch {
		return zero, false
	}
	if x < 0 || y < 0 || x >= int(f.img.Width) || y >= int(f.img.Height) {
		return zero, false
	}
	elem := int(unsafe.Sizeof(zero))
	stride := int(f.img.Width)*elem*ch + int(f.img.PaddingX)
	off := stride*y + (x*ch+c)*elem
	if off < 0 || off+elem > len(f.img.Data) {
		return zero, false
	}
	return *(*T)(unsafe.Pointer(&f.img.Data[off])), true
}

// Data returns the payload reinterpreted as a []T without copying. The
// element count is the header's declared byte length divided by the
// element size, or width*height*channels when the backend declares none;
// either way it is clamped to the buffer actually present. Nil when the
// frame is stale, has no buffer, or carries a format without a known
// channel layout.
//
// Rows include their padding bytes, so with PaddingX > 0 the slice is not
// a dense pixel array; use At for addressed access.
func (v View[T]) Data() []T {
	f := v.frame
	if f == nil || !f.Valid() || len(f.img.Data) == 0 {
		return nil
	}
	ch := f.img.Format.Channels()
	if ch == 0 {
		return nil
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))
	count := int(f.img.Width) * int(f.img.Height) * ch
	if f.img.BytesTotal > 0 {
		count = int(f.img.BytesTotal) / elem
	}
	if avail := len(f.img.Data) / elem; count > avail {
		count = avail
	}
	if count <= 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&f.img.Data[0])), count)
}

package driver

import "fmt"

// PixelFormat encodes the payload layout of a frame. The numeric values are
// part of the transport contract and fixed across backends.
type PixelFormat int32

const (
	FormatMono8     PixelFormat = 0 // 8 bits per pixel, single channel
	FormatMono16    PixelFormat = 1 // 16 bits per pixel, single channel
	FormatRGB24     PixelFormat = 2 // 8 bits per channel, 3 channels
	FormatRGB32     PixelFormat = 3 // 8 bits per channel, 4 channels
	FormatRGBPlanar PixelFormat = 4 // planar color, not viewable per pixel
	FormatRaw8      PixelFormat = 5 // 8-bit sensor data without demosaicing
	FormatRaw16     PixelFormat = 6 // 16-bit sensor data without demosaicing
)

// Channels returns the interleaved samples per pixel used by the frame view
// address math. Formats outside the fixed lookup yield 0; views over them
// report every pixel as absent rather than guessing a layout.
func (f PixelFormat) Channels() int {
	switch f {
	case FormatMono8, FormatMono16, FormatRaw8, FormatRaw16:
		return 1
	case FormatRGB24:
		return 3
	case FormatRGB32:
		return 4
	default:
		return 0
	}
}

// BytesPerPixel returns the packed size of one pixel, 0 for formats without
// a fixed interleaved pixel size.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatMono8, FormatRaw8:
		return 1
	case FormatMono16, FormatRaw16:
		return 2
	case FormatRGB24:
		return 3
	case FormatRGB32:
		return 4
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case FormatMono8:
		return "mono8"
	case FormatMono16:
		return "mono16"
	case FormatRGB24:
		return "rgb24"
	case FormatRGB32:
		return "rgb32"
	case FormatRGBPlanar:
		return "rgb_planar"
	case FormatRaw8:
		return "raw8"
	case FormatRaw16:
		return "raw16"
	default:
		return fmt.Sprintf("format(%d)", int32(f))
	}
}

// ParsePixelFormat maps the textual format names used by profiles and CLI
// flags back to their codes.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "mono8":
		return FormatMono8, nil
	case "mono16":
		return FormatMono16, nil
	case "rgb24":
		return FormatRGB24, nil
	case "rgb32":
		return FormatRGB32, nil
	case "rgb_planar":
		return FormatRGBPlanar, nil
	case "raw8":
		return FormatRaw8, nil
	case "raw16":
		return FormatRaw16, nil
	default:
		return 0, fmt.Errorf("driver: unknown pixel format %q", s)
	}
}

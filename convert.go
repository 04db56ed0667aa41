package scicam

import (
	"fmt"
	"image"
	"image/color"

	"github.com/visiona/scicam/driver"
)

// ToImage copies a frame into a stdlib image for encoding or inspection.
// Mono8 and Raw8 become *image.Gray, Mono16 and Raw16 *image.Gray16 (raw
// sensor data is rendered as grayscale, no demosaicing), RGB24 and RGB32
// *image.RGBA. The frame must still be valid; formats outside that set
// are rejected.
func ToImage(f *Frame) (image.Image, error) {
	if f == nil || !f.Valid() {
		return nil, fmt.Errorf("scicam: frame is stale or nil")
	}
	w, h := f.Width(), f.Height()
	rect := image.Rect(0, 0, w, h)

	switch f.Format() {
	case driver.FormatMono8, driver.FormatRaw8:
		v := ViewOf[uint8](f)
		out := image.NewGray(rect)
		for y := 0; y < h; y++ {
			row := out.Pix[y*out.Stride:]
			for x := 0; x < w; x++ {
				val, ok := v.At(x, y)
				if !ok {
					return nil, shortBufferErr(f, x, y)
				}
				row[x] = val
			}
		}
		return out, nil

	case driver.FormatMono16, driver.FormatRaw16:
		v := ViewOf[uint16](f)
		out := image.NewGray16(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				val, ok := v.At(x, y)
				if !ok {
					return nil, shortBufferErr(f, x, y)
				}
				out.SetGray16(x, y, color.Gray16{Y: val})
			}
		}
		return out, nil

	case driver.FormatRGB24:
		v := ViewOf[uint8](f)
		out := image.NewRGBA(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, okR := v.AtChannel(x, y, 0)
				g, okG := v.AtChannel(x, y, 1)
				b, okB := v.AtChannel(x, y, 2)
				if !okR || !okG || !okB {
					return nil, shortBufferErr(f, x, y)
				}
				out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xFF})
			}
		}
		return out, nil

	case driver.FormatRGB32:
		// fourth byte is transport padding, not alpha
		v := ViewOf[uint8](f)
		out := image.NewRGBA(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, okR := v.AtChannel(x, y, 0)
				g, okG := v.AtChannel(x, y, 1)
				b, okB := v.AtChannel(x, y, 2)
				if !okR || !okG || !okB {
					return nil, shortBufferErr(f, x, y)
				}
				out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xFF})
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("scicam: no image conversion for format %s", f.Format())
	}
}

func shortBufferErr(f *Frame, x, y int) error {
	return fmt.Errorf("scicam: frame buffer ends before pixel (%d,%d), format %s",
		x, y, f.Format())
}

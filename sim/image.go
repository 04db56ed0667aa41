package sim

import (
	"encoding/binary"
	"time"

	"github.com/visiona/scicam/driver"
)

func (d *device) nextImage(timeout time.Duration) (driver.Image, error) {
	wait := timeout
	if wait <= 0 {
		wait = defaultMaxWait
	}
	deadline := time.Now().Add(wait)

	d.mu.Lock()
	if !d.acquiring {
		d.mu.Unlock()
		return driver.Image{}, driver.NewError(driver.CodeAcquisitionStopped, "get_image")
	}
	trigger := d.regs["trigger_source"].i
	d.mu.Unlock()

	switch trigger {
	case 1, 2:
		// edge triggers: sim has no trigger line, nothing ever arrives
		time.Sleep(time.Until(deadline))
		return driver.Image{}, driver.NewError(driver.CodeTimeout, "get_image")
	case 3:
		if err := d.waitTrigger(deadline); err != nil {
			return driver.Image{}, err
		}
	default:
		if err := d.waitFreeRun(deadline); err != nil {
			return driver.Image{}, err
		}
	}
	return d.synthesize()
}

// waitTrigger blocks until a software trigger is armed or the deadline
// passes. Polling keeps the device lock free for concurrent parameter
// reads.
func (d *device) waitTrigger(deadline time.Time) error {
	for {
		d.mu.Lock()
		if !d.acquiring {
			d.mu.Unlock()
			return driver.NewError(driver.CodeAcquisitionStopped, "get_image")
		}
		if d.trigPending > 0 {
			d.trigPending--
			d.mu.Unlock()
			return nil
		}
		d.mu.Unlock()
		if !time.Now().Before(deadline) {
			return driver.NewError(driver.CodeTimeout, "get_image")
		}
		time.Sleep(time.Millisecond)
	}
}

// waitFreeRun paces frame delivery to the configured period.
func (d *device) waitFreeRun(deadline time.Time) error {
	if d.period <= 0 {
		return nil
	}
	d.mu.Lock()
	if d.nextDue.IsZero() {
		d.nextDue = time.Now()
	}
	due := d.nextDue
	d.mu.Unlock()

	if due.After(deadline) {
		time.Sleep(time.Until(deadline))
		return driver.NewError(driver.CodeTimeout, "get_image")
	}
	if wait := time.Until(due); wait > 0 {
		time.Sleep(wait)
	}
	d.mu.Lock()
	d.nextDue = time.Now().Add(d.period)
	d.mu.Unlock()
	return nil
}

func (d *device) synthesize() (driver.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.acquiring {
		return driver.Image{}, driver.NewError(driver.CodeAcquisitionStopped, "get_image")
	}

	w := d.regs["width"].i
	h := d.regs["height"].i
	format := driver.PixelFormat(d.regs["image_format"].i)
	stride := int(w)*format.BytesPerPixel() + int(d.rowPadding)
	total := stride * int(h)

	var buf []byte
	if d.regs["buffer_policy"].i == 0 {
		// unsafe policy: one transport buffer, overwritten per frame
		if cap(d.buf) < total {
			d.buf = make([]byte, total)
		}
		buf = d.buf[:total]
	} else {
		buf = make([]byte, total)
	}

	d.seq++
	fillPattern(buf, int(w), int(h), int(d.rowPadding), format,
		d.regs["test_pattern"].i, d.seq)
	d.transported++

	now := time.Now()
	return driver.Image{
		Data:           buf,
		BytesTotal:     uint32(total),
		Width:          uint32(w),
		Height:         uint32(h),
		PaddingX:       uint32(d.rowPadding),
		Format:         format,
		FrameNumber:    d.seq,
		TsSec:          uint32(now.Unix()),
		TsUSec:         uint32(now.Nanosecond() / 1000),
		ExposureTimeUs: uint32(d.regs["exposure"].f),
		GainDB:         d.regs["gain"].f,
		BlackLevel:     blackLevelFor(format),
		AbsOffsetX:     uint32(d.regs["offset_x"].i),
		AbsOffsetY:     uint32(d.regs["offset_y"].i),
		UserData:       uint32(d.regs["image_user_data"].i),
	}, nil
}

func blackLevelFor(format driver.PixelFormat) uint32 {
	switch format {
	case driver.FormatRaw8, driver.FormatRaw16, driver.FormatMono8, driver.FormatMono16:
		return 16
	default:
		return 0
	}
}

func fillPattern(buf []byte, w, h, pad int, format driver.PixelFormat, pattern int32, seq uint32) {
	s := int(seq)
	stride := w*format.BytesPerPixel() + pad

	switch format {
	case driver.FormatMono8, driver.FormatRaw8:
		for y := 0; y < h; y++ {
			row := buf[y*stride:]
			for x := 0; x < w; x++ {
				row[x] = mono8Sample(pattern, x, y, y*w+x, s)
			}
		}
	case driver.FormatMono16, driver.FormatRaw16:
		for y := 0; y < h; y++ {
			row := buf[y*stride:]
			for x := 0; x < w; x++ {
				binary.NativeEndian.PutUint16(row[x*2:], mono16Sample(pattern, x, y, y*w+x, s))
			}
		}
	case driver.FormatRGB24:
		for y := 0; y < h; y++ {
			row := buf[y*stride:]
			for x := 0; x < w; x++ {
				r, g, b := rgbSample(pattern, x, y, y*w+x, s)
				row[x*3], row[x*3+1], row[x*3+2] = r, g, b
			}
		}
	case driver.FormatRGB32:
		for y := 0; y < h; y++ {
			row := buf[y*stride:]
			for x := 0; x < w; x++ {
				r, g, b := rgbSample(pattern, x, y, y*w+x, s)
				row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = r, g, b, 0xFF
			}
		}
	}
}

func mono8Sample(pattern int32, x, y, idx, seq int) byte {
	switch pattern {
	case 1: // black field
		return 0
	case 2: // white field
		return 0xFF
	case 3: // counting
		return byte(idx + seq)
	default:
		return byte(x + y + seq)
	}
}

func mono16Sample(pattern int32, x, y, idx, seq int) uint16 {
	switch pattern {
	case 1:
		return 0
	case 2:
		return 0xFFFF
	case 3:
		return uint16(idx + seq)
	default:
		return uint16((x + y + seq) * 257)
	}
}

func rgbSample(pattern int32, x, y, idx, seq int) (r, g, b byte) {
	switch pattern {
	case 1:
		return 0, 0, 0
	case 2:
		return 0xFF, 0xFF, 0xFF
	case 3:
		v := byte(idx + seq)
		return v, v, v
	default:
		return byte(x + seq), byte(y + seq), byte(x + y)
	}
}

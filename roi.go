package scicam

import "log/slog"

// Roi describes a region of interest on the sensor. Width and Height are
// the delivered frame size, OffsetX and OffsetY its top-left corner on the
// full sensor.
type Roi struct {
	OffsetX int32
	OffsetY int32
	Width   int32
	Height  int32
}

// Roi reads the current region of interest. The four registers are read
// one by one; against a concurrent writer the combination is not atomic.
func (c *Camera) Roi() (Roi, error) {
	var r Roi
	var err error
	if r.OffsetX, err = c.ParamInt(ParamOffsetX); err != nil {
		return Roi{}, err
	}
	if r.OffsetY, err = c.ParamInt(ParamOffsetY); err != nil {
		return Roi{}, err
	}
	if r.Width, err = c.ParamInt(ParamWidth); err != nil {
		return Roi{}, err
	}
	if r.Height, err = c.ParamInt(ParamHeight); err != nil {
		return Roi{}, err
	}
	return r, nil
}

// SetRoi applies a region of interest and returns what the device actually
// accepted.
//
// The four registers constrain each other: the valid offset range depends
// on the current size, so writing them in the wrong order rejects
// combinations that are perfectly valid as a whole. SetRoi therefore
// clears both offsets first, applies width and height rounded down to
// their increments, then the offsets rounded down to theirs. A failure
// leaves the device on whatever subset was already applied; the error
// names the register that rejected.
func (c *Camera) SetRoi(r Roi) (Roi, error) {
	if err := c.SetParamInt(ParamOffsetX, 0); err != nil {
		return Roi{}, err
	}
	if err := c.SetParamInt(ParamOffsetY, 0); err != nil {
		return Roi{}, err
	}

	steps := []struct {
		param Param
		value int32
	}{
		{ParamWidth, r.Width},
		{ParamHeight, r.Height},
		{ParamOffsetX, r.OffsetX},
		{ParamOffsetY, r.OffsetY},
	}
	for _, s := range steps {
		inc, err := c.ParamInt(s.param.Increment())
		if err != nil {
			return Roi{}, err
		}
		if err := c.SetParamInt(s.param, roundDown(s.value, inc)); err != nil {
			return Roi{}, err
		}
	}

	applied, err := c.Roi()
	if err != nil {
		return Roi{}, err
	}
	slog.Debug("scicam: roi applied", "session_id", c.id,
		"width", applied.Width, "height", applied.Height,
		"offset_x", applied.OffsetX, "offset_y", applied.OffsetY)
	return applied, nil
}

// roundDown snaps v onto the increment grid, towards zero.
func roundDown(v, inc int32) int32 {
	if inc <= 0 {
		return v
	}
	return v - v%inc
}

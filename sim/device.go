package sim

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/visiona/scicam/driver"
)

const (
	widthInc   = 16
	heightInc  = 2
	offsetXInc = 16
	offsetYInc = 2
)

type device struct {
	mu sync.Mutex

	index      int
	name       string
	sn         string
	sensorW    int32
	sensorH    int32
	rowPadding int32
	period     time.Duration

	regs        map[string]*register
	featureVals map[int32]int32

	openCount   int
	acquiring   bool
	seq         uint32
	buf         []byte
	trigPending int
	nextDue     time.Time

	transported uint64
	missed      uint64
}

func newDevice(index int, cfg Config) *device {
	d := &device{
		index:       index,
		name:        "SIMCAM-1300",
		sn:          fmt.Sprintf("SIM%06d", 700001+index),
		sensorW:     cfg.SensorWidth,
		sensorH:     cfg.SensorHeight,
		rowPadding:  cfg.RowPadding,
		period:      cfg.FramePeriod,
		featureVals: make(map[int32]int32),
	}
	d.regs = map[string]*register{
		"width":                           intReg(d.sensorW, 32, d.sensorW, widthInc),
		"height":                          intReg(d.sensorH, 32, d.sensorH, heightInc),
		"offset_x":                        intReg(0, 0, d.sensorW-32, offsetXInc),
		"offset_y":                        intReg(0, 0, d.sensorH-32, offsetYInc),
		"exposure":                        floatReg(10000, 10, 1_000_000, 10),
		"gain":                            floatReg(0, 0, 24, 0.5),
		"gain_selector":                   intReg(0, 0, 2, 1),
		"image_format":                    intReg(int32(cfg.DefaultFormat), 0, 6, 1),
		"downsampling":                    intReg(1, 1, 4, 1),
		"downsampling_type":               intReg(0, 0, 1, 1),
		"framerate":                       floatReg(30, 1, 500, 0),
		"trigger_source":                  intReg(0, 0, 3, 1),
		"trigger_software":                intReg(0, 0, 1, 1),
		"acq_buffer_size":                 intReg(50_000_000, 1_000_000, 512_000_000, 1),
		"buffer_policy":                   intReg(0, 0, 1, 1),
		"image_user_data":                 intReg(0, math.MinInt32, math.MaxInt32, 1),
		"led_selector":                    intReg(1, 1, 2, 1),
		"led_mode":                        intReg(3, 0, 4, 1),
		"test_pattern_generator_selector": intReg(0, 0, 1, 1),
		"test_pattern":                    intReg(0, 0, 3, 1),
		"sensor_feature_selector":         intReg(0, 0, 2, 1),
		"sensor_feature_value":            intReg(0, 0, 1, 1),
		"counter_selector":                intReg(0, 0, 3, 1),
		"counter_value":                   roIntReg(0),
		"available_bandwidth":             roIntReg(2400),
		"limit_bandwidth":                 intReg(2400, 1, 4000, 1),
		"limit_bandwidth_mode":            intReg(0, 0, 1, 1),
		"device_name":                     strReg(d.name),
		"device_sn":                       strReg(d.sn),
	}
	for _, k := range []string{"exposure", "gain", "image_user_data", "trigger_software"} {
		d.regs[k].live = true
	}
	return d
}

func (d *device) getInt(key string) (int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	base, suffix := splitKey(key)
	reg, ok := d.regs[base]
	if !ok {
		return 0, driver.NewParamError(driver.CodeUnknownParam, "get_param", key)
	}
	if reg.kind != regInt {
		return 0, driver.NewParamError(driver.CodeWrongParamType, "get_param", key)
	}
	if suffix == "max" {
		if m, ok := d.dynamicMax(base); ok {
			return m, nil
		}
	}
	if base == "counter_value" && suffix == "" {
		return d.counterValue(), nil
	}
	if base == "sensor_feature_value" && suffix == "" {
		return d.featureVals[d.regs["sensor_feature_selector"].i], nil
	}
	return reg.readInt(suffix), nil
}

func (d *device) setInt(key string, value int32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	base, suffix := splitKey(key)
	reg, ok := d.regs[base]
	if !ok {
		return driver.NewParamError(driver.CodeUnknownParam, "set_param", key)
	}
	if suffix != "" {
		return driver.NewParamError(driver.CodeReadOnly, "set_param", key)
	}
	if reg.kind != regInt {
		return driver.NewParamError(driver.CodeWrongParamType, "set_param", key)
	}
	if reg.readOnly {
		return driver.NewParamError(driver.CodeReadOnly, "set_param", key)
	}
	if d.acquiring && !reg.live {
		return driver.NewParamError(driver.CodeAcquisitionActive, "set_param", key)
	}

	switch base {
	case "trigger_software":
		if !d.acquiring {
			return driver.NewParamError(driver.CodeAcquisitionStopped, "set_param", key)
		}
		d.trigPending++
		// feature 0 is the short interval shutter: one trigger
		// exposes a second frame right behind the first
		if d.featureVals[0] == 1 {
			d.trigPending++
		}
		return nil
	case "image_format":
		if driver.PixelFormat(value).BytesPerPixel() == 0 {
			return driver.NewParamError(driver.CodeNotSupported, "set_param", key)
		}
	case "downsampling":
		if value != 1 && value != 2 && value != 4 {
			return driver.NewParamError(driver.CodeOutOfRange, "set_param", key)
		}
	case "sensor_feature_value":
		if err := reg.checkInt(value, key); err != nil {
			return err
		}
		d.featureVals[d.regs["sensor_feature_selector"].i] = value
		return nil
	}

	limit := reg.imax
	if m, ok := d.dynamicMax(base); ok {
		limit = m
	}
	if value < reg.imin || value > limit {
		return driver.NewParamError(driver.CodeOutOfRange, "set_param", key)
	}
	if reg.iinc > 1 && (value-reg.imin)%reg.iinc != 0 {
		return driver.NewParamError(driver.CodeOutOfRange, "set_param", key)
	}
	reg.i = value
	return nil
}

func (d *device) getFloat(key string) (float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	base, suffix := splitKey(key)
	reg, ok := d.regs[base]
	if !ok {
		return 0, driver.NewParamError(driver.CodeUnknownParam, "get_param", key)
	}
	if reg.kind != regFloat {
		return 0, driver.NewParamError(driver.CodeWrongParamType, "get_param", key)
	}
	return reg.readFloat(suffix), nil
}

func (d *device) setFloat(key string, value float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	base, suffix := splitKey(key)
	reg, ok := d.regs[base]
	if !ok {
		return driver.NewParamError(driver.CodeUnknownParam, "set_param", key)
	}
	if suffix != "" {
		return driver.NewParamError(driver.CodeReadOnly, "set_param", key)
	}
	if reg.kind != regFloat {
		return driver.NewParamError(driver.CodeWrongParamType, "set_param", key)
	}
	if reg.readOnly {
		return driver.NewParamError(driver.CodeReadOnly, "set_param", key)
	}
	if d.acquiring && !reg.live {
		return driver.NewParamError(driver.CodeAcquisitionActive, "set_param", key)
	}
	if value < reg.fmin || value > reg.fmax {
		return driver.NewParamError(driver.CodeOutOfRange, "set_param", key)
	}
	// devices quantize analog settings onto their increment grid
	if reg.finc > 0 {
		steps := math.Round(float64((value - reg.fmin) / reg.finc))
		value = reg.fmin + float32(steps)*reg.finc
	}
	reg.f = value
	return nil
}

func (d *device) getString(key string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, ok := d.regs[key]
	if !ok {
		return "", driver.NewParamError(driver.CodeUnknownParam, "get_param", key)
	}
	if reg.kind != regString {
		return "", driver.NewParamError(driver.CodeWrongParamType, "get_param", key)
	}
	return reg.s, nil
}

// dynamicMax couples the region-of-interest registers: the room for a size
// depends on the current offset and vice versa. Callers hold d.mu.
func (d *device) dynamicMax(base string) (int32, bool) {
	switch base {
	case "width":
		return d.sensorW - d.regs["offset_x"].i, true
	case "height":
		return d.sensorH - d.regs["offset_y"].i, true
	case "offset_x":
		return d.sensorW - d.regs["width"].i, true
	case "offset_y":
		return d.sensorH - d.regs["height"].i, true
	}
	return 0, false
}

// counterValue resolves the diagnostic counter addressed by the current
// counter selector. Callers hold d.mu.
func (d *device) counterValue() int32 {
	switch d.regs["counter_selector"].i {
	case 0: // transport skipped frames, sim never drops
		return 0
	case 1: // api skipped frames
		return 0
	case 2: // transport transferred frames
		return int32(d.transported)
	case 3: // triggers missed mid-exposure
		return int32(d.missed)
	}
	return 0
}

type regKind int

const (
	regInt regKind = iota
	regFloat
	regString
)

type register struct {
	kind regKind

	i    int32
	imin int32
	imax int32
	iinc int32

	f    float32
	fmin float32
	fmax float32
	finc float32

	s string

	readOnly bool
	live     bool
}

func intReg(val, min, max, inc int32) *register {
	return &register{kind: regInt, i: val, imin: min, imax: max, iinc: inc}
}

func roIntReg(val int32) *register {
	return &register{kind: regInt, i: val, readOnly: true}
}

func floatReg(val, min, max, inc float32) *register {
	return &register{kind: regFloat, f: val, fmin: min, fmax: max, finc: inc}
}

func strReg(s string) *register {
	return &register{kind: regString, s: s, readOnly: true}
}

func (r *register) readInt(suffix string) int32 {
	switch suffix {
	case "min":
		return r.imin
	case "max":
		return r.imax
	case "inc":
		return r.iinc
	}
	return r.i
}

func (r *register) readFloat(suffix string) float32 {
	switch suffix {
	case "min":
		return r.fmin
	case "max":
		return r.fmax
	case "inc":
		return r.finc
	}
	return r.f
}

func (r *register) checkInt(value int32, key string) error {
	if value < r.imin || value > r.imax {
		return driver.NewParamError(driver.CodeOutOfRange, "set_param", key)
	}
	if r.iinc > 1 && (value-r.imin)%r.iinc != 0 {
		return driver.NewParamError(driver.CodeOutOfRange, "set_param", key)
	}
	return nil
}

func splitKey(key string) (base, suffix string) {
	if b, s, found := strings.Cut(key, ":"); found {
		return b, s
	}
	return key, ""
}

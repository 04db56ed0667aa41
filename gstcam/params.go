package gstcam

import (
	"math"
	"strings"

	"github.com/visiona/scicam/driver"
)

// Parameter surface of the backend. Keys a capture pipeline cannot honor
// are listed as unsupported so the wrapper's profile layer can skip them.
var (
	intKeys = map[string]bool{
		"width":            true,
		"height":           true,
		"offset_x":         true,
		"offset_y":         true,
		"image_format":     true,
		"buffer_policy":    true,
		"image_user_data":  true,
		"trigger_source":   true,
		"counter_selector": true,
		"counter_value":    true,
		"test_pattern":     true,
	}
	floatKeys = map[string]bool{
		"exposure":  true,
		"gain":      true,
		"framerate": true,
	}
	stringKeys = map[string]bool{
		"device_name": true,
		"device_sn":   true,
	}
	unsupportedKeys = map[string]bool{
		"downsampling":                    true,
		"downsampling_type":               true,
		"gain_selector":                   true,
		"acq_buffer_size":                 true,
		"trigger_software":                true,
		"led_selector":                    true,
		"led_mode":                        true,
		"test_pattern_generator_selector": true,
		"sensor_feature_selector":         true,
		"sensor_feature_value":            true,
		"available_bandwidth":             true,
		"limit_bandwidth":                 true,
		"limit_bandwidth_mode":            true,
	}
	readOnlyKeys = map[string]bool{
		"counter_value": true,
		"device_name":   true,
		"device_sn":     true,
	}
	// settable while the pipeline runs
	liveKeys = map[string]bool{
		"exposure":        true,
		"gain":            true,
		"image_user_data": true,
	}

	intLimits = map[string][3]int32{ // min, max, inc
		"width":            {16, 7680, 2},
		"height":           {16, 7680, 2},
		"offset_x":         {0, 0, 2}, // panning not available, offsets stay 0
		"offset_y":         {0, 0, 2},
		"image_format":     {0, 3, 1},
		"buffer_policy":    {0, 1, 1},
		"image_user_data":  {math.MinInt32, math.MaxInt32, 1},
		"trigger_source":   {0, 0, 1},
		"counter_selector": {0, 3, 1},
		"test_pattern":     {0, 2, 1},
	}
	floatLimits = map[string][3]float32{
		"exposure":  {100, 1_000_000, 100}, // capture drivers step exposure in 100us
		"gain":      {0, 24, 1},
		"framerate": {1, 120, 0},
	}
)

// gstFormat maps a pixel format onto the GStreamer raw video format the
// pipeline negotiates. Raw sensor and planar formats have no capture
// pipeline equivalent.
func gstFormat(f driver.PixelFormat) (string, bool) {
	switch f {
	case driver.FormatMono8:
		return "GRAY8", true
	case driver.FormatMono16:
		return "GRAY16_LE", true
	case driver.FormatRGB24:
		return "RGB", true
	case driver.FormatRGB32:
		return "RGBx", true
	default:
		return "", false
	}
}

// testsrcPattern maps the test pattern register onto videotestsrc's
// pattern property: 0 smpte bars, 2 black, 3 white.
func testsrcPattern(v int32) int {
	switch v {
	case 1:
		return 2
	case 2:
		return 3
	default:
		return 0
	}
}

// rowPadding reconstructs per-row trailing padding from the buffer size.
// GStreamer aligns strides without reporting them through the sample, so
// the excess over width*bpp per row is the padding. Buffers that do not
// divide evenly are treated as packed.
func rowPadding(dataLen, width, height, bpp int) int {
	if dataLen <= 0 || width <= 0 || height <= 0 || bpp <= 0 {
		return 0
	}
	if dataLen%height != 0 {
		return 0
	}
	pad := dataLen/height - width*bpp
	if pad < 0 {
		return 0
	}
	return pad
}

func splitKey(key string) (base, mod string) {
	if b, m, ok := strings.Cut(key, ":"); ok {
		return b, m
	}
	return key, ""
}

// checkKey routes a key to its kind, answering for unsupported and
// unknown names. want is one of intKeys, floatKeys, stringKeys.
func checkKey(base, op string, want map[string]bool) error {
	if want[base] {
		return nil
	}
	if intKeys[base] || floatKeys[base] || stringKeys[base] {
		return driver.NewParamError(driver.CodeWrongParamType, op, base)
	}
	if unsupportedKeys[base] {
		return driver.NewParamError(driver.CodeNotSupported, op, base)
	}
	return driver.NewParamError(driver.CodeUnknownParam, op, base)
}

func (s *stream) getInt(key string) (int32, error) {
	base, mod := splitKey(key)
	if err := checkKey(base, "get_param", intKeys); err != nil {
		return 0, err
	}
	if mod != "" {
		lim, ok := intLimits[base]
		if !ok {
			return 0, driver.NewParamError(driver.CodeUnknownParam, "get_param", key)
		}
		switch mod {
		case "min":
			return lim[0], nil
		case "max":
			return lim[1], nil
		case "inc":
			return lim[2], nil
		default:
			return 0, driver.NewParamError(driver.CodeUnknownParam, "get_param", key)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch base {
	case "width":
		return s.width, nil
	case "height":
		return s.height, nil
	case "offset_x":
		return s.offsetX, nil
	case "offset_y":
		return s.offsetY, nil
	case "image_format":
		return int32(s.format), nil
	case "buffer_policy":
		return s.policy, nil
	case "image_user_data":
		return s.userData, nil
	case "trigger_source":
		return s.trigger, nil
	case "counter_selector":
		return s.counterSel, nil
	case "counter_value":
		return s.counterValueLocked(), nil
	case "test_pattern":
		return s.testPattern, nil
	}
	return 0, driver.NewParamError(driver.CodeUnknownParam, "get_param", base)
}

// counterValueLocked reads the counter selected by counter_selector.
// Transport-side skips and missed triggers do not exist in this backend.
func (s *stream) counterValueLocked() int32 {
	switch s.counterSel {
	case 1: // skipped before the API consumer: queue-full drops
		return int32(s.dropped.Load())
	case 2: // frames transported this acquisition
		return int32(s.seq.Load())
	default:
		return 0
	}
}

func (s *stream) setInt(key string, value int32) error {
	base, mod := splitKey(key)
	if err := checkKey(base, "set_param", intKeys); err != nil {
		return err
	}
	if mod != "" || readOnlyKeys[base] {
		return driver.NewParamError(driver.CodeReadOnly, "set_param", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquiring && !liveKeys[base] {
		return driver.NewParamError(driver.CodeAcquisitionActive, "set_param", base)
	}

	switch base {
	case "image_format":
		if _, ok := gstFormat(driver.PixelFormat(value)); !ok {
			return driver.NewParamError(driver.CodeNotSupported, "set_param", base)
		}
	case "trigger_source":
		if value != 0 {
			// pipelines free-run, no trigger modes
			return driver.NewParamError(driver.CodeNotSupported, "set_param", base)
		}
	case "test_pattern":
		if s.device != "" {
			return driver.NewParamError(driver.CodeNotSupported, "set_param", base)
		}
		if value == 3 {
			// no counting pattern in videotestsrc
			return driver.NewParamError(driver.CodeNotSupported, "set_param", base)
		}
	}

	lim := intLimits[base]
	if value < lim[0] || value > lim[1] {
		return driver.NewParamError(driver.CodeOutOfRange, "set_param", base)
	}
	if lim[2] > 0 && (value-lim[0])%lim[2] != 0 {
		return driver.NewParamError(driver.CodeOutOfRange, "set_param", base)
	}

	switch base {
	case "width":
		s.width = value
	case "height":
		s.height = value
	case "offset_x":
		s.offsetX = value
	case "offset_y":
		s.offsetY = value
	case "image_format":
		s.format = driver.PixelFormat(value)
	case "buffer_policy":
		s.policy = value
	case "image_user_data":
		s.userData = value
	case "trigger_source":
		s.trigger = value
	case "counter_selector":
		s.counterSel = value
	case "test_pattern":
		s.testPattern = value
	}
	return nil
}

func (s *stream) getFloat(key string) (float32, error) {
	base, mod := splitKey(key)
	if err := checkKey(base, "get_param", floatKeys); err != nil {
		return 0, err
	}
	if mod != "" {
		lim, ok := floatLimits[base]
		if !ok {
			return 0, driver.NewParamError(driver.CodeUnknownParam, "get_param", key)
		}
		switch mod {
		case "min":
			return lim[0], nil
		case "max":
			return lim[1], nil
		case "inc":
			return lim[2], nil
		default:
			return 0, driver.NewParamError(driver.CodeUnknownParam, "get_param", key)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch base {
	case "exposure":
		return s.exposure, nil
	case "gain":
		return s.gain, nil
	case "framerate":
		return s.fps, nil
	}
	return 0, driver.NewParamError(driver.CodeUnknownParam, "get_param", base)
}

func (s *stream) setFloat(key string, value float32) error {
	base, mod := splitKey(key)
	if err := checkKey(base, "set_param", floatKeys); err != nil {
		return err
	}
	if mod != "" {
		return driver.NewParamError(driver.CodeReadOnly, "set_param", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquiring && !liveKeys[base] {
		return driver.NewParamError(driver.CodeAcquisitionActive, "set_param", base)
	}

	lim := floatLimits[base]
	if value < lim[0] || value > lim[1] {
		return driver.NewParamError(driver.CodeOutOfRange, "set_param", base)
	}
	if lim[2] > 0 {
		// quantize onto the increment grid
		steps := math.Round(float64((value - lim[0]) / lim[2]))
		value = lim[0] + float32(steps)*lim[2]
	}

	switch base {
	case "exposure":
		s.exposure = value
	case "gain":
		s.gain = value
	case "framerate":
		s.fps = value
	}
	return nil
}

func (s *stream) getString(key string) (string, error) {
	base, _ := splitKey(key)
	if err := checkKey(base, "get_param", stringKeys); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch base {
	case "device_name":
		return s.name, nil
	case "device_sn":
		return s.serial, nil
	}
	return "", driver.NewParamError(driver.CodeUnknownParam, "get_param", base)
}

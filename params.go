package scicam

import (
	"strings"

	"github.com/visiona/scicam/driver"
)

// Param names a device parameter. The typed accessors on Camera and
// Acquisition cover the common ones; the generic ParamInt/ParamFloat
// family takes a Param directly for anything else.
type Param string

// Device parameter keys. The table below declares kind, writability and
// live-set membership per key; access outside the table is rejected before
// it reaches the backend.
const (
	ParamExposure             Param = "exposure" // microseconds
	ParamGain                 Param = "gain"     // dB, stage per gain_selector
	ParamGainSelector         Param = "gain_selector"
	ParamImageFormat          Param = "image_format"
	ParamWidth                Param = "width"
	ParamHeight               Param = "height"
	ParamOffsetX              Param = "offset_x"
	ParamOffsetY              Param = "offset_y"
	ParamDownsampling         Param = "downsampling" // factor: 1, 2, 4
	ParamDownsamplingType     Param = "downsampling_type"
	ParamFramerate            Param = "framerate" // frames per second
	ParamTriggerSource        Param = "trigger_source"
	ParamTriggerSoftware      Param = "trigger_software" // write 1 to fire
	ParamAcqBufferSize        Param = "acq_buffer_size"  // bytes
	ParamBufferPolicy         Param = "buffer_policy"
	ParamImageUserData        Param = "image_user_data" // echoed in frame headers
	ParamLEDSelector          Param = "led_selector"
	ParamLEDMode              Param = "led_mode"
	ParamTestPatternGenerator Param = "test_pattern_generator_selector"
	ParamTestPattern          Param = "test_pattern"
	ParamSensorFeature        Param = "sensor_feature_selector"
	ParamSensorFeatureValue   Param = "sensor_feature_value"
	ParamCounterSelector      Param = "counter_selector"
	ParamCounterValue         Param = "counter_value"
	ParamAvailableBandwidth   Param = "available_bandwidth" // MB/s, measured
	ParamLimitBandwidth       Param = "limit_bandwidth"     // MB/s
	ParamLimitBandwidthMode   Param = "limit_bandwidth_mode"
	ParamDeviceName           Param = "device_name"
	ParamDeviceSN             Param = "device_sn"
)

// Driver-global keys, addressed with driver.Global before a device is open.
const (
	keyAutoBandwidthCalc = "auto_bandwidth_calculation"
	keyDebugLevel        = "debug_level"
)

// Limit record suffixes understood by every backend.
const (
	modMin = ":min"
	modMax = ":max"
	modInc = ":inc"
)

// Min derives the key addressing the parameter's lower limit.
func (p Param) Min() Param { return p + modMin }

// Max derives the key addressing the parameter's upper limit.
func (p Param) Max() Param { return p + modMax }

// Increment derives the key addressing the parameter's value granularity.
// Writable values must sit on the increment grid.
func (p Param) Increment() Param { return p + modInc }

// base strips a limit suffix, returning the parameter the limit belongs to
// and whether p addressed a limit record.
func (p Param) base() (Param, bool) {
	s := string(p)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return Param(s[:i]), true
	}
	return p, false
}

type paramKind int

const (
	kindInt paramKind = iota
	kindFloat
	kindString
)

type paramInfo struct {
	kind     paramKind
	readOnly bool
	live     bool // settable while an acquisition is running
}

var paramTable = map[Param]paramInfo{
	ParamExposure:             {kind: kindFloat, live: true},
	ParamGain:                 {kind: kindFloat, live: true},
	ParamGainSelector:         {kind: kindInt},
	ParamImageFormat:          {kind: kindInt},
	ParamWidth:                {kind: kindInt},
	ParamHeight:               {kind: kindInt},
	ParamOffsetX:              {kind: kindInt},
	ParamOffsetY:              {kind: kindInt},
	ParamDownsampling:         {kind: kindInt},
	ParamDownsamplingType:     {kind: kindInt},
	ParamFramerate:            {kind: kindFloat},
	ParamTriggerSource:        {kind: kindInt},
	ParamTriggerSoftware:      {kind: kindInt, live: true},
	ParamAcqBufferSize:        {kind: kindInt},
	ParamBufferPolicy:         {kind: kindInt},
	ParamImageUserData:        {kind: kindInt, live: true},
	ParamLEDSelector:          {kind: kindInt},
	ParamLEDMode:              {kind: kindInt},
	ParamTestPatternGenerator: {kind: kindInt},
	ParamTestPattern:          {kind: kindInt},
	ParamSensorFeature:        {kind: kindInt},
	ParamSensorFeatureValue:   {kind: kindInt},
	ParamCounterSelector:      {kind: kindInt},
	ParamCounterValue:         {kind: kindInt, readOnly: true},
	ParamAvailableBandwidth:   {kind: kindInt, readOnly: true},
	ParamLimitBandwidth:       {kind: kindInt},
	ParamLimitBandwidthMode:   {kind: kindInt},
	ParamDeviceName:           {kind: kindString, readOnly: true},
	ParamDeviceSN:             {kind: kindString, readOnly: true},
}

// checkParam validates a key against the table before it is handed to the
// backend: the base parameter must exist, carry the expected kind and, for
// writes, be writable. Limit records are read-only by definition.
func checkParam(p Param, want paramKind, op string, write bool) error {
	base, isLimit := p.base()
	info, ok := paramTable[base]
	if !ok {
		return driver.NewParamError(driver.CodeUnknownParam, op, string(p))
	}
	if info.kind != want {
		return driver.NewParamError(driver.CodeWrongParamType, op, string(p))
	}
	if write && (isLimit || info.readOnly) {
		return driver.NewParamError(driver.CodeReadOnly, op, string(p))
	}
	return nil
}

// Limits carries a parameter's integer limit record.
type Limits struct {
	Min int32
	Max int32
	Inc int32
}

// FloatLimits carries a parameter's floating point limit record.
type FloatLimits struct {
	Min float32
	Max float32
	Inc float32
}

package scicam

// TriggerSource selects how frame exposure is initiated.
type TriggerSource int32

const (
	TriggerOff         TriggerSource = 0 // free run
	TriggerEdgeRising  TriggerSource = 1
	TriggerEdgeFalling TriggerSource = 2
	TriggerSoftware    TriggerSource = 3
)

func (t TriggerSource) String() string {
	switch t {
	case TriggerOff:
		return "off"
	case TriggerEdgeRising:
		return "edge_rising"
	case TriggerEdgeFalling:
		return "edge_falling"
	case TriggerSoftware:
		return "software"
	default:
		return "unknown"
	}
}

// GainSelector addresses one of the device's gain stages.
type GainSelector int32

const (
	GainAll        GainSelector = 0 // total gain across all stages
	GainAnalogAll  GainSelector = 1
	GainDigitalAll GainSelector = 2
)

func (g GainSelector) String() string {
	switch g {
	case GainAll:
		return "all"
	case GainAnalogAll:
		return "analog_all"
	case GainDigitalAll:
		return "digital_all"
	default:
		return "unknown"
	}
}

// DownsamplingType selects how the sensor reduces resolution when a
// downsampling factor above 1 is set.
type DownsamplingType int32

const (
	DownsamplingBinning  DownsamplingType = 0 // adjacent pixels averaged
	DownsamplingSkipping DownsamplingType = 1 // pixels skipped
)

func (d DownsamplingType) String() string {
	switch d {
	case DownsamplingBinning:
		return "binning"
	case DownsamplingSkipping:
		return "skipping"
	default:
		return "unknown"
	}
}

// BufferPolicy controls who owns the memory a fetched frame points into.
type BufferPolicy int32

const (
	// BufferUnsafe hands out the transport's own buffer. Fast, but the
	// data is only valid until the next fetch.
	BufferUnsafe BufferPolicy = 0
	// BufferSafe copies every frame into its own allocation.
	BufferSafe BufferPolicy = 1
)

func (b BufferPolicy) String() string {
	switch b {
	case BufferUnsafe:
		return "unsafe"
	case BufferSafe:
		return "safe"
	default:
		return "unknown"
	}
}

// LEDMode drives the status LED selected by the LED selector.
type LEDMode int32

const (
	LEDOff         LEDMode = 0
	LEDOn          LEDMode = 1
	LEDBlink       LEDMode = 2
	LEDHeartbeat   LEDMode = 3
	LEDAcquisition LEDMode = 4 // lit while streaming
)

func (l LEDMode) String() string {
	switch l {
	case LEDOff:
		return "off"
	case LEDOn:
		return "on"
	case LEDBlink:
		return "blink"
	case LEDHeartbeat:
		return "heartbeat"
	case LEDAcquisition:
		return "acquisition"
	default:
		return "unknown"
	}
}

// TestPattern replaces sensor data with a generated pattern, useful for
// validating a transport path without optics.
type TestPattern int32

const (
	TestPatternOff        TestPattern = 0
	TestPatternBlackField TestPattern = 1
	TestPatternWhiteField TestPattern = 2
	TestPatternCounting   TestPattern = 3
)

func (p TestPattern) String() string {
	switch p {
	case TestPatternOff:
		return "off"
	case TestPatternBlackField:
		return "black_field"
	case TestPatternWhiteField:
		return "white_field"
	case TestPatternCounting:
		return "counting"
	default:
		return "unknown"
	}
}

// TestPatternGenerator selects which stage generates the test pattern.
type TestPatternGenerator int32

const (
	TestPatternGeneratorSensor    TestPatternGenerator = 0
	TestPatternGeneratorTransport TestPatternGenerator = 1
)

func (g TestPatternGenerator) String() string {
	switch g {
	case TestPatternGeneratorSensor:
		return "sensor"
	case TestPatternGeneratorTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// SensorFeature addresses a model-specific sensor capability toggled via
// the sensor feature value parameter.
type SensorFeature int32

const (
	FeatureShortIntervalShutter SensorFeature = 0
	FeatureBlackLevelClamp      SensorFeature = 1
	FeatureZeroROT              SensorFeature = 2
)

func (f SensorFeature) String() string {
	switch f {
	case FeatureShortIntervalShutter:
		return "short_interval_shutter"
	case FeatureBlackLevelClamp:
		return "black_level_clamp"
	case FeatureZeroROT:
		return "zero_rot"
	default:
		return "unknown"
	}
}

// DebugLevel sets how much the driver layer itself logs to its own sink.
// It is driver-global state, settable before any device is open.
type DebugLevel int32

const (
	DebugDetail   DebugLevel = 0
	DebugTrace    DebugLevel = 1
	DebugWarning  DebugLevel = 2
	DebugError    DebugLevel = 3
	DebugFatal    DebugLevel = 4
	DebugDisabled DebugLevel = 5
)

func (d DebugLevel) String() string {
	switch d {
	case DebugDetail:
		return "detail"
	case DebugTrace:
		return "trace"
	case DebugWarning:
		return "warning"
	case DebugError:
		return "error"
	case DebugFatal:
		return "fatal"
	case DebugDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

package scicam

import "github.com/visiona/scicam/driver"

// Typed accessors over the parameter table. They add nothing over the
// generic ParamInt/ParamFloat family except names and enum types; anything
// missing here is reachable through the generic calls.

// Exposure returns the exposure time in microseconds.
func (c *Camera) Exposure() (float32, error) {
	return c.ParamFloat(ParamExposure)
}

// SetExposure sets the exposure time in microseconds. Devices quantize to
// their exposure increment, so the value read back can differ slightly.
func (c *Camera) SetExposure(micros float32) error {
	return c.SetParamFloat(ParamExposure, micros)
}

// Gain returns the gain of the stage addressed by the gain selector, in dB.
func (c *Camera) Gain() (float32, error) {
	return c.ParamFloat(ParamGain)
}

// SetGain sets the gain of the selected stage in dB.
func (c *Camera) SetGain(db float32) error {
	return c.SetParamFloat(ParamGain, db)
}

func (c *Camera) GainSelector() (GainSelector, error) {
	v, err := c.ParamInt(ParamGainSelector)
	return GainSelector(v), err
}

func (c *Camera) SetGainSelector(sel GainSelector) error {
	return c.SetParamInt(ParamGainSelector, int32(sel))
}

// ImageFormat returns the pixel format frames are delivered in.
func (c *Camera) ImageFormat() (driver.PixelFormat, error) {
	v, err := c.ParamInt(ParamImageFormat)
	return driver.PixelFormat(v), err
}

func (c *Camera) SetImageFormat(f driver.PixelFormat) error {
	return c.SetParamInt(ParamImageFormat, int32(f))
}

func (c *Camera) Width() (int32, error)  { return c.ParamInt(ParamWidth) }
func (c *Camera) Height() (int32, error) { return c.ParamInt(ParamHeight) }

func (c *Camera) SetWidth(w int32) error  { return c.SetParamInt(ParamWidth, w) }
func (c *Camera) SetHeight(h int32) error { return c.SetParamInt(ParamHeight, h) }

func (c *Camera) OffsetX() (int32, error) { return c.ParamInt(ParamOffsetX) }
func (c *Camera) OffsetY() (int32, error) { return c.ParamInt(ParamOffsetY) }

func (c *Camera) SetOffsetX(x int32) error { return c.SetParamInt(ParamOffsetX, x) }
func (c *Camera) SetOffsetY(y int32) error { return c.SetParamInt(ParamOffsetY, y) }

// Downsampling returns the current downsampling factor (1 = full
// resolution).
func (c *Camera) Downsampling() (int32, error) {
	return c.ParamInt(ParamDownsampling)
}

func (c *Camera) SetDownsampling(factor int32) error {
	return c.SetParamInt(ParamDownsampling, factor)
}

func (c *Camera) DownsamplingType() (DownsamplingType, error) {
	v, err := c.ParamInt(ParamDownsamplingType)
	return DownsamplingType(v), err
}

func (c *Camera) SetDownsamplingType(t DownsamplingType) error {
	return c.SetParamInt(ParamDownsamplingType, int32(t))
}

// Framerate returns the target frame rate in frames per second.
func (c *Camera) Framerate() (float32, error) {
	return c.ParamFloat(ParamFramerate)
}

func (c *Camera) SetFramerate(fps float32) error {
	return c.SetParamFloat(ParamFramerate, fps)
}

func (c *Camera) TriggerSource() (TriggerSource, error) {
	v, err := c.ParamInt(ParamTriggerSource)
	return TriggerSource(v), err
}

// SetTriggerSource selects how exposures are initiated. With
// TriggerSoftware, frames only arrive after SoftwareTrigger on the running
// acquisition; fetches without an armed trigger time out.
func (c *Camera) SetTriggerSource(src TriggerSource) error {
	return c.SetParamInt(ParamTriggerSource, int32(src))
}

// AcqBufferSize returns the size in bytes of the transport buffer queue.
func (c *Camera) AcqBufferSize() (int32, error) {
	return c.ParamInt(ParamAcqBufferSize)
}

func (c *Camera) SetAcqBufferSize(bytes int32) error {
	return c.SetParamInt(ParamAcqBufferSize, bytes)
}

func (c *Camera) BufferPolicy() (BufferPolicy, error) {
	v, err := c.ParamInt(ParamBufferPolicy)
	return BufferPolicy(v), err
}

func (c *Camera) SetBufferPolicy(p BufferPolicy) error {
	return c.SetParamInt(ParamBufferPolicy, int32(p))
}

// ImageUserData returns the value echoed into every frame header's user
// data field.
func (c *Camera) ImageUserData() (int32, error) {
	return c.ParamInt(ParamImageUserData)
}

func (c *Camera) SetImageUserData(v int32) error {
	return c.SetParamInt(ParamImageUserData, v)
}

func (c *Camera) LEDSelector() (int32, error) {
	return c.ParamInt(ParamLEDSelector)
}

func (c *Camera) SetLEDSelector(led int32) error {
	return c.SetParamInt(ParamLEDSelector, led)
}

func (c *Camera) LEDMode() (LEDMode, error) {
	v, err := c.ParamInt(ParamLEDMode)
	return LEDMode(v), err
}

func (c *Camera) SetLEDMode(mode LEDMode) error {
	return c.SetParamInt(ParamLEDMode, int32(mode))
}

func (c *Camera) TestPattern() (TestPattern, error) {
	v, err := c.ParamInt(ParamTestPattern)
	return TestPattern(v), err
}

func (c *Camera) SetTestPattern(p TestPattern) error {
	return c.SetParamInt(ParamTestPattern, int32(p))
}

func (c *Camera) TestPatternGenerator() (TestPatternGenerator, error) {
	v, err := c.ParamInt(ParamTestPatternGenerator)
	return TestPatternGenerator(v), err
}

func (c *Camera) SetTestPatternGenerator(g TestPatternGenerator) error {
	return c.SetParamInt(ParamTestPatternGenerator, int32(g))
}

func (c *Camera) SensorFeature() (SensorFeature, error) {
	v, err := c.ParamInt(ParamSensorFeature)
	return SensorFeature(v), err
}

func (c *Camera) SetSensorFeature(f SensorFeature) error {
	return c.SetParamInt(ParamSensorFeature, int32(f))
}

// SensorFeatureValue reads the value of the currently selected sensor
// feature.
func (c *Camera) SensorFeatureValue() (int32, error) {
	return c.ParamInt(ParamSensorFeatureValue)
}

func (c *Camera) SetSensorFeatureValue(v int32) error {
	return c.SetParamInt(ParamSensorFeatureValue, v)
}

// AvailableBandwidth returns the transport bandwidth the backend measured
// for this device, in MB/s.
func (c *Camera) AvailableBandwidth() (int32, error) {
	return c.ParamInt(ParamAvailableBandwidth)
}

// LimitBandwidth returns the configured bandwidth cap in MB/s. The cap
// only applies while limiting is enabled.
func (c *Camera) LimitBandwidth() (int32, error) {
	return c.ParamInt(ParamLimitBandwidth)
}

func (c *Camera) SetLimitBandwidth(mbps int32) error {
	return c.SetParamInt(ParamLimitBandwidth, mbps)
}

func (c *Camera) LimitBandwidthEnabled() (bool, error) {
	v, err := c.ParamInt(ParamLimitBandwidthMode)
	return v != 0, err
}

func (c *Camera) SetLimitBandwidthEnabled(on bool) error {
	var v int32
	if on {
		v = 1
	}
	return c.SetParamInt(ParamLimitBandwidthMode, v)
}

// DeviceName returns the device's model name.
func (c *Camera) DeviceName() (string, error) {
	return c.ParamString(ParamDeviceName)
}

// SerialNumber returns the device's serial number.
func (c *Camera) SerialNumber() (string, error) {
	return c.ParamString(ParamDeviceSN)
}

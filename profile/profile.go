// Package profile loads camera settings from YAML files and applies them
// to an open, configurable camera. Profiles are sparse: only the fields a
// file names are touched, everything else keeps its current value.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/visiona/scicam"
	"github.com/visiona/scicam/driver"
)

// Profile is one named camera setup. Optional fields are pointers so an
// absent key and a zero value stay distinguishable.
type Profile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Format           *string  `yaml:"format,omitempty"` // mono8, mono16, rgb24, rgb32, raw8, raw16
	Downsampling     *int32   `yaml:"downsampling,omitempty"`
	DownsamplingType *string  `yaml:"downsampling_type,omitempty"` // binning, skipping
	Roi              *RoiSpec `yaml:"roi,omitempty"`
	ExposureUs       *float32 `yaml:"exposure_us,omitempty"`
	GainDB           *float32 `yaml:"gain_db,omitempty"`
	Framerate        *float32 `yaml:"framerate,omitempty"`
	Trigger          *string  `yaml:"trigger,omitempty"` // off, edge_rising, edge_falling, software
	BufferPolicy     *string  `yaml:"buffer_policy,omitempty"` // unsafe, safe
	UserData         *int32   `yaml:"user_data,omitempty"`
	LimitMBps        *int32   `yaml:"limit_bandwidth_mbps,omitempty"`
	TestPattern      *string  `yaml:"test_pattern,omitempty"` // off, black_field, white_field, counting
}

// RoiSpec is the requested capture region. The device rounds it onto its
// increment grid when applied.
type RoiSpec struct {
	OffsetX int32 `yaml:"offset_x"`
	OffsetY int32 `yaml:"offset_y"`
	Width   int32 `yaml:"width"`
	Height  int32 `yaml:"height"`
}

// Load reads and parses a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates profile YAML.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := Validate(&p); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return &p, nil
}

func parseTrigger(s string) (scicam.TriggerSource, error) {
	switch s {
	case "off":
		return scicam.TriggerOff, nil
	case "edge_rising":
		return scicam.TriggerEdgeRising, nil
	case "edge_falling":
		return scicam.TriggerEdgeFalling, nil
	case "software":
		return scicam.TriggerSoftware, nil
	default:
		return 0, fmt.Errorf("unknown trigger %q", s)
	}
}

func parseDownsamplingType(s string) (scicam.DownsamplingType, error) {
	switch s {
	case "binning":
		return scicam.DownsamplingBinning, nil
	case "skipping":
		return scicam.DownsamplingSkipping, nil
	default:
		return 0, fmt.Errorf("unknown downsampling_type %q", s)
	}
}

func parseBufferPolicy(s string) (scicam.BufferPolicy, error) {
	switch s {
	case "unsafe":
		return scicam.BufferUnsafe, nil
	case "safe":
		return scicam.BufferSafe, nil
	default:
		return 0, fmt.Errorf("unknown buffer_policy %q", s)
	}
}

func parseTestPattern(s string) (scicam.TestPattern, error) {
	switch s {
	case "off":
		return scicam.TestPatternOff, nil
	case "black_field":
		return scicam.TestPatternBlackField, nil
	case "white_field":
		return scicam.TestPatternWhiteField, nil
	case "counting":
		return scicam.TestPatternCounting, nil
	default:
		return 0, fmt.Errorf("unknown test_pattern %q", s)
	}
}

func parseFormat(s string) (driver.PixelFormat, error) {
	f, err := driver.ParsePixelFormat(s)
	if err != nil {
		return 0, fmt.Errorf("unknown format %q", s)
	}
	return f, nil
}

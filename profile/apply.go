package profile

import (
	"fmt"
	"log/slog"

	"github.com/visiona/scicam"
	"github.com/visiona/scicam/driver"
)

// Options tunes how a profile is written to a camera.
type Options struct {
	// IgnoreUnsupported skips settings the backend answers with a
	// not-supported or not-implemented code, so one profile can serve
	// devices with different capabilities.
	IgnoreUnsupported bool
}

// Apply writes the profile's settings to a configurable camera. Format
// and downsampling go first, then the capture region, then everything
// else: geometry changes shift the valid ranges the later settings are
// checked against.
//
// The first hard failure aborts the apply; settings already written stay
// written.
func Apply(cam *scicam.Camera, p *Profile, opts Options) error {
	if cam == nil || p == nil {
		return fmt.Errorf("profile: camera and profile must not be nil")
	}
	if err := Validate(p); err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	steps := []struct {
		name  string
		apply func() error
		skip  bool
	}{
		{"format", func() error {
			f, _ := parseFormat(*p.Format)
			return cam.SetImageFormat(f)
		}, p.Format == nil},
		{"downsampling_type", func() error {
			t, _ := parseDownsamplingType(*p.DownsamplingType)
			return cam.SetDownsamplingType(t)
		}, p.DownsamplingType == nil},
		{"downsampling", func() error {
			return cam.SetDownsampling(*p.Downsampling)
		}, p.Downsampling == nil},
		{"roi", func() error {
			actual, err := cam.SetRoi(scicam.Roi{
				OffsetX: p.Roi.OffsetX,
				OffsetY: p.Roi.OffsetY,
				Width:   p.Roi.Width,
				Height:  p.Roi.Height,
			})
			if err == nil {
				slog.Debug("profile: roi applied",
					"requested", fmt.Sprintf("%dx%d+%d+%d", p.Roi.Width, p.Roi.Height, p.Roi.OffsetX, p.Roi.OffsetY),
					"actual", fmt.Sprintf("%dx%d+%d+%d", actual.Width, actual.Height, actual.OffsetX, actual.OffsetY))
			}
			return err
		}, p.Roi == nil},
		{"framerate", func() error {
			return cam.SetFramerate(*p.Framerate)
		}, p.Framerate == nil},
		{"exposure_us", func() error {
			return cam.SetExposure(*p.ExposureUs)
		}, p.ExposureUs == nil},
		{"gain_db", func() error {
			return cam.SetGain(*p.GainDB)
		}, p.GainDB == nil},
		{"trigger", func() error {
			t, _ := parseTrigger(*p.Trigger)
			return cam.SetTriggerSource(t)
		}, p.Trigger == nil},
		{"buffer_policy", func() error {
			b, _ := parseBufferPolicy(*p.BufferPolicy)
			return cam.SetBufferPolicy(b)
		}, p.BufferPolicy == nil},
		{"user_data", func() error {
			return cam.SetImageUserData(*p.UserData)
		}, p.UserData == nil},
		{"limit_bandwidth_mbps", func() error {
			if err := cam.SetLimitBandwidth(*p.LimitMBps); err != nil {
				return err
			}
			return cam.SetLimitBandwidthEnabled(true)
		}, p.LimitMBps == nil},
		{"test_pattern", func() error {
			t, _ := parseTestPattern(*p.TestPattern)
			return cam.SetTestPattern(t)
		}, p.TestPattern == nil},
	}

	for _, step := range steps {
		if step.skip {
			continue
		}
		err := step.apply()
		if err == nil {
			continue
		}
		if opts.IgnoreUnsupported && (driver.IsNotSupported(err) || driver.IsNotImplemented(err)) {
			slog.Debug("profile: setting skipped, backend does not support it",
				"profile", p.Name, "setting", step.name)
			continue
		}
		return fmt.Errorf("profile: apply %s: %w", step.name, err)
	}

	slog.Info("profile: applied", "profile", p.Name)
	return nil
}

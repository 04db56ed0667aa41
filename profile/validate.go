package profile

import "fmt"

// Validate checks a profile for well-formedness. Range limits belong to
// the device; this only rejects values no device could accept.
func Validate(p *Profile) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}

	if p.Format != nil {
		if _, err := parseFormat(*p.Format); err != nil {
			return err
		}
	}
	if p.Trigger != nil {
		if _, err := parseTrigger(*p.Trigger); err != nil {
			return err
		}
	}
	if p.DownsamplingType != nil {
		if _, err := parseDownsamplingType(*p.DownsamplingType); err != nil {
			return err
		}
	}
	if p.BufferPolicy != nil {
		if _, err := parseBufferPolicy(*p.BufferPolicy); err != nil {
			return err
		}
	}
	if p.TestPattern != nil {
		if _, err := parseTestPattern(*p.TestPattern); err != nil {
			return err
		}
	}

	if p.Downsampling != nil {
		switch *p.Downsampling {
		case 1, 2, 4:
		default:
			return fmt.Errorf("downsampling must be 1, 2 or 4, got %d", *p.Downsampling)
		}
	}
	if p.Roi != nil {
		if p.Roi.Width <= 0 || p.Roi.Height <= 0 {
			return fmt.Errorf("roi needs positive width and height, got %dx%d",
				p.Roi.Width, p.Roi.Height)
		}
		if p.Roi.OffsetX < 0 || p.Roi.OffsetY < 0 {
			return fmt.Errorf("roi offsets must not be negative")
		}
	}
	if p.ExposureUs != nil && *p.ExposureUs <= 0 {
		return fmt.Errorf("exposure_us must be > 0")
	}
	if p.GainDB != nil && *p.GainDB < 0 {
		return fmt.Errorf("gain_db must not be negative")
	}
	if p.Framerate != nil && *p.Framerate <= 0 {
		return fmt.Errorf("framerate must be > 0")
	}
	if p.LimitMBps != nil && *p.LimitMBps <= 0 {
		return fmt.Errorf("limit_bandwidth_mbps must be > 0")
	}
	return nil
}

// Package gstpipe builds and supervises the GStreamer pipelines behind the
// gstcam backend. It deals in GStreamer terms only; mapping to driver
// semantics stays in the parent package.
package gstpipe

import (
	"fmt"
	"log/slog"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// Config describes one capture pipeline.
type Config struct {
	Device      string // /dev/videoN, empty for a synthetic source
	Width       int
	Height      int
	FPS         float64
	Format      string // GStreamer format name: GRAY8, GRAY16_LE, RGB, RGBx
	TestPattern int    // videotestsrc pattern, synthetic source only
}

// Elements holds the pipeline parts that need touching after construction.
type Elements struct {
	Pipeline   *gst.Pipeline
	Source     *gst.Element
	CapsFilter *gst.Element
	Sink       *app.Sink
}

// Build assembles a capture pipeline:
//
//	v4l2src (or videotestsrc) → videoconvert → videoscale →
//	videorate → capsfilter → appsink
//
// The pipeline is left in the NULL state. Caller starts it with
// Pipeline.SetState(gst.StatePlaying) and must tear it down with Destroy.
func Build(cfg Config) (*Elements, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("gstpipe: create pipeline: %w", err)
	}

	var source *gst.Element
	if cfg.Device == "" {
		source, err = gst.NewElement("videotestsrc")
		if err != nil {
			return nil, fmt.Errorf("gstpipe: create videotestsrc: %w", err)
		}
		source.SetProperty("is-live", true)
		source.SetProperty("pattern", cfg.TestPattern)
	} else {
		source, err = gst.NewElement("v4l2src")
		if err != nil {
			return nil, fmt.Errorf("gstpipe: create v4l2src: %w", err)
		}
		source.SetProperty("device", cfg.Device)
	}

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("gstpipe: create videoconvert: %w", err)
	}
	converter.SetProperty("n-threads", 0)

	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("gstpipe: create videoscale: %w", err)
	}

	videorate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, fmt.Errorf("gstpipe: create videorate: %w", err)
	}
	videorate.SetProperty("drop-only", true)
	videorate.SetProperty("skip-to-first", true)

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("gstpipe: create capsfilter: %w", err)
	}
	capsStr := BuildCaps(cfg.Format, cfg.Width, cfg.Height, cfg.FPS)
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("gstpipe: create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)
	appsink.SetProperty("max-buffers", 1) // keep only the latest frame
	appsink.SetProperty("drop", true)
	appsink.SetProperty("qos", true)

	pipeline.AddMany(source, converter, scaler, videorate, capsfilter, appsink.Element)

	// v4l2src and videotestsrc have static pads, so the whole chain links here
	if err := gst.ElementLinkMany(source, converter, scaler, videorate, capsfilter, appsink.Element); err != nil {
		return nil, fmt.Errorf("gstpipe: link pipeline: %w", err)
	}

	slog.Debug("gstpipe: pipeline built", "device", cfg.Device, "caps", capsStr)

	return &Elements{
		Pipeline:   pipeline,
		Source:     source,
		CapsFilter: capsfilter,
		Sink:       appsink,
	}, nil
}

// Destroy drops the pipeline to NULL and releases its resources. Safe to
// call more than once.
func Destroy(e *Elements) error {
	if e == nil || e.Pipeline == nil {
		return nil
	}
	if err := e.Pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("gstpipe: stop pipeline: %w", err)
	}
	return nil
}

// BuildCaps renders a raw-video caps string. Fractional rates below 1 Hz
// become 1/N fractions, everything else N/1.
func BuildCaps(format string, width, height int, fps float64) string {
	numerator, denominator := 1, 1
	switch {
	case fps <= 0:
		numerator = 30
	case fps < 1.0:
		denominator = int(1.0 / fps)
	default:
		numerator = int(fps)
	}
	return fmt.Sprintf("video/x-raw,format=%s,width=%d,height=%d,framerate=%d/%d",
		format, width, height, numerator, denominator)
}

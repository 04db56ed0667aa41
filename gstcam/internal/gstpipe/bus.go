package gstpipe

import (
	"context"
	"log/slog"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
)

// WatchBus drains pipeline bus messages until the context is cancelled or
// the pipeline fails. Returns nil on cancellation, a *BusError on failure.
// EOS counts as failure: a capture device that stops producing is gone.
func WatchBus(ctx context.Context, pipeline *gst.Pipeline) error {
	if pipeline == nil {
		return &BusError{Category: CategoryUnknown, Msg: "pipeline not initialized"}
	}
	bus := pipeline.GetPipelineBus()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// short poll keeps shutdown responsive
		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}

		switch msg.Type() {
		case gst.MessageEOS:
			slog.Warn("gstpipe: end of stream from capture device")
			return &BusError{Category: CategoryLost, Msg: "end of stream"}

		case gst.MessageError:
			gerr := msg.ParseError()
			category := Classify(gerr)
			slog.Error("gstpipe: pipeline error",
				"error", gerr.Error(),
				"debug", gerr.DebugString(),
				"category", category.String(),
			)
			return &BusError{Category: category, Msg: gerr.Error(), Debug: gerr.DebugString()}

		case gst.MessageStateChanged:
			if msg.Source() == pipeline.GetName() {
				old, next := msg.ParseStateChanged()
				slog.Debug("gstpipe: pipeline state changed", "from", old, "to", next)
			}
		}
	}
}

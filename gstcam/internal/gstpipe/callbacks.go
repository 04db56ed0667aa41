package gstpipe

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// Sample is one frame as it leaves the appsink: a private copy of the
// pixel data plus the arrival time.
type Sample struct {
	Seq  uint64
	At   time.Time
	Data []byte
}

// Context carries the channel and counters shared between the appsink
// callback and the owning stream.
type Context struct {
	Frames      chan<- Sample
	Transported *atomic.Uint64
	Bytes       *atomic.Uint64
	Dropped     *atomic.Uint64
}

// OnSample pulls the pending sample from the appsink, copies it out of
// GStreamer's buffer and hands it to the stream without blocking. A full
// channel drops the frame; a bad sample skips it rather than killing the
// pipeline.
func OnSample(sink *app.Sink, ctx *Context) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		slog.Warn("gstpipe: pull sample failed, skipping frame")
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		slog.Warn("gstpipe: sample without buffer, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		slog.Warn("gstpipe: empty buffer received")
		return gst.FlowOK
	}
	// GStreamer reuses the mapped buffer, copy before unmapping
	frame := make([]byte, len(data))
	copy(frame, data)
	buffer.Unmap()

	seq := ctx.Transported.Add(1)
	ctx.Bytes.Add(uint64(len(frame)))

	select {
	case ctx.Frames <- Sample{Seq: seq, At: time.Now(), Data: frame}:
	default:
		ctx.Dropped.Add(1)
		slog.Debug("gstpipe: frame dropped, consumer behind", "seq", seq)
	}
	return gst.FlowOK
}

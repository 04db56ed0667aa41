package gstpipe

import (
	"fmt"
	"strings"

	"github.com/tinyzimmer/go-gst/gst"
)

// Category classifies pipeline failures so the backend can pick the right
// driver code for them.
type Category int

const (
	// CategoryBusy indicates the device is held by another process.
	CategoryBusy Category = iota
	// CategoryLost indicates the device vanished: unplugged, removed, or
	// never present.
	CategoryLost
	// CategoryCaps indicates a format negotiation failure: the device
	// cannot produce what the caps ask for.
	CategoryCaps
	// CategoryUnknown covers everything else.
	CategoryUnknown
)

func (c Category) String() string {
	switch c {
	case CategoryBusy:
		return "busy"
	case CategoryLost:
		return "lost"
	case CategoryCaps:
		return "caps"
	default:
		return "unknown"
	}
}

// BusError is a fatal pipeline failure reported through the bus.
type BusError struct {
	Category Category
	Msg      string
	Debug    string
}

func (e *BusError) Error() string {
	return fmt.Sprintf("gstpipe: pipeline failed [%s]: %s", e.Category, e.Msg)
}

// Classify buckets a GStreamer error for the backend.
//
// go-gst's GError does not expose the error domain, so classification
// works on message text.
func Classify(gerr *gst.GError) Category {
	if gerr == nil {
		return CategoryUnknown
	}
	return classifyText(gerr.Error(), gerr.DebugString())
}

func classifyText(msg, debug string) Category {
	combined := strings.ToLower(msg + " " + debug)

	// busy first, "device" alone also appears in lost-device messages
	for _, kw := range busyKeywords {
		if strings.Contains(combined, kw) {
			return CategoryBusy
		}
	}
	for _, kw := range lostKeywords {
		if strings.Contains(combined, kw) {
			return CategoryLost
		}
	}
	for _, kw := range capsKeywords {
		if strings.Contains(combined, kw) {
			return CategoryCaps
		}
	}
	return CategoryUnknown
}

var busyKeywords = []string{
	"resource busy",
	"device busy",
	"device or resource busy",
	"already in use",
}

var lostKeywords = []string{
	"no such file",
	"no such device",
	"not found",
	"removed",
	"disconnected",
	"unplugged",
	"cannot identify device",
	"could not open",
}

var capsKeywords = []string{
	"negotiated", // also matches gst's hyphenated "not-negotiated"
	"negotiation",
	"caps",
	"format",
	"missing plugin",
	"no decoder",
	"unsupported",
}

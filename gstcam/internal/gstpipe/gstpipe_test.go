package gstpipe

import "testing"

func TestBuildCaps(t *testing.T) {
	tests := []struct {
		name   string
		format string
		w, h   int
		fps    float64
		want   string
	}{
		{"integer_rate", "GRAY8", 1280, 1024, 30, "video/x-raw,format=GRAY8,width=1280,height=1024,framerate=30/1"},
		{"fractional_rate", "RGB", 640, 480, 0.5, "video/x-raw,format=RGB,width=640,height=480,framerate=1/2"},
		{"one_hz", "GRAY16_LE", 320, 240, 1, "video/x-raw,format=GRAY16_LE,width=320,height=240,framerate=1/1"},
		{"zero_defaults", "RGBx", 640, 480, 0, "video/x-raw,format=RGBx,width=640,height=480,framerate=30/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildCaps(tt.format, tt.w, tt.h, tt.fps); got != tt.want {
				t.Errorf("BuildCaps() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyText(t *testing.T) {
	tests := []struct {
		name  string
		msg   string
		debug string
		want  Category
	}{
		{"device_busy", "Could not read from resource.", "Device or resource busy", CategoryBusy},
		{"already_open", "v4l2src0: failed to start", "device already in use by another application", CategoryBusy},
		{"unplugged", "Device '/dev/video0' was removed", "", CategoryLost},
		{"missing_node", "Cannot open device", "no such file or directory", CategoryLost},
		{"bad_caps", "Internal data stream error.", "streaming stopped, reason not-negotiated (-4)", CategoryCaps},
		{"no_format", "Device cannot produce requested format", "", CategoryCaps},
		{"opaque", "Internal data stream error.", "streaming stopped, reason error (-5)", CategoryUnknown},
		{"empty", "", "", CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyText(tt.msg, tt.debug); got != tt.want {
				t.Errorf("classifyText(%q, %q) = %v, want %v", tt.msg, tt.debug, got, tt.want)
			}
		})
	}
}

func TestClassify_NilError(t *testing.T) {
	if got := Classify(nil); got != CategoryUnknown {
		t.Errorf("Classify(nil) = %v, want CategoryUnknown", got)
	}
}

func TestBusError_Message(t *testing.T) {
	err := &BusError{Category: CategoryLost, Msg: "end of stream"}
	want := "gstpipe: pipeline failed [lost]: end of stream"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

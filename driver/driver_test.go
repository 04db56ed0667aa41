package driver_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/visiona/scicam/driver"
)

func TestCode_String(t *testing.T) {
	tests := []struct {
		code driver.Code
		want string
	}{
		{driver.CodeOK, "ok"},
		{driver.CodeInvalidHandle, "invalid handle"},
		{driver.CodeTimeout, "timeout"},
		{driver.CodeInvalidArg, "invalid argument"},
		{driver.CodeOutOfRange, "value out of range"},
		{driver.CodeUnknownParam, "unknown parameter"},
		{driver.CodeWrongParamType, "wrong parameter type"},
		{driver.CodeReadOnly, "parameter is read-only"},
		{driver.CodeNotSupported, "not supported"},
		{driver.CodeNotImplemented, "not implemented"},
		{driver.CodeAcquisitionActive, "acquisition is active"},
		{driver.CodeAcquisitionStopped, "acquisition is stopped"},
		{driver.CodeDeviceBusy, "device busy"},
		{driver.CodeDeviceLost, "device lost"},
		{driver.CodeInternal, "internal error"},
		{driver.Code(999), "code(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.String(); got != tt.want {
				t.Errorf("Code(%d).String() = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *driver.Error
		want string
	}{
		{
			name: "operation only",
			err:  driver.NewError(driver.CodeTimeout, "get_image"),
			want: `driver: get_image: timeout`,
		},
		{
			name: "operation with parameter",
			err:  driver.NewParamError(driver.CodeOutOfRange, "set_param", "width"),
			want: `driver: set_param "width": value out of range`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	base := driver.NewError(driver.CodeDeviceLost, "get_image")

	tests := []struct {
		name string
		err  error
		want driver.Code
	}{
		{"nil error", nil, driver.CodeOK},
		{"bare driver error", base, driver.CodeDeviceLost},
		{"wrapped once", fmt.Errorf("scicam: fetch frame: %w", base), driver.CodeDeviceLost},
		{"wrapped twice", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", base)), driver.CodeDeviceLost},
		{"foreign error", errors.New("disk full"), driver.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := driver.CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	timeout := fmt.Errorf("wrapped: %w", driver.NewError(driver.CodeTimeout, "get_image"))
	unsupported := driver.NewParamError(driver.CodeNotSupported, "set_param", "led_mode")
	unimplemented := driver.NewParamError(driver.CodeNotImplemented, "get_param", "sensor_feature_value")

	if !driver.IsTimeout(timeout) {
		t.Error("IsTimeout() = false for wrapped timeout error")
	}
	if driver.IsTimeout(unsupported) {
		t.Error("IsTimeout() = true for not-supported error")
	}
	if !driver.IsNotSupported(unsupported) {
		t.Error("IsNotSupported() = false for not-supported error")
	}
	if !driver.IsNotImplemented(unimplemented) {
		t.Error("IsNotImplemented() = false for not-implemented error")
	}
	if driver.IsNotSupported(nil) {
		t.Error("IsNotSupported(nil) = true")
	}
}

func TestPixelFormat_Channels(t *testing.T) {
	tests := []struct {
		format driver.PixelFormat
		want   int
	}{
		{driver.FormatMono8, 1},
		{driver.FormatMono16, 1},
		{driver.FormatRaw8, 1},
		{driver.FormatRaw16, 1},
		{driver.FormatRGB24, 3},
		{driver.FormatRGB32, 4},
		{driver.FormatRGBPlanar, 0},
		{driver.PixelFormat(42), 0},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.Channels(); got != tt.want {
				t.Errorf("Channels() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPixelFormat_BytesPerPixel(t *testing.T) {
	tests := []struct {
		format driver.PixelFormat
		want   int
	}{
		{driver.FormatMono8, 1},
		{driver.FormatRaw8, 1},
		{driver.FormatMono16, 2},
		{driver.FormatRaw16, 2},
		{driver.FormatRGB24, 3},
		{driver.FormatRGB32, 4},
		{driver.FormatRGBPlanar, 0},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.BytesPerPixel(); got != tt.want {
				t.Errorf("BytesPerPixel() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParsePixelFormat(t *testing.T) {
	named := []driver.PixelFormat{
		driver.FormatMono8,
		driver.FormatMono16,
		driver.FormatRGB24,
		driver.FormatRGB32,
		driver.FormatRGBPlanar,
		driver.FormatRaw8,
		driver.FormatRaw16,
	}

	for _, f := range named {
		t.Run(f.String(), func(t *testing.T) {
			got, err := driver.ParsePixelFormat(f.String())
			if err != nil {
				t.Fatalf("ParsePixelFormat(%q) error: %v", f.String(), err)
			}
			if got != f {
				t.Errorf("ParsePixelFormat(%q) = %v, want %v", f.String(), got, f)
			}
		})
	}

	t.Run("unknown name", func(t *testing.T) {
		_, err := driver.ParsePixelFormat("bayer_gr12")
		if err == nil {
			t.Fatal("ParsePixelFormat() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "unknown pixel format") {
			t.Errorf("error = %q, want mention of unknown pixel format", err)
		}
	})
}

package main

import (
	"testing"
	"time"
)

// pacedTimes builds n timestamps spaced by the given intervals,
// cycling through them.
func pacedTimes(n int, intervals ...time.Duration) []time.Time {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	times := make([]time.Time, n)
	t := base
	for i := 0; i < n; i++ {
		times[i] = t
		t = t.Add(intervals[i%len(intervals)])
	}
	return times
}

func TestCalculateRateStats_SteadyDelivery(t *testing.T) {
	// 30 frames, one every 100ms
	times := pacedTimes(30, 100*time.Millisecond)
	stats := calculateRateStats(times, 3*time.Second)

	if stats.FramesReceived != 30 {
		t.Fatalf("FramesReceived = %d, want 30", stats.FramesReceived)
	}
	if got := stats.FPSMean; got < 9.99 || got > 10.01 {
		t.Errorf("FPSMean = %.3f, want 10", got)
	}
	if stats.FPSStdDev > 0.01 {
		t.Errorf("FPSStdDev = %.3f, want ~0 for steady delivery", stats.FPSStdDev)
	}
	if stats.FPSMin != stats.FPSMax {
		t.Errorf("FPSMin %.2f != FPSMax %.2f for steady delivery", stats.FPSMin, stats.FPSMax)
	}
	if !stats.IsStable {
		t.Error("steady delivery should be reported stable")
	}
}

func TestCalculateRateStats_JitteryDelivery(t *testing.T) {
	// Alternating 50ms and 150ms intervals: same mean rate, high variance
	times := pacedTimes(30, 50*time.Millisecond, 150*time.Millisecond)
	stats := calculateRateStats(times, 3*time.Second)

	if stats.IsStable {
		t.Errorf("jittery delivery reported stable (stddev %.2f, jitter %.3f)",
			stats.FPSStdDev, stats.JitterMean)
	}
	if stats.JitterMean < 0.04 {
		t.Errorf("JitterMean = %.3f, want ~0.05 for alternating intervals", stats.JitterMean)
	}
	if stats.FPSMax <= stats.FPSMin {
		t.Errorf("FPSMax %.2f should exceed FPSMin %.2f", stats.FPSMax, stats.FPSMin)
	}
}

func TestCalculateRateStats_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		times  []time.Time
		during time.Duration
	}{
		{name: "no_frames", times: nil, during: time.Second},
		{name: "one_frame", times: pacedTimes(1, time.Second), during: time.Second},
		{name: "zero_duration", times: pacedTimes(5, time.Second), during: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stats := calculateRateStats(tc.times, tc.during)
			if stats.IsStable {
				t.Error("degenerate input should never be reported stable")
			}
			if stats.FPSStdDev != 0 || stats.JitterMean != 0 {
				t.Errorf("degenerate input produced nonzero spread: stddev %.3f jitter %.3f",
					stats.FPSStdDev, stats.JitterMean)
			}
		})
	}
}

func TestParseRoi(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantW   int32
		wantH   int32
		wantX   int32
		wantY   int32
		wantErr bool
	}{
		{name: "size_only", in: "640x480", wantW: 640, wantH: 480},
		{name: "size_and_offsets", in: "640x480+100+50", wantW: 640, wantH: 480, wantX: 100, wantY: 50},
		{name: "garbage", in: "abc", wantErr: true},
		{name: "width_only", in: "640", wantErr: true},
		{name: "zero_width", in: "0x480", wantErr: true},
		{name: "negative_height", in: "640x-2", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := parseRoi(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseRoi(%q) = %+v, want error", tc.in, r)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRoi(%q): %v", tc.in, err)
			}
			if r.Width != tc.wantW || r.Height != tc.wantH || r.OffsetX != tc.wantX || r.OffsetY != tc.wantY {
				t.Errorf("parseRoi(%q) = %+v, want %dx%d+%d+%d",
					tc.in, r, tc.wantW, tc.wantH, tc.wantX, tc.wantY)
			}
		})
	}
}

package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	scicam "github.com/visiona/scicam"
	"github.com/visiona/scicam/driver"
)

const (
	// fpsStabilityThreshold is the maximum allowed FPS standard deviation
	// as a fraction of mean FPS.
	fpsStabilityThreshold = 0.15

	// jitterStabilityThreshold is the maximum allowed mean jitter as a
	// fraction of the expected inter-frame interval.
	jitterStabilityThreshold = 0.20
)

// benchStats summarizes a frame-rate benchmark run.
type benchStats struct {
	FramesReceived int
	BytesReceived  uint64
	Timeouts       int
	Duration       time.Duration
	FPSMean        float64
	FPSStdDev      float64
	FPSMin         float64
	FPSMax         float64
	JitterMean     float64
	JitterMax      float64
	IsStable       bool
}

// runBench starts an acquisition, fetches frames for the given duration
// and reports delivery-rate statistics. An interrupt signal ends the
// run early; the stats then cover what was measured so far.
func runBench(cam *scicam.Camera, duration, timeout time.Duration, sigChan <-chan os.Signal) error {
	fmt.Printf("Running benchmark (%s) to measure frame delivery...\n", duration)

	acq, err := cam.StartAcquisition()
	if err != nil {
		return fmt.Errorf("failed to start acquisition: %w", err)
	}

	var (
		frameTimes []time.Time
		bytesTotal uint64
		timeouts   int
	)

	start := time.Now()
	deadline := start.Add(duration)

bench:
	for time.Now().Before(deadline) {
		select {
		case <-sigChan:
			fmt.Printf("\nInterrupted, reporting partial results...\n")
			break bench
		default:
		}

		// Never wait past the benchmark deadline
		wait := timeout
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
		if wait <= 0 {
			break
		}

		frame, err := acq.NextFrame(wait)
		if err != nil {
			if driver.IsTimeout(err) {
				timeouts++
				continue
			}
			acq.Close()
			return fmt.Errorf("frame fetch failed: %w", err)
		}

		frameTimes = append(frameTimes, time.Now())
		if data, ok := frame.Bytes(); ok {
			bytesTotal += uint64(len(data))
		}
	}

	elapsed := time.Since(start)
	if _, err := acq.StopAcquisition(); err != nil {
		slog.Error("Error stopping acquisition", "error", err)
		acq.Close()
	}

	stats := calculateRateStats(frameTimes, elapsed)
	stats.BytesReceived = bytesTotal
	stats.Timeouts = timeouts
	printBenchStats(stats)
	return nil
}

// calculateRateStats derives FPS and jitter statistics from frame
// arrival timestamps.
//
// This function:
//  1. Calculates mean FPS over the whole run
//  2. Calculates instantaneous FPS for each frame interval
//  3. Finds min/max instantaneous FPS and their standard deviation
//  4. Calculates jitter (deviation from the expected inter-frame interval)
//  5. Determines stability (stddev < 15% of mean AND jitter < 20%)
func calculateRateStats(frameTimes []time.Time, totalDuration time.Duration) benchStats {
	n := len(frameTimes)
	stats := benchStats{
		FramesReceived: n,
		Duration:       totalDuration,
	}
	if n == 0 || totalDuration <= 0 {
		return stats
	}

	stats.FPSMean = float64(n) / totalDuration.Seconds()

	// Instantaneous FPS per interval
	instantaneous := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		interval := frameTimes[i].Sub(frameTimes[i-1]).Seconds()
		if interval > 0 {
			instantaneous = append(instantaneous, 1.0/interval)
		}
	}
	if len(instantaneous) == 0 {
		return stats
	}

	stats.FPSMin = instantaneous[0]
	stats.FPSMax = instantaneous[0]
	var sumSquares float64
	for _, fps := range instantaneous {
		if fps < stats.FPSMin {
			stats.FPSMin = fps
		}
		if fps > stats.FPSMax {
			stats.FPSMax = fps
		}
		diff := fps - stats.FPSMean
		sumSquares += diff * diff
	}
	stats.FPSStdDev = math.Sqrt(sumSquares / float64(len(instantaneous)))

	// Jitter = deviation from the expected inter-frame interval
	expectedInterval := 1.0 / stats.FPSMean
	var jitterSum float64
	for i := 1; i < n; i++ {
		actual := frameTimes[i].Sub(frameTimes[i-1]).Seconds()
		jitter := math.Abs(actual - expectedInterval)
		jitterSum += jitter
		if jitter > stats.JitterMax {
			stats.JitterMax = jitter
		}
	}
	stats.JitterMean = jitterSum / float64(n-1)

	fpsStable := stats.FPSStdDev < stats.FPSMean*fpsStabilityThreshold
	jitterStable := stats.JitterMean < expectedInterval*jitterStabilityThreshold
	stats.IsStable = fpsStable && jitterStable
	return stats
}

// printBenchStats prints the benchmark result box.
func printBenchStats(stats benchStats) {
	fmt.Printf("\n")
	fmt.Printf("╭─────────────────────────────────────────────────────────╮\n")
	fmt.Printf("│ Benchmark Complete\n")
	fmt.Printf("├─────────────────────────────────────────────────────────┤\n")
	fmt.Printf("│ Frames Received:    %6d frames\n", stats.FramesReceived)
	fmt.Printf("│ Data Received:      %6.2f MB\n", float64(stats.BytesReceived)/1024/1024)
	fmt.Printf("│ Frame Timeouts:     %6d\n", stats.Timeouts)
	fmt.Printf("│ Duration:           %6.1f seconds\n", stats.Duration.Seconds())
	fmt.Printf("│ FPS Mean:           %6.2f fps\n", stats.FPSMean)
	fmt.Printf("│ FPS StdDev:         %6.2f fps\n", stats.FPSStdDev)
	fmt.Printf("│ FPS Range:          %6.1f - %.1f fps\n", stats.FPSMin, stats.FPSMax)
	fmt.Printf("│ Jitter Mean:        %6.3f s\n", stats.JitterMean)
	fmt.Printf("│ Jitter Max:         %6.3f s\n", stats.JitterMax)
	fmt.Printf("│ Stable:             %6v\n", stats.IsStable)
	fmt.Printf("╰─────────────────────────────────────────────────────────╯\n")
	fmt.Printf("\n")

	if !stats.IsStable && stats.FramesReceived > 0 {
		fmt.Printf("⚠️  WARNING: Frame delivery is unstable (high FPS variance or jitter)\n\n")
	}
}

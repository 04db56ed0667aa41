package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	scicam "github.com/visiona/scicam"
	"github.com/visiona/scicam/driver"
	"github.com/visiona/scicam/gstcam"
	"github.com/visiona/scicam/profile"
	"github.com/visiona/scicam/sim"
)

// Version information
const version = "v0.1.0"

func main() {
	// Parse command-line flags
	driverName := flag.String("driver", "sim", "Device backend: sim, gst")
	deviceIndex := flag.Int("device", 0, "Device index to open")
	listDevices := flag.Bool("list", false, "List devices and exit")
	profilePath := flag.String("profile", "", "YAML settings profile to apply before capture")
	lenient := flag.Bool("lenient", false, "Skip profile settings the device does not support")
	exposure := flag.Float64("exposure", 0, "Exposure time in microseconds (0 = leave unchanged)")
	gain := flag.Float64("gain", -1, "Gain in dB (-1 = leave unchanged)")
	format := flag.String("format", "", "Pixel format: mono8, mono16, rgb24, rgb32, raw8, raw16")
	roi := flag.String("roi", "", "Capture region as WxH or WxH+X+Y (e.g. 640x480+100+50)")
	maxFrames := flag.Int("frames", 10, "Frames to capture (0 = until interrupted)")
	timeout := flag.Duration("timeout", 5*time.Second, "Per-frame wait timeout")
	outputDir := flag.String("output", "", "Directory to save captured frames (optional)")
	outputFormat := flag.String("img-format", "png", "Saved image format: png, jpeg")
	jpegQuality := flag.Int("jpeg-quality", 90, "JPEG quality (1-100, only for jpeg format)")
	benchFor := flag.Duration("bench", 0, "Run a frame-rate benchmark for this long instead of capturing")
	limitMBps := flag.Int("limit-bandwidth", 0, "Open with a manual transport budget in MB/s (0 = automatic)")
	simDevices := flag.Int("sim-devices", 1, "Number of simulated devices (sim driver only)")
	gstTestSource := flag.Bool("gst-test-source", false, "Use the synthetic test source instead of /dev/video* (gst driver only)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("camctl %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Create the device backend
	drv, err := newDriver(*driverName, *simDevices, *gstTestSource)
	if err != nil {
		log.Fatalf("Failed to create %s driver: %v", *driverName, err)
	}

	// List mode: enumerate and exit
	if *listDevices {
		if err := printDeviceList(drv); err != nil {
			log.Fatalf("Failed to list devices: %v", err)
		}
		return
	}

	// Validate output format
	if *outputFormat != "png" && *outputFormat != "jpeg" {
		log.Fatalf("Invalid image format: %s (must be png or jpeg)", *outputFormat)
	}

	// Print banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║              camctl - Camera Capture Tool                 ║\n")
	fmt.Printf("║                      Version %s                        ║\n", version)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Driver:        %s\n", *driverName)
	fmt.Printf("  Device:        %d\n", *deviceIndex)
	if *profilePath != "" {
		fmt.Printf("  Profile:       %s\n", *profilePath)
	}
	if *outputDir != "" {
		fmt.Printf("  Output Dir:    %s (%s)\n", *outputDir, *outputFormat)
	} else {
		fmt.Printf("  Output Dir:    (none - frames not saved)\n")
	}
	if *benchFor > 0 {
		fmt.Printf("  Mode:          benchmark (%s)\n", *benchFor)
	} else if *maxFrames > 0 {
		fmt.Printf("  Max Frames:    %d\n", *maxFrames)
	} else {
		fmt.Printf("  Max Frames:    unlimited\n")
	}
	fmt.Printf("\n")

	// Open the camera
	var cam *scicam.Camera
	if *limitMBps > 0 {
		cam, err = scicam.OpenManualBandwidth(drv, *deviceIndex, int32(*limitMBps))
	} else {
		cam, err = scicam.Open(drv, *deviceIndex)
	}
	if err != nil {
		log.Fatalf("Failed to open device %d: %v", *deviceIndex, err)
	}
	defer cam.Close()

	// Apply settings: profile first, then flag overrides
	if *profilePath != "" {
		p, err := profile.Load(*profilePath)
		if err != nil {
			log.Fatalf("Failed to load profile: %v", err)
		}
		if err := profile.Apply(cam, p, profile.Options{IgnoreUnsupported: *lenient}); err != nil {
			log.Fatalf("Failed to apply profile %q: %v", p.Name, err)
		}
	}
	if err := applyFlags(cam, *format, *roi, *exposure, *gain); err != nil {
		log.Fatalf("Failed to apply settings: %v", err)
	}

	printCameraInfo(cam)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Benchmark mode runs the acquisition itself
	if *benchFor > 0 {
		if err := runBench(cam, *benchFor, *timeout, sigChan); err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
		return
	}

	// Create frame saver if output directory specified
	var saver *FrameSaver
	if *outputDir != "" {
		saver, err = NewFrameSaver(*outputDir, *outputFormat, *jpegQuality)
		if err != nil {
			log.Fatalf("Failed to create frame saver: %v", err)
		}
		slog.Info("Frame saving enabled",
			"directory", *outputDir,
			"format", *outputFormat,
		)
	}

	// Start acquisition
	slog.Info("Starting acquisition...")
	acq, err := cam.StartAcquisition()
	if err != nil {
		log.Fatalf("Failed to start acquisition: %v", err)
	}

	fmt.Printf("Starting frame capture...\n")
	fmt.Printf("Press Ctrl+C to stop gracefully\n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n\n")

	startTime := time.Now()
	frameCount := 0
	timeouts := 0

capture:
	for *maxFrames == 0 || frameCount < *maxFrames {
		select {
		case <-sigChan:
			fmt.Printf("\n\nReceived interrupt signal, shutting down...\n")
			break capture
		default:
		}

		frame, err := acq.NextFrame(*timeout)
		if err != nil {
			if driver.IsTimeout(err) {
				timeouts++
				slog.Warn("Frame wait timed out", "timeout", *timeout)
				continue
			}
			slog.Error("Frame fetch failed", "error", err)
			break capture
		}

		frameCount++

		// Log frame arrival (compact format)
		fmt.Printf("[%s] Frame #%-6d | Num: %-8d | %dx%d %-6s | %6.1f KB | Trace: %s\n",
			time.Now().Format("15:04:05"),
			frameCount,
			frame.FrameNumber(),
			frame.Width(),
			frame.Height(),
			frame.Format(),
			frameKB(frame),
			frame.TraceID(),
		)

		// Save frame if output directory specified
		if saver != nil {
			if err := saver.SaveFrame(frame); err != nil {
				slog.Error("Failed to save frame", "error", err, "frame", frame.FrameNumber())
			}
		}
	}

	slog.Info("Stopping acquisition...")
	stats := acq.Stats()
	if _, err := acq.StopAcquisition(); err != nil {
		slog.Error("Error stopping acquisition", "error", err)
		if err := acq.Close(); err != nil {
			slog.Error("Error closing device", "error", err)
		}
	}

	printFinalStats(time.Since(startTime), stats, saver, timeouts)
}

// newDriver builds the requested backend.
func newDriver(name string, simDevices int, gstTestSource bool) (driver.Driver, error) {
	switch name {
	case "sim":
		return sim.New(sim.Config{Devices: simDevices})
	case "gst":
		return gstcam.New(gstcam.Config{UseTestSource: gstTestSource})
	default:
		return nil, fmt.Errorf("unknown driver %q (must be sim or gst)", name)
	}
}

// printDeviceList enumerates devices, probing each for its identity.
func printDeviceList(drv driver.Driver) error {
	n, err := scicam.DeviceCount(drv)
	if err != nil {
		return err
	}
	fmt.Printf("%d device(s) found\n", n)
	for i := 0; i < n; i++ {
		cam, err := scicam.Open(drv, i)
		if err != nil {
			fmt.Printf("  [%d] (unavailable: %v)\n", i, err)
			continue
		}
		name, _ := cam.DeviceName()
		serial, _ := cam.SerialNumber()
		fmt.Printf("  [%d] %-20s sn=%s\n", i, name, serial)
		cam.Close()
	}
	return nil
}

// applyFlags writes the individual setting flags to the camera.
// Zero values mean "leave the device as it is".
func applyFlags(cam *scicam.Camera, format, roi string, exposure, gain float64) error {
	if format != "" {
		f, err := driver.ParsePixelFormat(format)
		if err != nil {
			return err
		}
		if err := cam.SetImageFormat(f); err != nil {
			return fmt.Errorf("set format: %w", err)
		}
	}
	if roi != "" {
		r, err := parseRoi(roi)
		if err != nil {
			return err
		}
		actual, err := cam.SetRoi(r)
		if err != nil {
			return fmt.Errorf("set roi: %w", err)
		}
		if actual != r {
			slog.Info("ROI rounded to device grid",
				"requested", fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.OffsetX, r.OffsetY),
				"actual", fmt.Sprintf("%dx%d+%d+%d", actual.Width, actual.Height, actual.OffsetX, actual.OffsetY),
			)
		}
	}
	if exposure > 0 {
		if err := cam.SetExposure(float32(exposure)); err != nil {
			return fmt.Errorf("set exposure: %w", err)
		}
	}
	if gain >= 0 {
		if err := cam.SetGain(float32(gain)); err != nil {
			return fmt.Errorf("set gain: %w", err)
		}
	}
	return nil
}

// parseRoi parses "WxH" or "WxH+X+Y".
func parseRoi(s string) (scicam.Roi, error) {
	var r scicam.Roi
	n, err := fmt.Sscanf(s, "%dx%d+%d+%d", &r.Width, &r.Height, &r.OffsetX, &r.OffsetY)
	if err != nil && n < 2 {
		return scicam.Roi{}, fmt.Errorf("invalid roi %q (expected WxH or WxH+X+Y)", s)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return scicam.Roi{}, fmt.Errorf("invalid roi %q: width and height must be positive", s)
	}
	return r, nil
}

// printCameraInfo prints the device identity and current settings.
func printCameraInfo(cam *scicam.Camera) {
	name, _ := cam.DeviceName()
	serial, _ := cam.SerialNumber()
	format, _ := cam.ImageFormat()
	roi, err := cam.Roi()
	exposure, _ := cam.Exposure()
	gainDB, _ := cam.Gain()
	trigger, _ := cam.TriggerSource()

	fmt.Printf("Device:\n")
	fmt.Printf("  Name:          %s\n", name)
	fmt.Printf("  Serial:        %s\n", serial)
	fmt.Printf("  Format:        %s\n", format)
	if err == nil {
		fmt.Printf("  Region:        %dx%d+%d+%d\n", roi.Width, roi.Height, roi.OffsetX, roi.OffsetY)
	}
	fmt.Printf("  Exposure:      %.0f µs\n", exposure)
	fmt.Printf("  Gain:          %.1f dB\n", gainDB)
	fmt.Printf("  Trigger:       %s\n", trigger)
	fmt.Printf("\n")
}

// frameKB returns the frame payload size in kilobytes, 0 when the
// buffer is no longer accessible.
func frameKB(f *scicam.Frame) float64 {
	data, ok := f.Bytes()
	if !ok {
		return 0
	}
	return float64(len(data)) / 1024
}

// printFinalStats prints the acquisition summary at shutdown.
func printFinalStats(uptime time.Duration, stats scicam.AcqStats, saver *FrameSaver, timeouts int) {
	fmt.Printf("\n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("                     Final Statistics                      \n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("  Total Uptime:       %s\n", uptime.Round(time.Millisecond))
	fmt.Printf("  Frames Fetched:     %d frames\n", stats.FramesFetched)
	fmt.Printf("  Bytes Fetched:      %.2f MB\n", float64(stats.BytesFetched)/1024/1024)
	fmt.Printf("  Frame Timeouts:     %d\n", timeouts)
	if stats.FetchErrors > 0 {
		fmt.Printf("  Fetch Errors:       %d\n", stats.FetchErrors)
	}
	if uptime.Seconds() > 0 {
		fmt.Printf("  Average FPS:        %.2f fps\n", float64(stats.FramesFetched)/uptime.Seconds())
	}
	if saver != nil {
		saved, dropped := saver.Stats()
		fmt.Printf("  Frames Saved:       %d frames\n", saved)
		if dropped > 0 {
			fmt.Printf("  Save Drops:         %d frames\n", dropped)
		}
	}
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("\n")
}

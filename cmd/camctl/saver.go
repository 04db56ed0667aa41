package main

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"

	scicam "github.com/visiona/scicam"
)

// FrameSaver writes frames to disk (optional feature).
//
// Frames go through the package image conversion, so every viewable
// pixel format saves: mono frames come out grayscale, color frames RGBA.
// Thread-safe: can be called from multiple goroutines concurrently.
type FrameSaver struct {
	outputDir     string
	format        string
	jpegQuality   int
	framesSaved   atomic.Uint64
	framesDropped atomic.Uint64
}

// NewFrameSaver creates a frame saver with given output directory and format.
//
// Format: "png" or "jpeg"
// JPEGQuality: 1-100 (only used for JPEG)
func NewFrameSaver(outputDir, format string, jpegQuality int) (*FrameSaver, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Validate format
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("unsupported format: %s (must be png or jpeg)", format)
	}

	return &FrameSaver{
		outputDir:   outputDir,
		format:      format,
		jpegQuality: jpegQuality,
	}, nil
}

// SaveFrame saves a frame to disk as PNG or JPEG.
//
// Filename format: frame_{num:06d}_{timestamp}.{ext}
// Example: frame_000042_20251105_234517.123.png
//
// Must be called while the frame's buffer is still valid, before the
// next fetch on the same acquisition.
func (fs *FrameSaver) SaveFrame(frame *scicam.Frame) error {
	img, err := scicam.ToImage(frame)
	if err != nil {
		fs.framesDropped.Add(1)
		return fmt.Errorf("image conversion failed: %w", err)
	}

	// Generate filename
	filename := fmt.Sprintf("frame_%06d_%s.%s",
		frame.FrameNumber(),
		frame.Timestamp().Format("20060102_150405.000"),
		fs.format)
	path := filepath.Join(fs.outputDir, filename)

	// Create output file
	file, err := os.Create(path)
	if err != nil {
		fs.framesDropped.Add(1)
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// Encode based on format
	switch fs.format {
	case "png":
		if err := png.Encode(file, img); err != nil {
			fs.framesDropped.Add(1)
			return fmt.Errorf("PNG encode failed: %w", err)
		}
	case "jpeg":
		if err := jpeg.Encode(file, img, &jpeg.Options{Quality: fs.jpegQuality}); err != nil {
			fs.framesDropped.Add(1)
			return fmt.Errorf("JPEG encode failed: %w", err)
		}
	}

	fs.framesSaved.Add(1)
	return nil
}

// Stats returns current save statistics.
func (fs *FrameSaver) Stats() (saved, dropped uint64) {
	return fs.framesSaved.Load(), fs.framesDropped.Load()
}

// Package gstcam backs the camera driver contract with GStreamer capture
// pipelines: v4l2src for real /dev/video devices, videotestsrc for a
// synthetic source. It supports the parameter subset a generic capture
// device can honor; everything device-specific answers with a
// not-supported error so callers and profiles can degrade cleanly.
//
// Geometry, pixel format and frame rate are fixed while a pipeline runs,
// which lines up with the wrapper locking them during acquisition.
// Exposure and gain writes are stored and echoed in frame metadata, but
// the kernel driver's own exposure control stays in charge of the sensor.
// Frames are always private copies regardless of buffer policy.
package gstcam

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/visiona/scicam/driver"
	"github.com/visiona/scicam/gstcam/internal/gstpipe"
)

const defaultMaxWait = 24 * time.Hour

// Config tunes the backend. The zero value scans /dev/video* and captures
// 640x480 mono at 30 Hz.
type Config struct {
	// UseTestSource swaps real devices for one synthetic videotestsrc.
	UseTestSource bool
	// Pattern is the discovery glob for capture nodes.
	Pattern string
	// Width, Height and FPS set the startup capture geometry.
	Width  int32
	Height int32
	FPS    float32
	// QueueDepth is how many frames may wait between the pipeline and
	// GetImage before new ones are dropped.
	QueueDepth int
}

// Driver implements the camera driver contract over GStreamer pipelines.
type Driver struct {
	cfg Config

	mu         sync.Mutex
	handles    map[driver.Handle]*stream
	nextHandle uint64
}

// stream is the state behind one open handle.
type stream struct {
	mu     sync.Mutex
	device string // capture node path, empty for the synthetic source
	name   string
	serial string

	width       int32
	height      int32
	offsetX     int32
	offsetY     int32
	format      driver.PixelFormat
	fps         float32
	exposure    float32
	gain        float32
	policy      int32
	trigger     int32
	userData    int32
	counterSel  int32
	testPattern int32

	acquiring bool
	elems     *gstpipe.Elements
	frames    chan gstpipe.Sample
	cancel    context.CancelFunc

	seq     atomic.Uint64 // frames pulled from the appsink this acquisition
	bytes   atomic.Uint64
	dropped atomic.Uint64 // frames discarded with the queue full

	lost     atomic.Bool
	lostCode atomic.Int32
	lostCh   chan struct{}
}

// New validates cfg and returns a driver. No devices are touched until
// DeviceCount or Open.
func New(cfg Config) (*Driver, error) {
	if cfg.Width < 0 || cfg.Height < 0 {
		return nil, errors.New("gstcam: negative capture geometry")
	}
	if cfg.QueueDepth < 0 {
		return nil, errors.New("gstcam: negative queue depth")
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "/dev/video*"
	}
	if cfg.Width == 0 {
		cfg.Width = 640
	}
	if cfg.Height == 0 {
		cfg.Height = 480
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = 4
	}
	return &Driver{
		cfg:     cfg,
		handles: make(map[driver.Handle]*stream),
	}, nil
}

// DeviceCount reports how many capture nodes are present right now. The
// synthetic source always counts one device.
func (d *Driver) DeviceCount() (int, error) {
	if d.cfg.UseTestSource {
		return 1, nil
	}
	devices, err := scanDevices(d.cfg.Pattern)
	if err != nil {
		slog.Error("gstcam: device scan failed", "pattern", d.cfg.Pattern, "error", err)
		return 0, driver.NewError(driver.CodeInternal, "device_count")
	}
	return len(devices), nil
}

func (d *Driver) Open(index int) (driver.Handle, error) {
	var s *stream
	if d.cfg.UseTestSource {
		if index != 0 {
			return 0, driver.NewError(driver.CodeInvalidArg, "open")
		}
		s = d.newStream("", "videotestsrc", "testsrc0")
	} else {
		devices, err := scanDevices(d.cfg.Pattern)
		if err != nil {
			slog.Error("gstcam: device scan failed", "pattern", d.cfg.Pattern, "error", err)
			return 0, driver.NewError(driver.CodeInternal, "open")
		}
		if index < 0 || index >= len(devices) {
			return 0, driver.NewError(driver.CodeInvalidArg, "open")
		}
		path := devices[index]
		s = d.newStream(path, deviceName(path), path)
	}

	d.mu.Lock()
	d.nextHandle++
	h := driver.Handle(d.nextHandle)
	d.handles[h] = s
	d.mu.Unlock()

	slog.Info("gstcam: device opened", "device", s.serial, "name", s.name)
	return h, nil
}

func (d *Driver) newStream(device, name, serial string) *stream {
	return &stream{
		device:   device,
		name:     name,
		serial:   serial,
		width:    d.cfg.Width,
		height:   d.cfg.Height,
		format:   driver.FormatMono8,
		fps:      d.cfg.FPS,
		exposure: 10000,
	}
}

func (d *Driver) Close(h driver.Handle) error {
	d.mu.Lock()
	s, ok := d.handles[h]
	if ok {
		delete(d.handles, h)
	}
	d.mu.Unlock()
	if !ok {
		return driver.NewError(driver.CodeInvalidHandle, "close")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquiring {
		if err := s.stopLocked(); err != nil {
			slog.Warn("gstcam: teardown on close failed", "device", s.serial, "error", err)
		}
	}
	slog.Info("gstcam: device closed", "device", s.serial)
	return nil
}

func (d *Driver) stream(h driver.Handle, op string) (*stream, error) {
	d.mu.Lock()
	s, ok := d.handles[h]
	d.mu.Unlock()
	if !ok {
		return nil, driver.NewError(driver.CodeInvalidHandle, op)
	}
	return s, nil
}

func (d *Driver) StartAcquisition(h driver.Handle) error {
	s, err := d.stream(h, "start_acquisition")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquiring {
		return driver.NewError(driver.CodeAcquisitionActive, "start_acquisition")
	}

	format, ok := gstFormat(s.format)
	if !ok {
		return driver.NewParamError(driver.CodeNotSupported, "start_acquisition", "image_format")
	}
	elems, err := gstpipe.Build(gstpipe.Config{
		Device:      s.device,
		Width:       int(s.width),
		Height:      int(s.height),
		FPS:         float64(s.fps),
		Format:      format,
		TestPattern: testsrcPattern(s.testPattern),
	})
	if err != nil {
		slog.Error("gstcam: pipeline build failed", "device", s.serial, "error", err)
		return driver.NewError(driver.CodeInternal, "start_acquisition")
	}

	s.seq.Store(0)
	s.bytes.Store(0)
	s.dropped.Store(0)
	s.lost.Store(false)
	s.lostCh = make(chan struct{})
	s.frames = make(chan gstpipe.Sample, d.cfg.QueueDepth)

	cbCtx := &gstpipe.Context{
		Frames:      s.frames,
		Transported: &s.seq,
		Bytes:       &s.bytes,
		Dropped:     &s.dropped,
	}
	elems.Sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			return gstpipe.OnSample(sink, cbCtx)
		},
	})

	if err := elems.Pipeline.SetState(gst.StatePlaying); err != nil {
		_ = gstpipe.Destroy(elems)
		slog.Error("gstcam: pipeline start failed", "device", s.serial, "error", err)
		return driver.NewError(driver.CodeInternal, "start_acquisition")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.watch(ctx, elems.Pipeline)

	s.elems = elems
	s.acquiring = true
	slog.Info("gstcam: acquisition started",
		"device", s.serial, "width", s.width, "height", s.height,
		"format", s.format.String(), "fps", s.fps)
	return nil
}

// watch runs the bus supervisor for one acquisition and marks the stream
// lost when the pipeline dies underneath it.
func (s *stream) watch(ctx context.Context, pipeline *gst.Pipeline) {
	err := gstpipe.WatchBus(ctx, pipeline)
	if err == nil {
		return
	}
	code := driver.CodeInternal
	var busErr *gstpipe.BusError
	if errors.As(err, &busErr) {
		code = categoryCode(busErr.Category)
	}
	s.markLost(code)
}

func (s *stream) markLost(code driver.Code) {
	if s.lost.CompareAndSwap(false, true) {
		s.lostCode.Store(int32(code))
		close(s.lostCh)
		slog.Warn("gstcam: device lost", "device", s.serial, "code", code.String())
	}
}

func categoryCode(c gstpipe.Category) driver.Code {
	switch c {
	case gstpipe.CategoryBusy:
		return driver.CodeDeviceBusy
	case gstpipe.CategoryLost:
		return driver.CodeDeviceLost
	case gstpipe.CategoryCaps:
		return driver.CodeNotSupported
	default:
		return driver.CodeInternal
	}
}

func (d *Driver) StopAcquisition(h driver.Handle) error {
	s, err := d.stream(h, "stop_acquisition")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acquiring {
		return nil
	}
	return s.stopLocked()
}

// stopLocked tears the pipeline down. On failure the stream stays in the
// acquiring state so the caller can retry.
func (s *stream) stopLocked() error {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if err := gstpipe.Destroy(s.elems); err != nil {
		slog.Error("gstcam: pipeline teardown failed", "device", s.serial, "error", err)
		return driver.NewError(driver.CodeInternal, "stop_acquisition")
	}
	s.elems = nil
	s.acquiring = false
	for len(s.frames) > 0 {
		<-s.frames
	}
	slog.Info("gstcam: acquisition stopped",
		"device", s.serial, "frames", s.seq.Load(), "dropped", s.dropped.Load())
	return nil
}

func (d *Driver) GetImage(h driver.Handle, timeout time.Duration) (driver.Image, error) {
	s, err := d.stream(h, "get_image")
	if err != nil {
		return driver.Image{}, err
	}

	s.mu.Lock()
	if !s.acquiring {
		s.mu.Unlock()
		return driver.Image{}, driver.NewError(driver.CodeAcquisitionStopped, "get_image")
	}
	frames, lostCh := s.frames, s.lostCh
	width, height := s.width, s.height
	format := s.format
	exposure, gain := s.exposure, s.gain
	userData := s.userData
	offX, offY := s.offsetX, s.offsetY
	s.mu.Unlock()

	if s.lost.Load() {
		return driver.Image{}, driver.NewError(driver.Code(s.lostCode.Load()), "get_image")
	}

	wait := timeout
	if wait <= 0 {
		wait = defaultMaxWait
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case smp := <-frames:
		return driver.Image{
			Data:           smp.Data,
			BytesTotal:     uint32(len(smp.Data)),
			Width:          uint32(width),
			Height:         uint32(height),
			PaddingX:       uint32(rowPadding(len(smp.Data), int(width), int(height), format.BytesPerPixel())),
			Format:         format,
			FrameNumber:    uint32(smp.Seq),
			TsSec:          uint32(smp.At.Unix()),
			TsUSec:         uint32(smp.At.Nanosecond() / 1000),
			ExposureTimeUs: uint32(exposure),
			GainDB:         gain,
			AbsOffsetX:     uint32(offX),
			AbsOffsetY:     uint32(offY),
			UserData:       uint32(userData),
		}, nil
	case <-lostCh:
		return driver.Image{}, driver.NewError(driver.Code(s.lostCode.Load()), "get_image")
	case <-timer.C:
		return driver.Image{}, driver.NewError(driver.CodeTimeout, "get_image")
	}
}

func (d *Driver) GetParamInt(h driver.Handle, key string) (int32, error) {
	if h == driver.Global {
		return 0, globalParamErr("get_param", key)
	}
	s, err := d.stream(h, "get_param")
	if err != nil {
		return 0, err
	}
	return s.getInt(key)
}

func (d *Driver) SetParamInt(h driver.Handle, key string, value int32) error {
	if h == driver.Global {
		return globalParamErr("set_param", key)
	}
	s, err := d.stream(h, "set_param")
	if err != nil {
		return err
	}
	return s.setInt(key, value)
}

func (d *Driver) GetParamFloat(h driver.Handle, key string) (float32, error) {
	if h == driver.Global {
		return 0, globalParamErr("get_param", key)
	}
	s, err := d.stream(h, "get_param")
	if err != nil {
		return 0, err
	}
	return s.getFloat(key)
}

func (d *Driver) SetParamFloat(h driver.Handle, key string, value float32) error {
	if h == driver.Global {
		return globalParamErr("set_param", key)
	}
	s, err := d.stream(h, "set_param")
	if err != nil {
		return err
	}
	return s.setFloat(key, value)
}

func (d *Driver) GetParamString(h driver.Handle, key string) (string, error) {
	if h == driver.Global {
		return "", globalParamErr("get_param", key)
	}
	s, err := d.stream(h, "get_param")
	if err != nil {
		return "", err
	}
	return s.getString(key)
}

// globalParamErr answers driver-global parameter access. GStreamer has no
// driver-wide registers, so known globals are unsupported here.
func globalParamErr(op, key string) error {
	switch key {
	case "auto_bandwidth_calculation", "debug_level":
		return driver.NewParamError(driver.CodeNotSupported, op, key)
	default:
		return driver.NewParamError(driver.CodeUnknownParam, op, key)
	}
}

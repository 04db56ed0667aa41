package scicam_test

import (
	"testing"
	"time"

	"github.com/visiona/scicam"
	"github.com/visiona/scicam/driver"
	"github.com/visiona/scicam/sim"
)

func startAcq(t *testing.T, cam *scicam.Camera) *scicam.Acquisition {
	t.Helper()
	acq, err := cam.StartAcquisition()
	if err != nil {
		t.Fatalf("StartAcquisition() error: %v", err)
	}
	return acq
}

func TestAcquisition_EndToEnd(t *testing.T) {
	drv := newSim(t, sim.Config{})
	cam := openCam(t, drv)

	if err := cam.SetExposure(10000); err != nil {
		t.Fatalf("SetExposure() error: %v", err)
	}
	acq := startAcq(t, cam)

	frame, err := acq.NextFrame(5 * time.Second)
	if err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}
	roi, err := acq.ParamInt(scicam.ParamWidth)
	if err != nil {
		t.Fatalf("ParamInt(width) error: %v", err)
	}
	if int32(frame.Width()) != roi {
		t.Errorf("frame width = %d, want roi width %d", frame.Width(), roi)
	}
	if frame.Height() != 1024 {
		t.Errorf("frame height = %d, want 1024", frame.Height())
	}
	if frame.FrameNumber() != 1 {
		t.Errorf("FrameNumber() = %d, want 1", frame.FrameNumber())
	}
	if frame.ExposureTime() != 10*time.Millisecond {
		t.Errorf("ExposureTime() = %v, want 10ms", frame.ExposureTime())
	}
	if frame.TraceID() == "" {
		t.Error("TraceID() empty")
	}

	cam, err = acq.StopAcquisition()
	if err != nil {
		t.Fatalf("StopAcquisition() error: %v", err)
	}
	if err := cam.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}

func TestAcquisition_LocksCameraMutators(t *testing.T) {
	cam := openCam(t, newSim(t, sim.Config{}))
	acq := startAcq(t, cam)
	defer acq.Close()

	if err := cam.SetWidth(640); driver.CodeOf(err) != driver.CodeAcquisitionActive {
		t.Errorf("SetWidth while streaming: code = %v, want CodeAcquisitionActive", driver.CodeOf(err))
	}
	if err := cam.SetImageFormat(driver.FormatRaw8); driver.CodeOf(err) != driver.CodeAcquisitionActive {
		t.Errorf("SetImageFormat while streaming: code = %v, want CodeAcquisitionActive", driver.CodeOf(err))
	}
	if err := cam.SetExposure(5000); driver.CodeOf(err) != driver.CodeAcquisitionActive {
		t.Errorf("Camera.SetExposure while streaming: code = %v, want CodeAcquisitionActive", driver.CodeOf(err))
	}
	if err := cam.Close(); driver.CodeOf(err) != driver.CodeAcquisitionActive {
		t.Errorf("Close while streaming: code = %v, want CodeAcquisitionActive", driver.CodeOf(err))
	}

	// read-only queries stay legal
	if _, err := cam.Exposure(); err != nil {
		t.Errorf("Exposure read while streaming: %v, want nil", err)
	}
	if _, err := cam.Roi(); err != nil {
		t.Errorf("Roi read while streaming: %v, want nil", err)
	}
}

func TestAcquisition_LiveSetters(t *testing.T) {
	cam := openCam(t, newSim(t, sim.Config{}))
	acq := startAcq(t, cam)
	defer acq.Close()

	if err := acq.SetExposure(5000); err != nil {
		t.Fatalf("SetExposure() error: %v", err)
	}
	got, err := acq.Exposure()
	if err != nil {
		t.Fatalf("Exposure() error: %v", err)
	}
	if diff := got - 5000; diff > 20 || diff < -20 {
		t.Errorf("Exposure() = %v, want within 20 of 5000", got)
	}

	if err := acq.SetGain(2); err != nil {
		t.Fatalf("SetGain() error: %v", err)
	}
	if gain, _ := acq.Gain(); gain != 2 {
		t.Errorf("Gain() = %v, want 2", gain)
	}

	frame, err := acq.NextFrame(time.Second)
	if err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}
	if frame.ExposureTime() != 5*time.Millisecond {
		t.Errorf("frame exposure = %v after live set, want 5ms", frame.ExposureTime())
	}
}

func TestAcquisition_StopReturnsSameCamera(t *testing.T) {
	cam := openCam(t, newSim(t, sim.Config{}))
	acq := startAcq(t, cam)

	back, err := acq.StopAcquisition()
	if err != nil {
		t.Fatalf("StopAcquisition() error: %v", err)
	}
	if back != cam {
		t.Error("StopAcquisition() returned a different Camera value")
	}
	if err := back.SetWidth(640); err != nil {
		t.Errorf("SetWidth after stop: %v, want nil", err)
	}

	if _, err := acq.NextFrame(time.Second); driver.CodeOf(err) != driver.CodeAcquisitionStopped {
		t.Errorf("NextFrame after stop: code = %v, want CodeAcquisitionStopped", driver.CodeOf(err))
	}
	if _, err := acq.StopAcquisition(); driver.CodeOf(err) != driver.CodeAcquisitionStopped {
		t.Errorf("second stop: code = %v, want CodeAcquisitionStopped", driver.CodeOf(err))
	}
	if err := acq.SetExposure(1000); driver.CodeOf(err) != driver.CodeAcquisitionStopped {
		t.Errorf("live set after stop: code = %v, want CodeAcquisitionStopped", driver.CodeOf(err))
	}
	if err := back.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}

func TestAcquisition_StartFailureLeavesCameraConfigurable(t *testing.T) {
	drv := newSim(t, sim.Config{})
	cam := openCam(t, drv)
	defer cam.Close()

	drv.InjectFault("start_acquisition", 0, driver.CodeDeviceBusy)
	_, err := cam.StartAcquisition()
	if driver.CodeOf(err) != driver.CodeDeviceBusy {
		t.Fatalf("StartAcquisition() code = %v, want CodeDeviceBusy", driver.CodeOf(err))
	}

	// the failed transition consumed nothing
	if err := cam.SetExposure(2000); err != nil {
		t.Errorf("SetExposure after failed start: %v, want nil", err)
	}
	acq, err := cam.StartAcquisition()
	if err != nil {
		t.Fatalf("retry StartAcquisition() error: %v", err)
	}
	if _, err := acq.NextFrame(time.Second); err != nil {
		t.Errorf("NextFrame after retry: %v", err)
	}
	if _, err := acq.StopAcquisition(); err != nil {
		t.Fatalf("StopAcquisition() error: %v", err)
	}
}

func TestAcquisition_StopFailureKeepsStreaming(t *testing.T) {
	drv := newSim(t, sim.Config{})
	cam := openCam(t, drv)
	acq := startAcq(t, cam)

	drv.InjectFault("stop_acquisition", 0, driver.CodeDeviceLost)
	_, err := acq.StopAcquisition()
	if driver.CodeOf(err) != driver.CodeDeviceLost {
		t.Fatalf("StopAcquisition() code = %v, want CodeDeviceLost", driver.CodeOf(err))
	}

	// still streaming: fetches keep working, the camera stays locked
	if _, err := acq.NextFrame(time.Second); err != nil {
		t.Errorf("NextFrame after failed stop: %v, want nil", err)
	}
	if err := cam.SetWidth(640); driver.CodeOf(err) != driver.CodeAcquisitionActive {
		t.Errorf("SetWidth after failed stop: code = %v, want CodeAcquisitionActive", driver.CodeOf(err))
	}

	if cam, err = acq.StopAcquisition(); err != nil {
		t.Fatalf("retry StopAcquisition() error: %v", err)
	}
	if err := cam.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}

func TestNextFrame_PixelsMatchRawData(t *testing.T) {
	cam := openCam(t, newSim(t, sim.Config{}))
	acq := startAcq(t, cam)
	defer acq.Close()

	frame, err := acq.NextFrame(time.Second)
	if err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}
	v := scicam.ViewOf[uint8](frame)

	pixel, ok := v.At(100, 0)
	if !ok {
		t.Fatal("At(100,0) absent")
	}
	data := v.Data()
	if data == nil {
		t.Fatal("Data() = nil")
	}
	if pixel != data[100] {
		t.Errorf("At(100,0) = %d, data[100] = %d, want equal", pixel, data[100])
	}
}

func TestNextFrame_SixteenBitElements(t *testing.T) {
	cam := openCam(t, newSim(t, sim.Config{}))

	if err := cam.SetImageFormat(driver.FormatRaw16); err != nil {
		t.Fatalf("SetImageFormat() error: %v", err)
	}
	if _, err := cam.SetRoi(scicam.Roi{Width: 64, Height: 32}); err != nil {
		t.Fatalf("SetRoi() error: %v", err)
	}
	acq := startAcq(t, cam)
	defer acq.Close()

	frame, err := acq.NextFrame(time.Second)
	if err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}
	v := scicam.ViewOf[uint16](frame)

	data := v.Data()
	if len(data) != 64*32 {
		t.Fatalf("len(Data()) = %d, want %d", len(data), 64*32)
	}
	for _, pt := range [][2]int{{0, 0}, {63, 0}, {0, 31}, {63, 31}, {17, 9}} {
		got, ok := v.At(pt[0], pt[1])
		if !ok {
			t.Fatalf("At(%d,%d) absent", pt[0], pt[1])
		}
		if want := data[pt[1]*64+pt[0]]; got != want {
			t.Errorf("At(%d,%d) = %d, want %d", pt[0], pt[1], got, want)
		}
	}
}

func TestNextFrame_InvalidatesPreviousFrame(t *testing.T) {
	cam := openCam(t, newSim(t, sim.Config{}))
	acq := startAcq(t, cam)
	defer acq.Close()

	first, err := acq.NextFrame(time.Second)
	if err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}
	if !first.Valid() {
		t.Fatal("first frame invalid before refetch")
	}

	second, err := acq.NextFrame(time.Second)
	if err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}

	if first.Valid() {
		t.Error("first frame still valid after refetch")
	}
	if _, ok := scicam.ViewOf[uint8](first).At(0, 0); ok {
		t.Error("pixel access on invalidated frame, want absent")
	}
	if _, ok := scicam.ViewOf[uint8](second).At(0, 0); !ok {
		t.Error("pixel access on fresh frame absent, want present")
	}
}

func TestNextFrame_StopInvalidatesFrames(t *testing.T) {
	cam := openCam(t, newSim(t, sim.Config{}))
	acq := startAcq(t, cam)

	frame, err := acq.NextFrame(time.Second)
	if err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}
	cam, err = acq.StopAcquisition()
	if err != nil {
		t.Fatalf("StopAcquisition() error: %v", err)
	}
	defer cam.Close()

	if frame.Valid() {
		t.Error("frame valid after stop")
	}
	if scicam.ViewOf[uint8](frame).Data() != nil {
		t.Error("Data() accessible after stop, want nil")
	}
}

func TestNextFrame_UserDataEcho(t *testing.T) {
	cam := openCam(t, newSim(t, sim.Config{}))
	if err := cam.SetImageUserData(42); err != nil {
		t.Fatalf("SetImageUserData() error: %v", err)
	}
	acq := startAcq(t, cam)
	defer acq.Close()

	frame, err := acq.NextFrame(time.Second)
	if err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}
	if frame.UserData() != 42 {
		t.Errorf("UserData() = %d, want 42", frame.UserData())
	}

	if err := acq.SetImageUserData(43); err != nil {
		t.Fatalf("live SetImageUserData() error: %v", err)
	}
	frame, err = acq.NextFrame(time.Second)
	if err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}
	if frame.UserData() != 43 {
		t.Errorf("UserData() = %d after live set, want 43", frame.UserData())
	}
}

func TestNextFrame_TimeoutWithoutTrigger(t *testing.T) {
	cam := openCam(t, newSim(t, sim.Config{}))
	if err := cam.SetTriggerSource(scicam.TriggerSoftware); err != nil {
		t.Fatalf("SetTriggerSource() error: %v", err)
	}
	acq := startAcq(t, cam)
	defer acq.Close()

	_, err := acq.NextFrame(30 * time.Millisecond)
	if !driver.IsTimeout(err) {
		t.Fatalf("NextFrame without trigger: %v, want timeout", err)
	}

	if err := acq.SoftwareTrigger(); err != nil {
		t.Fatalf("SoftwareTrigger() error: %v", err)
	}
	frame, err := acq.NextFrame(time.Second)
	if err != nil {
		t.Fatalf("NextFrame after trigger: %v", err)
	}
	if frame.FrameNumber() != 1 {
		t.Errorf("FrameNumber() = %d, want 1", frame.FrameNumber())
	}

	stats := acq.Stats()
	if stats.Timeouts != 1 {
		t.Errorf("Stats().Timeouts = %d, want 1", stats.Timeouts)
	}
	if stats.FramesFetched != 1 {
		t.Errorf("Stats().FramesFetched = %d, want 1", stats.FramesFetched)
	}
}

func TestAcquisition_CloseIsBestEffortTeardown(t *testing.T) {
	drv := newSim(t, sim.Config{})
	cam := openCam(t, drv)
	acq := startAcq(t, cam)

	if _, err := acq.NextFrame(time.Second); err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}
	if err := acq.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := acq.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}

	if drv.Acquiring(0) {
		t.Error("device still acquiring after Close")
	}
	if drv.OpenHandles() != 0 {
		t.Errorf("OpenHandles() = %d after Close, want 0", drv.OpenHandles())
	}
	if err := cam.SetExposure(1000); driver.CodeOf(err) != driver.CodeInvalidHandle {
		t.Errorf("camera use after acquisition Close: code = %v, want CodeInvalidHandle", driver.CodeOf(err))
	}
}

func TestAcquisition_StatsAccumulate(t *testing.T) {
	cam := openCam(t, newSim(t, sim.Config{}))
	acq := startAcq(t, cam)
	defer acq.Close()

	var bytes uint64
	for i := 0; i < 3; i++ {
		frame, err := acq.NextFrame(time.Second)
		if err != nil {
			t.Fatalf("NextFrame() error: %v", err)
		}
		buf, ok := frame.Bytes()
		if !ok {
			t.Fatal("Bytes() absent on fresh frame")
		}
		bytes += uint64(len(buf))
	}

	stats := acq.Stats()
	if stats.FramesFetched != 3 {
		t.Errorf("FramesFetched = %d, want 3", stats.FramesFetched)
	}
	if stats.BytesFetched != bytes {
		t.Errorf("BytesFetched = %d, want %d", stats.BytesFetched, bytes)
	}
	if stats.LastFrameAt.IsZero() {
		t.Error("LastFrameAt zero after fetches")
	}
}

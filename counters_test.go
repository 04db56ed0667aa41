package scicam_test

import (
	"testing"
	"time"

	"github.com/visiona/scicam"
	"github.com/visiona/scicam/driver"
	"github.com/visiona/scicam/sim"
)

func TestCounter_ReadsWithoutDisturbingSelector(t *testing.T) {
	drv := newSim(t, sim.Config{})
	cam := openCam(t, drv)
	defer cam.Close()

	// run a short acquisition so the frame counter has something to say
	acq, err := cam.StartAcquisition()
	if err != nil {
		t.Fatalf("StartAcquisition() error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := acq.NextFrame(time.Second); err != nil {
			t.Fatalf("NextFrame() error: %v", err)
		}
	}
	if cam, err = acq.StopAcquisition(); err != nil {
		t.Fatalf("StopAcquisition() error: %v", err)
	}

	if err := cam.SetParamInt(scicam.ParamCounterSelector, int32(scicam.CounterMissedTrigger)); err != nil {
		t.Fatalf("SetParamInt(counter_selector) error: %v", err)
	}

	frames, err := cam.Counter(scicam.CounterTransportFrames)
	if err != nil {
		t.Fatalf("Counter(transport_frames) error: %v", err)
	}
	if frames != 4 {
		t.Errorf("Counter(transport_frames) = %d, want 4", frames)
	}

	skipped, err := cam.Counter(scicam.CounterTransportSkipped)
	if err != nil {
		t.Fatalf("Counter(transport_skipped) error: %v", err)
	}
	if skipped != 0 {
		t.Errorf("Counter(transport_skipped) = %d, want 0", skipped)
	}

	sel, err := cam.ParamInt(scicam.ParamCounterSelector)
	if err != nil {
		t.Fatalf("ParamInt(counter_selector) error: %v", err)
	}
	if scicam.CounterSelector(sel) != scicam.CounterMissedTrigger {
		t.Errorf("counter_selector = %v after reads, want the saved missed_trigger", scicam.CounterSelector(sel))
	}
}

func TestCounter_RestoreFailureSurfaces(t *testing.T) {
	drv := newSim(t, sim.Config{})
	cam := openCam(t, drv)
	defer cam.Close()

	// first selector write passes, the restore write fails
	drv.InjectFault("set_param", 1, driver.CodeDeviceLost)

	_, err := cam.Counter(scicam.CounterTransportFrames)
	if driver.CodeOf(err) != driver.CodeDeviceLost {
		t.Errorf("Counter() with failing restore: code = %v, want CodeDeviceLost", driver.CodeOf(err))
	}
}

func TestCounter_WithManualBandwidth(t *testing.T) {
	drv := newSim(t, sim.Config{})
	cam, err := scicam.OpenManualBandwidth(drv, 0, 1000)
	if err != nil {
		t.Fatalf("OpenManualBandwidth() error: %v", err)
	}
	defer cam.Close()

	acq, err := cam.StartAcquisition()
	if err != nil {
		t.Fatalf("StartAcquisition() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := acq.NextFrame(time.Second); err != nil {
			t.Fatalf("NextFrame() error: %v", err)
		}
	}
	if cam, err = acq.StopAcquisition(); err != nil {
		t.Fatalf("StopAcquisition() error: %v", err)
	}

	skipped, err := cam.Counter(scicam.CounterTransportSkipped)
	if err != nil {
		t.Fatalf("Counter(transport_skipped) error: %v", err)
	}
	if skipped != 0 {
		t.Errorf("Counter(transport_skipped) = %d under bandwidth cap, want 0", skipped)
	}
}

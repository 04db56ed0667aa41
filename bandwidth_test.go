package scicam_test

import (
	"testing"

	"github.com/visiona/scicam"
	"github.com/visiona/scicam/driver"
	"github.com/visiona/scicam/sim"
)

const autoBandwidthKey = "auto_bandwidth_calculation"

func globalAutoBandwidth(t *testing.T, drv *sim.Driver) int32 {
	t.Helper()
	v, err := drv.GetParamInt(driver.Global, autoBandwidthKey)
	if err != nil {
		t.Fatalf("read %s: %v", autoBandwidthKey, err)
	}
	return v
}

func TestOpenManualBandwidth(t *testing.T) {
	drv := newSim(t, sim.Config{})

	cam, err := scicam.OpenManualBandwidth(drv, 0, 1000)
	if err != nil {
		t.Fatalf("OpenManualBandwidth() error: %v", err)
	}
	defer cam.Close()

	if got := globalAutoBandwidth(t, drv); got != 1 {
		t.Errorf("auto bandwidth after open = %d, want restored to 1", got)
	}
	limit, err := cam.LimitBandwidth()
	if err != nil {
		t.Fatalf("LimitBandwidth() error: %v", err)
	}
	if limit != 1000 {
		t.Errorf("LimitBandwidth() = %d, want 1000", limit)
	}
	enabled, err := cam.LimitBandwidthEnabled()
	if err != nil {
		t.Fatalf("LimitBandwidthEnabled() error: %v", err)
	}
	if !enabled {
		t.Error("LimitBandwidthEnabled() = false, want true")
	}
}

func TestOpenManualBandwidth_NilDriver(t *testing.T) {
	_, err := scicam.OpenManualBandwidth(nil, 0, 1000)
	if driver.CodeOf(err) != driver.CodeInvalidArg {
		t.Errorf("code = %v, want CodeInvalidArg", driver.CodeOf(err))
	}
}

func TestOpenManualBandwidth_OpenFailureRestoresGlobal(t *testing.T) {
	drv := newSim(t, sim.Config{})
	drv.InjectFault("open", 0, driver.CodeDeviceBusy)

	_, err := scicam.OpenManualBandwidth(drv, 0, 1000)
	if driver.CodeOf(err) != driver.CodeDeviceBusy {
		t.Fatalf("code = %v, want CodeDeviceBusy", driver.CodeOf(err))
	}
	if got := globalAutoBandwidth(t, drv); got != 1 {
		t.Errorf("auto bandwidth after failed open = %d, want restored to 1", got)
	}
	if drv.OpenHandles() != 0 {
		t.Errorf("OpenHandles() = %d, want 0", drv.OpenHandles())
	}
}

func TestOpenManualBandwidth_RestoreFailureClosesCamera(t *testing.T) {
	drv := newSim(t, sim.Config{})
	// the restore write is the fourth set_param: suppress, limit, mode, restore
	drv.InjectFault("set_param", 3, driver.CodeDeviceLost)

	cam, err := scicam.OpenManualBandwidth(drv, 0, 1000)
	if driver.CodeOf(err) != driver.CodeDeviceLost {
		t.Fatalf("code = %v, want CodeDeviceLost", driver.CodeOf(err))
	}
	if cam != nil {
		t.Error("camera returned despite restore failure")
	}
	if drv.OpenHandles() != 0 {
		t.Errorf("OpenHandles() = %d after restore failure, want 0", drv.OpenHandles())
	}
}

func TestOpenManualBandwidth_OriginalErrorWins(t *testing.T) {
	drv := newSim(t, sim.Config{})
	drv.InjectFault("open", 0, driver.CodeDeviceBusy)
	// suppress passes, restore fails; the open failure must still win
	drv.InjectFault("set_param", 1, driver.CodeDeviceLost)

	_, err := scicam.OpenManualBandwidth(drv, 0, 1000)
	if driver.CodeOf(err) != driver.CodeDeviceBusy {
		t.Errorf("code = %v, want the open failure CodeDeviceBusy", driver.CodeOf(err))
	}
}

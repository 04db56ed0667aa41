package scicam

import (
	"log/slog"

	"github.com/visiona/scicam/driver"
)

// OpenManualBandwidth opens the device at index with automatic bandwidth
// measurement suppressed and a fixed transport budget of limitMBps
// applied. Useful when several cameras share one link and the usual
// open-time bandwidth probe would measure a lie.
//
// Suppressing the probe happens through a driver-global register, so it is
// toggled around the open and restored on every exit path, including
// failed opens. If restoring fails after a successful open the camera is
// closed again and the restore error returned; the global register never
// stays in a state the caller did not ask for.
func OpenManualBandwidth(drv driver.Driver, index int, limitMBps int32) (cam *Camera, err error) {
	if drv == nil {
		return nil, driver.NewError(driver.CodeInvalidArg, "open")
	}

	prev, err := drv.GetParamInt(driver.Global, keyAutoBandwidthCalc)
	if err != nil {
		return nil, err
	}
	if err = drv.SetParamInt(driver.Global, keyAutoBandwidthCalc, 0); err != nil {
		return nil, err
	}
	defer func() {
		rerr := drv.SetParamInt(driver.Global, keyAutoBandwidthCalc, prev)
		if rerr == nil {
			return
		}
		slog.Warn("scicam: restoring auto bandwidth calculation failed", "error", rerr)
		if err == nil {
			if cam != nil {
				_ = cam.Close()
				cam = nil
			}
			err = rerr
		}
	}()

	cam, err = Open(drv, index)
	if err != nil {
		return nil, err
	}
	if err = cam.SetLimitBandwidth(limitMBps); err != nil {
		_ = cam.Close()
		return nil, err
	}
	if err = cam.SetLimitBandwidthEnabled(true); err != nil {
		_ = cam.Close()
		return nil, err
	}
	slog.Info("scicam: device opened with manual bandwidth", "device", index,
		"limit_mbps", limitMBps, "session_id", cam.id)
	return cam, nil
}

package scicam

// CounterSelector addresses one of the device's diagnostic counters.
type CounterSelector int32

const (
	// CounterTransportSkipped counts frames dropped on the transport link.
	CounterTransportSkipped CounterSelector = 0
	// CounterAPISkipped counts frames dropped between transport and caller.
	CounterAPISkipped CounterSelector = 1
	// CounterTransportFrames counts frames delivered by the transport.
	CounterTransportFrames CounterSelector = 2
	// CounterMissedTrigger counts triggers that arrived while the sensor
	// could not start another exposure.
	CounterMissedTrigger CounterSelector = 3
)

func (s CounterSelector) String() string {
	switch s {
	case CounterTransportSkipped:
		return "transport_skipped_frames"
	case CounterAPISkipped:
		return "api_skipped_frames"
	case CounterTransportFrames:
		return "transport_frames"
	case CounterMissedTrigger:
		return "missed_trigger"
	default:
		return "unknown"
	}
}

// Counter reads the diagnostic counter addressed by sel without disturbing
// the device's counter selector: the current selector is saved, the target
// selected and read, then the saved selector restored. Restore is also
// attempted when the read fails; on a clean read a restore failure is
// reported as the call's error.
func (c *Camera) Counter(sel CounterSelector) (int32, error) {
	prev, err := c.ParamInt(ParamCounterSelector)
	if err != nil {
		return 0, err
	}
	if err := c.SetParamInt(ParamCounterSelector, int32(sel)); err != nil {
		return 0, err
	}
	value, readErr := c.ParamInt(ParamCounterValue)
	restoreErr := c.SetParamInt(ParamCounterSelector, prev)
	if readErr != nil {
		return 0, readErr
	}
	if restoreErr != nil {
		return 0, restoreErr
	}
	return value, nil
}

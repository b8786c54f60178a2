package hid

// State is the lifecycle state of the HID device core. Exactly one state is
// active at any time; transitions are driven by Start/Stop, the advertising
// controls and controller connect/disconnect events.
type State int

const (
	StateStopped State = iota
	StateIdle
	StateAdvertising
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateIdle:
		return "idle"
	case StateAdvertising:
		return "advertising"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

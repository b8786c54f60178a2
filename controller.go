package hid

// IOCapability describes the device's pairing input/output capability.
type IOCapability int

const (
	CapDisplayOnly     IOCapability = 0
	CapDisplayYesNo    IOCapability = 1
	CapKeyboardOnly    IOCapability = 2
	CapNoInputOutput   IOCapability = 3
	CapKeyboardDisplay IOCapability = 4
)

// StackConfig carries the security and identity configuration applied to
// the controller stack on activation.
type StackConfig struct {
	GapName      string
	MTU          uint16
	Bond         bool
	LESecure     bool
	MITM         bool
	IOCapability IOCapability
}

// Controller is the host-side surface of the radio stack. Implementations
// deliver GATT/GAP events through the registered EventHandler; the device
// core drives the stack through the remaining methods.
//
// RegisterServices returns one handle slice per service, containing the
// value handle of each characteristic followed by the handles of its
// descriptors, in declaration order.
type Controller interface {
	// SetEventHandler registers the sink for controller events. Must be
	// called before Activate.
	SetEventHandler(h EventHandler)

	// Activate brings up the stack with the given configuration.
	Activate(cfg StackConfig) error

	// Deactivate tears the stack down.
	Deactivate() error

	// ClearBondState wipes any bonding state the stack keeps natively,
	// so that the injected secret store is the sole source of bonding
	// identity.
	ClearBondState() error

	// RegisterServices registers the GATT service tree and returns the
	// assigned attribute handles.
	RegisterServices(svcs []Service) ([][]uint16, error)

	// Advertise starts connectable advertising of the given payload at
	// the given interval. No timeout is enforced.
	Advertise(intervalMs uint32, payload []byte, connectable bool) error

	// StopAdvertising cancels advertising.
	StopAdvertising() error

	// WriteLocal updates the value of a local attribute.
	WriteLocal(handle uint16, value []byte) error

	// ReadLocal reads the value of a local attribute.
	ReadLocal(handle uint16) ([]byte, error)

	// Notify sends a characteristic value notification on a connection.
	Notify(conn, handle uint16, value []byte) error

	// Disconnect terminates a connection.
	Disconnect(conn uint16) error

	// RespondPasskey answers a pending passkey action.
	RespondPasskey(conn uint16, action PasskeyAction, passkey uint32) error

	// SetMTU applies a negotiated ATT MTU to the stack configuration.
	SetMTU(mtu uint16) error
}

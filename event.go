package hid

// Event is a controller-originated event delivered to the device core.
// Each event kind carries its own typed payload; the core dispatches
// through an exhaustive type switch. Handlers run to completion and must
// not block on another BLE operation.
type Event interface {
	isEvent()
}

// CentralConnected reports a central establishing a connection.
type CentralConnected struct {
	Conn     uint16
	AddrType uint8
	Addr     []byte
}

// CentralDisconnected reports the active connection going away.
type CentralDisconnected struct {
	Conn     uint16
	AddrType uint8
	Addr     []byte
}

// CharacteristicWritten reports a peer write to a characteristic value.
type CharacteristicWritten struct {
	Conn   uint16
	Handle uint16
	Value  []byte
}

// ReadRequest asks the core to authorize a pending read of a
// characteristic value. The value itself is served from the controller's
// attribute database; the core only acknowledges or rejects.
type ReadRequest struct {
	Conn   uint16
	Handle uint16
}

// MTUExchanged reports the negotiated ATT MTU.
type MTUExchanged struct {
	Conn uint16
	MTU  uint16
}

// EncryptionChanged reports a change of the link's security attributes.
type EncryptionChanged struct {
	Conn          uint16
	Encrypted     bool
	Authenticated bool
	Bonded        bool
	KeySize       uint8
}

// PasskeyAction identifies the pairing sub-protocol requested by the
// controller during a passkey exchange.
type PasskeyAction int

const (
	PasskeyActionInput             PasskeyAction = 2
	PasskeyActionDisplay           PasskeyAction = 3
	PasskeyActionNumericComparison PasskeyAction = 4
)

// PasskeyRequested asks the core to answer a pairing passkey action.
type PasskeyRequested struct {
	Conn    uint16
	Action  PasskeyAction
	Passkey uint32
}

// SetSecret stores or deletes a bonding secret. A nil Value is the
// deletion sentinel: the identity (Kind, Key) is removed if present.
type SetSecret struct {
	Kind  int
	Key   []byte
	Value []byte
}

// GetSecret looks up a bonding secret, either by exact (Kind, Key)
// identity or, when Key is nil, by per-kind insertion-order index.
type GetSecret struct {
	Kind  int
	Index int
	Key   []byte
}

func (CentralConnected) isEvent()      {}
func (CentralDisconnected) isEvent()   {}
func (CharacteristicWritten) isEvent() {}
func (ReadRequest) isEvent()           {}
func (MTUExchanged) isEvent()          {}
func (EncryptionChanged) isEvent()     {}
func (PasskeyRequested) isEvent()      {}
func (SetSecret) isEvent()             {}
func (GetSecret) isEvent()             {}

// Result is the synchronous answer a handler returns to the controller.
// Status acknowledges reads and writes; Value and OK answer secret
// lookups and mutations.
type Result struct {
	Status AttError
	Value  []byte
	OK     bool
}

// EventHandler consumes controller events and returns the handler's
// synchronous answer.
type EventHandler func(Event) Result

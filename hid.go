// Package hid implements the core of a BLE HID peripheral: GATT service
// declaration, advertising, the connection/security state machine and
// persistent bonding secrets. The radio itself is abstracted behind the
// Controller interface; platform backends and input handling live outside
// this module.
package hid

// Property is a bitmask of characteristic or descriptor access properties.
type Property uint16

const (
	PropRead            Property = 0x0002
	PropWriteNoResponse Property = 0x0004
	PropWrite           Property = 0x0008
	PropNotify          Property = 0x0010
)

// Service declares a GATT primary service for registration with the
// controller. Handles are assigned by the controller at registration time,
// one per characteristic value and one per descriptor, in declaration order.
type Service struct {
	UUID            UUID
	Characteristics []Characteristic
}

// Characteristic declares a characteristic within a Service.
type Characteristic struct {
	UUID        UUID
	Properties  Property
	Descriptors []Descriptor
}

// Descriptor declares a characteristic descriptor.
type Descriptor struct {
	UUID       UUID
	Properties Property
}

// AttError is an ATT protocol error code returned from read and write
// acknowledgments.
type AttError byte

const (
	AttSuccess                       AttError = 0x00
	AttErrInvalidHandle              AttError = 0x01
	AttErrReadNotPermitted           AttError = 0x02
	AttErrInsufficientAuthentication AttError = 0x05
	AttErrInsufficientAuthorization  AttError = 0x08
	AttErrInsufficientEncryption     AttError = 0x0f
)

func (e AttError) String() string {
	switch e {
	case AttSuccess:
		return "success"
	case AttErrInvalidHandle:
		return "invalid handle"
	case AttErrReadNotPermitted:
		return "read not permitted"
	case AttErrInsufficientAuthentication:
		return "insufficient authentication"
	case AttErrInsufficientAuthorization:
		return "insufficient authorization"
	case AttErrInsufficientEncryption:
		return "insufficient encryption"
	default:
		return "unknown"
	}
}

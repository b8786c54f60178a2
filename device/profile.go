package device

import "github.com/everyremote/hid"

// Core is the surface a Profile gets back from the device at bind time.
// SetValue updates the characteristic table and the controller's attribute
// database; Notify additionally pushes the value to the connected central.
type Core interface {
	SetValue(handle uint16, label string, value []byte)
	Notify(handle uint16, value []byte) error
	Connected() bool
}

// Profile is a HID profile composed with the device core. The profile
// declares its GATT services, receives its attribute handles after
// registration, and may intercept peer writes (e.g. output reports).
type Profile interface {
	// Services returns the profile's services, registered after the
	// device's Device Information and Battery services.
	Services() []hid.Service

	// Bind hands the profile its assigned handles, one slice per service
	// in the same order as Services. The profile seeds its initial
	// characteristic values through core.SetValue.
	Bind(core Core, handles [][]uint16) error

	// HandleWrite is invoked for every acknowledged peer write. It
	// returns true when the profile consumed the write.
	HandleWrite(handle uint16, value []byte) bool
}

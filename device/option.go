package device

import (
	"github.com/everyremote/hid"
	"github.com/everyremote/hid/keystore"
)

// An Option configures the device at construction.
type Option func(*Device)

// WithName sets the GAP device name.
func WithName(name string) Option {
	return func(d *Device) { d.name = name }
}

// WithAppearance sets the advertised appearance value.
func WithAppearance(a uint16) Option {
	return func(d *Device) { d.appearance = a }
}

// WithPasskey sets the fixed pairing passkey.
func WithPasskey(pk uint32) Option {
	return func(d *Device) { d.passkey = pk }
}

// WithStore injects the secret store used for bonding secrets.
func WithStore(s *keystore.Store) Option {
	return func(d *Device) { d.store = s }
}

// WithDeviceInfo sets the Device Information Service contents.
func WithDeviceInfo(info DeviceInfo) Option {
	return func(d *Device) { d.info = info }
}

// WithPnPID sets the PnP ID characteristic contents.
func WithPnPID(pnp PnPID) Option {
	return func(d *Device) { d.pnp = pnp }
}

// WithIOCapability overrides the pairing IO capability.
func WithIOCapability(c hid.IOCapability) Option {
	return func(d *Device) { d.ioCap = c }
}

// WithSecurity configures bonding and LE Secure Connections. MITM
// protection follows the LE Secure setting.
func WithSecurity(bond, leSecure bool) Option {
	return func(d *Device) {
		d.bond = bond
		d.leSecure = leSecure
	}
}

// WithAdvertisingInterval overrides the advertising interval in
// milliseconds.
func WithAdvertisingInterval(ms uint32) Option {
	return func(d *Device) { d.advInterval = ms }
}

// Package device implements the BLE HID device core: the GATT service
// tree, the connection/security state machine and the dispatch of
// controller events into state transitions and secret-store operations.
//
// Controller events are expected to arrive serialized; each handler runs
// to completion without blocking on another BLE operation. The internal
// mutex protects the characteristic table and connection attributes
// against concurrent observers, not against concurrent handlers.
package device

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/everyremote/hid"
	"github.com/everyremote/hid/adv"
	"github.com/everyremote/hid/keystore"
)

const defaultMTU = 23

type tableEntry struct {
	label string
	value []byte
}

// Device is the HID device core. It exclusively owns the device state,
// the active connection and the characteristic table.
type Device struct {
	ctrl    hid.Controller
	profile Profile
	store   *keystore.Store
	log     hid.Logger

	mu    sync.Mutex
	state hid.State
	table map[uint16]tableEntry

	conn    uint16
	hasConn bool

	encrypted     bool
	authenticated bool
	bonded        bool
	keySize       uint8
	mtu           uint16

	ready bool

	stateCallback   func(hid.State)
	passkeyCallback func() uint32

	advertiser  *adv.Advertiser
	advInterval uint32

	name       string
	appearance uint16
	passkey    uint32
	ioCap      hid.IOCapability
	bond       bool
	leSecure   bool

	info DeviceInfo
	pnp  PnPID

	batteryLevel uint8
	hBattery     uint16
}

// DeviceInfo holds the Device Information Service string characteristics.
type DeviceInfo struct {
	ModelNumber      string
	SerialNumber     string
	FirmwareRevision string
	HardwareRevision string
	SoftwareRevision string
	Manufacturer     string
}

// PnPID holds the PnP ID characteristic fields, serialized big-endian as
// source byte, vendor id, product id, product version.
type PnPID struct {
	VendorIDSource uint8
	VendorID       uint16
	ProductID      uint16
	ProductVersion uint16
}

// New returns a stopped device driving ctrl with the given profile. The
// profile may be nil for a bare Device Information + Battery device.
func New(ctrl hid.Controller, profile Profile, opts ...Option) *Device {
	d := &Device{
		ctrl:         ctrl,
		profile:      profile,
		store:        keystore.New(nil),
		log:          hid.GetLogger().ChildLogger(map[string]interface{}{"pkg": "device"}),
		state:        hid.StateStopped,
		table:        make(map[uint16]tableEntry),
		name:         "Generic HID",
		appearance:   960,
		passkey:      1234,
		ioCap:        hid.CapNoInputOutput,
		bond:         true,
		leSecure:     true,
		mtu:          defaultMTU,
		batteryLevel: 100,
		info: DeviceInfo{
			ModelNumber:      "1",
			SerialNumber:     "1",
			FirmwareRevision: "1",
			HardwareRevision: "1",
			SoftwareRevision: "1",
			Manufacturer:     "DIY",
		},
		pnp: PnPID{
			VendorIDSource: 0x01,
			VendorID:       0xFFFF,
			ProductID:      0x01,
			ProductVersion: 0x0100,
		},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Start loads persisted secrets, activates the controller stack, registers
// the GATT service tree and leaves the device Idle. A controller
// activation failure aborts and leaves the device Stopped.
func (d *Device) Start() error {
	if d.State() != hid.StateStopped {
		return nil
	}

	d.store.Load()

	// The stack may keep its own bonding records. Wipe them so the secret
	// store is the sole source of bonding identity; a stale native
	// identity key breaks reconnection after a deep-sleep cycle.
	if err := d.ctrl.ClearBondState(); err != nil {
		d.log.Warnf("failed to clear native bond state: %s", err)
	}

	d.ctrl.SetEventHandler(d.HandleEvent)

	cfg := hid.StackConfig{
		GapName:      d.name,
		MTU:          defaultMTU,
		Bond:         d.bond,
		LESecure:     d.leSecure,
		MITM:         d.leSecure,
		IOCapability: d.ioCap,
	}
	if err := d.ctrl.Activate(cfg); err != nil {
		return errors.Wrap(err, "can't activate controller stack")
	}

	if err := d.registerServices(); err != nil {
		if derr := d.ctrl.Deactivate(); derr != nil {
			d.log.Errorf("failed to deactivate after registration error: %s", derr)
		}
		return err
	}

	a, err := adv.New(d.ctrl, adv.Config{
		Name:       d.name,
		Services:   d.advertisedServices(),
		Appearance: d.appearance,
		IntervalMs: d.advInterval,
	})
	if err != nil {
		if derr := d.ctrl.Deactivate(); derr != nil {
			d.log.Errorf("failed to deactivate after advertiser error: %s", derr)
		}
		return err
	}
	d.advertiser = a

	d.setState(hid.StateIdle)
	d.log.Info("BLE active")
	return nil
}

// Stop cancels advertising, drops any active connection and deactivates
// the controller stack. Calling Stop on a stopped device is a no-op.
func (d *Device) Stop() error {
	if d.State() == hid.StateStopped {
		return nil
	}

	if d.advertiser != nil {
		if err := d.advertiser.Stop(); err != nil {
			d.log.Errorf("failed to stop advertising: %s", err)
		}
	}

	d.mu.Lock()
	hasConn, conn := d.hasConn, d.conn
	d.mu.Unlock()
	if hasConn {
		if err := d.ctrl.Disconnect(conn); err != nil {
			d.log.Errorf("failed to disconnect: %s", err)
		}
	}

	if err := d.ctrl.Deactivate(); err != nil {
		d.log.Errorf("failed to deactivate controller stack: %s", err)
	}

	// The controller may deliver its disconnect event late or not at all
	// once deactivated; the connection must not outlive the stop.
	d.mu.Lock()
	d.hasConn = false
	d.conn = 0
	d.encrypted = false
	d.authenticated = false
	d.bonded = false
	d.keySize = 0
	d.mu.Unlock()

	d.setState(hid.StateStopped)
	return nil
}

// StartAdvertising begins advertising from Idle. While already
// advertising it is a no-op; while Stopped or Connected it does nothing.
func (d *Device) StartAdvertising() error {
	switch d.State() {
	case hid.StateStopped, hid.StateConnected:
		d.log.Debugf("not advertising from state %s", d.State())
		return nil
	case hid.StateAdvertising:
		return d.advertiser.Start()
	}

	if err := d.advertiser.Start(); err != nil {
		return err
	}
	d.setState(hid.StateAdvertising)
	return nil
}

// StopAdvertising cancels advertising. The device returns to Idle unless
// it is connected.
func (d *Device) StopAdvertising() error {
	if d.State() == hid.StateStopped || d.advertiser == nil {
		return nil
	}
	if err := d.advertiser.Stop(); err != nil {
		return err
	}
	if d.State() != hid.StateConnected {
		d.setState(hid.StateIdle)
	}
	return nil
}

// State returns the current device state.
func (d *Device) State() hid.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Connected reports whether a central is connected.
func (d *Device) Connected() bool {
	return d.State() == hid.StateConnected
}

// IsAdvertising reports whether the device is advertising.
func (d *Device) IsAdvertising() bool {
	return d.State() == hid.StateAdvertising
}

// SetStateChangeCallback registers an observer invoked synchronously on
// every state transition.
func (d *Device) SetStateChangeCallback(cb func(hid.State)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stateCallback = cb
}

// SetReady marks the device ready, arming automatic advertising resume
// after a disconnect.
func (d *Device) SetReady(ready bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ready = ready
}

// SetPasskey changes the fixed passkey supplied on display actions.
func (d *Device) SetPasskey(pk uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.passkey = pk
}

// SetPasskeyCallback registers a passkey source consulted on keyboard
// input actions. Without one the fixed passkey is used.
func (d *Device) SetPasskeyCallback(cb func() uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.passkeyCallback = cb
}

// SecurityAttributes returns the security attributes of the active
// connection: encrypted, authenticated, bonded, key size.
func (d *Device) SecurityAttributes() (bool, bool, bool, uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.encrypted, d.authenticated, d.bonded, d.keySize
}

// MTU returns the negotiated ATT MTU.
func (d *Device) MTU() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mtu
}

// Store returns the device's secret store.
func (d *Device) Store() *keystore.Store {
	return d.store
}

// SetBatteryLevel sets the battery percentage, clamped to 0-100.
func (d *Device) SetBatteryLevel(level int) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batteryLevel = uint8(level)
}

// NotifyBatteryLevel writes and notifies the battery level characteristic.
// It does nothing while not connected.
func (d *Device) NotifyBatteryLevel() error {
	d.mu.Lock()
	level := d.batteryLevel
	handle := d.hBattery
	d.mu.Unlock()

	if !d.Connected() {
		return nil
	}
	return d.Notify(handle, []byte{level})
}

// SetValue stores a characteristic value in the table and mirrors it into
// the controller's attribute database.
func (d *Device) SetValue(handle uint16, label string, value []byte) {
	v := append([]byte(nil), value...)
	d.mu.Lock()
	d.table[handle] = tableEntry{label: label, value: v}
	d.mu.Unlock()

	if err := d.ctrl.WriteLocal(handle, v); err != nil {
		d.log.Errorf("failed to write %s value: %s", label, err)
	}
}

// Notify updates the stored value and notifies the connected central. It
// is a no-op while not connected.
func (d *Device) Notify(handle uint16, value []byte) error {
	d.mu.Lock()
	if !d.hasConn {
		d.mu.Unlock()
		return nil
	}
	conn := d.conn
	entry := d.table[handle]
	entry.value = append([]byte(nil), value...)
	d.table[handle] = entry
	d.mu.Unlock()

	if err := d.ctrl.Notify(conn, handle, value); err != nil {
		return errors.Wrapf(err, "can't notify handle %d", handle)
	}
	return nil
}

// Value returns the current table value for a handle.
func (d *Device) Value(handle uint16) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.table[handle]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), e.value...), true
}

func (d *Device) setState(s hid.State) {
	d.mu.Lock()
	if d.state == s {
		d.mu.Unlock()
		return
	}
	d.state = s
	cb := d.stateCallback
	d.mu.Unlock()

	if cb != nil {
		cb(s)
	}
}

func (d *Device) advertisedServices() []hid.UUID {
	var uuids []hid.UUID
	if d.profile != nil {
		for _, s := range d.profile.Services() {
			if s.UUID.Len() == 2 {
				uuids = append(uuids, s.UUID)
			}
		}
	}
	if len(uuids) == 0 {
		uuids = []hid.UUID{hid.HIDServiceUUID}
	}
	return uuids
}

// Package keyboard implements the HID-over-GATT keyboard profile: a
// keyboard input report with modifiers and up to six concurrent keys,
// a consumer-control report for media keys, and the LED output report
// written by the host.
package keyboard

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/everyremote/hid"
	"github.com/everyremote/hid/device"
)

// MaxKeys is the number of simultaneous keys the boot-style report holds.
const MaxKeys = 6

const handleCount = 10

// Keyboard is a device.Profile providing keyboard and consumer-control
// input reports over the HID service.
type Keyboard struct {
	mu   sync.Mutex
	core device.Core
	log  hid.Logger

	hInfo     uint16
	hMap      uint16
	hControl  uint16
	hKbInput  uint16
	hKbOutput uint16
	hConsumer uint16
	hProtocol uint16

	modifiers Modifiers
	keys      []byte
	consumer  uint16

	keysHeld     bool
	consumerHeld bool

	leds        byte
	ledCallback func(byte)
}

// New returns an unbound keyboard profile. Hand it to device.New; the
// device calls Bind during Start.
func New() *Keyboard {
	return &Keyboard{
		log: hid.GetLogger().ChildLogger(map[string]interface{}{"pkg": "keyboard"}),
	}
}

// Services returns the HID service declaration.
func (k *Keyboard) Services() []hid.Service {
	return []hid.Service{hidService()}
}

// Bind records the assigned attribute handles and seeds the initial
// characteristic values.
func (k *Keyboard) Bind(core device.Core, handles [][]uint16) error {
	if len(handles) != 1 || len(handles[0]) != handleCount {
		return errors.Errorf("expected %d HID service handles, got %v", handleCount, handles)
	}
	h := handles[0]

	k.mu.Lock()
	k.core = core
	k.hInfo = h[0]
	k.hMap = h[1]
	k.hControl = h[2]
	k.hKbInput = h[3]
	k.hKbOutput = h[5]
	k.hConsumer = h[7]
	k.hProtocol = h[9]
	k.mu.Unlock()

	core.SetValue(h[0], "HID Info", hidInformationValue)
	core.SetValue(h[1], "Report Map", reportMap)
	core.SetValue(h[2], "Control Point", []byte{0x00})
	core.SetValue(h[3], "Keyboard Report", make([]byte, 8))
	core.SetValue(h[4], "Keyboard Ref", []byte{ReportIDKeyboard, reportTypeInput})
	core.SetValue(h[5], "LED Report", []byte{0x00})
	core.SetValue(h[6], "LED Ref", []byte{ReportIDKeyboard, reportTypeOutput})
	core.SetValue(h[7], "Consumer Report", []byte{0x00, 0x00})
	core.SetValue(h[8], "Consumer Ref", []byte{ReportIDConsumer, reportTypeInput})
	core.SetValue(h[9], "Protocol Mode", []byte{0x01})
	return nil
}

// HandleWrite consumes host writes to the LED output report and the HID
// control point.
func (k *Keyboard) HandleWrite(handle uint16, value []byte) bool {
	k.mu.Lock()
	hOut, hCtrl := k.hKbOutput, k.hControl
	k.mu.Unlock()

	switch handle {
	case hOut:
		if len(value) == 0 {
			return true
		}
		k.mu.Lock()
		k.leds = value[0]
		cb := k.ledCallback
		k.mu.Unlock()
		if cb != nil {
			cb(value[0])
		}
		return true
	case hCtrl:
		if len(value) > 0 {
			k.log.Debugf("control point write: %#02x", value[0])
		}
		return true
	}
	return false
}

// SetLEDCallback registers an observer for host LED output reports.
func (k *Keyboard) SetLEDCallback(cb func(leds byte)) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.ledCallback = cb
}

// LEDs returns the last LED state written by the host.
func (k *Keyboard) LEDs() byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.leds
}

// SetKeys replaces the pressed key set. At most MaxKeys keys fit in the
// report; calling it with none releases all keys.
func (k *Keyboard) SetKeys(keys ...byte) error {
	if len(keys) > MaxKeys {
		return errors.Errorf("at most %d keys per report, got %d", MaxKeys, len(keys))
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys = append(k.keys[:0], keys...)
	return nil
}

// SetModifiers replaces the modifier byte of the keyboard report.
func (k *Keyboard) SetModifiers(m Modifiers) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.modifiers = m
}

// SetConsumer replaces the pressed consumer-control usage. Zero means
// released.
func (k *Keyboard) SetConsumer(usage uint16) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.consumer = usage
}

// keyboardReport serializes the current keyboard state: modifier byte,
// reserved byte, six key slots.
func (k *Keyboard) keyboardReport() []byte {
	report := make([]byte, 8)
	report[0] = byte(k.modifiers)
	copy(report[2:], k.keys)
	return report
}

// NotifyKeyboardReport pushes the keyboard input report to the connected
// central. While disconnected the state is kept but nothing is sent.
func (k *Keyboard) NotifyKeyboardReport() error {
	k.mu.Lock()
	core := k.core
	handle := k.hKbInput
	report := k.keyboardReport()
	k.keysHeld = k.modifiers != 0 || len(k.keys) > 0
	k.mu.Unlock()

	if core == nil || !core.Connected() {
		return nil
	}
	return core.Notify(handle, report)
}

// NotifyConsumerReport pushes the consumer-control input report to the
// connected central.
func (k *Keyboard) NotifyConsumerReport() error {
	k.mu.Lock()
	core := k.core
	handle := k.hConsumer
	report := make([]byte, 2)
	binary.LittleEndian.PutUint16(report, k.consumer)
	k.consumerHeld = k.consumer != 0
	k.mu.Unlock()

	if core == nil || !core.Connected() {
		return nil
	}
	return core.Notify(handle, report)
}

// ReleaseAll releases whatever is held, per report kind: a release
// report is sent only for kinds whose last notification carried a press.
func (k *Keyboard) ReleaseAll() error {
	k.mu.Lock()
	keysHeld, consumerHeld := k.keysHeld, k.consumerHeld
	k.modifiers = 0
	k.keys = k.keys[:0]
	k.consumer = 0
	k.mu.Unlock()

	if keysHeld {
		if err := k.NotifyKeyboardReport(); err != nil {
			return err
		}
	}
	if consumerHeld {
		if err := k.NotifyConsumerReport(); err != nil {
			return err
		}
	}
	return nil
}

var _ device.Profile = (*Keyboard)(nil)

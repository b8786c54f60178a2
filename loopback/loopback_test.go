package loopback

import (
	"bytes"
	"testing"

	"github.com/everyremote/hid"
	"github.com/everyremote/hid/adv"
	"github.com/everyremote/hid/device"
	"github.com/everyremote/hid/keyboard"
)

func TestLoopback_EndToEnd(t *testing.T) {
	ctrl := New()
	kb := keyboard.New()
	d := device.New(ctrl, kb,
		device.WithName("Shield Remote"),
		device.WithAppearance(961),
	)

	if err := d.Start(); err != nil {
		t.Fatalf("start failed: %s", err)
	}
	if err := d.StartAdvertising(); err != nil {
		t.Fatal(err)
	}

	// The advertising payload decodes back to what we configured.
	p, err := adv.Parse(ctrl.Payload())
	if err != nil {
		t.Fatalf("payload does not parse: %s", err)
	}
	if p.Name != "Shield Remote" || !p.HasService(hid.HIDServiceUUID) {
		t.Fatalf("bad payload: %+v", p)
	}

	if err := ctrl.Connect(33); err != nil {
		t.Fatal(err)
	}
	if d.State() != hid.StateConnected {
		t.Fatalf("expected connected, got %s", d.State())
	}

	if err := ctrl.Encrypt(true, true, 16); err != nil {
		t.Fatal(err)
	}
	enc, _, bonded, _ := d.SecurityAttributes()
	if !enc || !bonded {
		t.Fatal("encryption change not observed")
	}

	// A key press arrives at the central as an 8-byte input report.
	if err := kb.SetKeys(keyboard.KeyUp); err != nil {
		t.Fatal(err)
	}
	if err := kb.NotifyKeyboardReport(); err != nil {
		t.Fatal(err)
	}
	select {
	case n := <-ctrl.Notifications():
		want := []byte{0x00, 0x00, 0x52, 0x00, 0x00, 0x00, 0x00, 0x00}
		if !bytes.Equal(n.Value, want) {
			t.Fatalf("got report %x, want %x", n.Value, want)
		}
	default:
		t.Fatal("no notification reached the central")
	}
}

func TestLoopback_ConnectRequiresAdvertising(t *testing.T) {
	ctrl := New()
	d := device.New(ctrl, nil)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	if err := ctrl.Connect(1); err == nil {
		t.Fatal("expected connect to fail while idle")
	}
}

func TestLoopback_CentralReadsDeviceInformation(t *testing.T) {
	ctrl := New()
	d := device.New(ctrl, nil, device.WithDeviceInfo(device.DeviceInfo{
		ModelNumber:      "P3450",
		SerialNumber:     "1",
		FirmwareRevision: "1",
		HardwareRevision: "1",
		SoftwareRevision: "1",
		Manufacturer:     "NVIDIA",
	}))
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	d.StartAdvertising()
	if err := ctrl.Connect(5); err != nil {
		t.Fatal(err)
	}

	// Model number is the first registered characteristic.
	v, err := ctrl.ReadCharacteristic(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 24 || !bytes.HasPrefix(v, []byte("P3450")) {
		t.Fatalf("unexpected model number value %q", v)
	}

	// Reads after disconnect are rejected.
	ctrl.Disconnect(5)
	if _, err := ctrl.ReadCharacteristic(1); err == nil {
		t.Fatal("expected read to fail after disconnect")
	}
}

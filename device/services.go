package device

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/everyremote/hid"
)

// Battery level presentation format descriptor: uint8, exponent 0,
// unit percentage (0x27AD), Bluetooth SIG namespace.
var batteryFormatValue = []byte{0x04, 0x00, 0xad, 0x27, 0x01, 0x00, 0x00}

func deviceInformationService() hid.Service {
	return hid.Service{
		UUID: hid.DeviceInfoUUID,
		Characteristics: []hid.Characteristic{
			{UUID: hid.ModelNumberUUID, Properties: hid.PropRead},
			{UUID: hid.SerialNumberUUID, Properties: hid.PropRead},
			{UUID: hid.FirmwareRevisionUUID, Properties: hid.PropRead},
			{UUID: hid.HardwareRevisionUUID, Properties: hid.PropRead},
			{UUID: hid.SoftwareRevisionUUID, Properties: hid.PropRead},
			{UUID: hid.ManufacturerUUID, Properties: hid.PropRead},
			{UUID: hid.PnPIDUUID, Properties: hid.PropRead},
		},
	}
}

func batteryService() hid.Service {
	return hid.Service{
		UUID: hid.BatteryUUID,
		Characteristics: []hid.Characteristic{
			{
				UUID:       hid.BatteryLevelUUID,
				Properties: hid.PropRead | hid.PropNotify,
				Descriptors: []hid.Descriptor{
					{UUID: hid.PresentationFmtUUID, Properties: hid.PropRead},
				},
			},
		},
	}
}

func (d *Device) registerServices() error {
	svcs := []hid.Service{deviceInformationService(), batteryService()}
	if d.profile != nil {
		svcs = append(svcs, d.profile.Services()...)
	}

	handles, err := d.ctrl.RegisterServices(svcs)
	if err != nil {
		return errors.Wrap(err, "can't register services")
	}
	if len(handles) != len(svcs) {
		return errors.Errorf("controller returned %d handle groups for %d services", len(handles), len(svcs))
	}

	if err := d.saveServiceCharacteristics(handles); err != nil {
		return err
	}

	if d.profile != nil {
		if err := d.profile.Bind(d, handles[2:]); err != nil {
			return errors.Wrap(err, "can't bind profile")
		}
	}
	return nil
}

func (d *Device) saveServiceCharacteristics(handles [][]uint16) error {
	dis := handles[0]
	if len(dis) != 7 {
		return errors.Errorf("device information service has %d handles, want 7", len(dis))
	}
	bas := handles[1]
	if len(bas) != 2 {
		return errors.Errorf("battery service has %d handles, want 2", len(bas))
	}

	d.SetValue(dis[0], "Model", packString(d.info.ModelNumber, 24))
	d.SetValue(dis[1], "Serial", packString(d.info.SerialNumber, 16))
	d.SetValue(dis[2], "FW Rev", packString(d.info.FirmwareRevision, 8))
	d.SetValue(dis[3], "HW Rev", packString(d.info.HardwareRevision, 16))
	d.SetValue(dis[4], "SW Rev", packString(d.info.SoftwareRevision, 8))
	d.SetValue(dis[5], "Manufacturer", packString(d.info.Manufacturer, 36))
	d.SetValue(dis[6], "PnP", packPnPID(d.pnp))

	d.mu.Lock()
	d.hBattery = bas[0]
	level := d.batteryLevel
	d.mu.Unlock()
	d.SetValue(bas[0], "Battery", []byte{level})
	d.SetValue(bas[1], "BatteryFmt", batteryFormatValue)
	return nil
}

// packString zero-pads or truncates s to a fixed width, matching the
// fixed-size characteristic layout of earlier firmware generations.
func packString(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

// packPnPID serializes the PnP ID characteristic: big-endian source byte,
// vendor id, product id, product version.
func packPnPID(p PnPID) []byte {
	b := make([]byte, 7)
	b[0] = p.VendorIDSource
	binary.BigEndian.PutUint16(b[1:3], p.VendorID)
	binary.BigEndian.PutUint16(b[3:5], p.ProductID)
	binary.BigEndian.PutUint16(b[5:7], p.ProductVersion)
	return b
}

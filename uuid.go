package hid

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// UUID is a Bluetooth UUID in little-endian byte order, 2, 4 or 16 bytes
// long.
type UUID []byte

// UUID16 returns a 16-bit UUID.
func UUID16(i uint16) UUID {
	return UUID{byte(i), byte(i >> 8)}
}

// Len returns the length of the UUID in bytes.
func (u UUID) Len() int {
	return len(u)
}

// Equal reports whether u and v hold the same UUID.
func (u UUID) Equal(v UUID) bool {
	if len(u) != len(v) {
		return false
	}
	for i := range u {
		if u[i] != v[i] {
			return false
		}
	}
	return true
}

// String returns the UUID in big-endian hex form.
func (u UUID) String() string {
	r := make([]byte, len(u))
	for i, b := range u {
		r[len(u)-1-i] = b
	}
	return hex.EncodeToString(r)
}

// Parse parses a big-endian hex string into a UUID.
func Parse(s string) (UUID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse uuid")
	}
	switch len(b) {
	case 2, 4, 16:
	default:
		return nil, errors.Errorf("invalid uuid length %d", len(b))
	}
	r := make(UUID, len(b))
	for i, bb := range b {
		r[len(b)-1-i] = bb
	}
	return r, nil
}

// MustParse parses a big-endian hex string into a UUID and panics on
// failure. For use with compile-time constant inputs only.
func MustParse(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Assigned service and characteristic UUIDs used by the HID device core.
var (
	DeviceInfoUUID       = UUID16(0x180A)
	BatteryUUID          = UUID16(0x180F)
	HIDServiceUUID       = UUID16(0x1812)
	ModelNumberUUID      = UUID16(0x2A24)
	SerialNumberUUID     = UUID16(0x2A25)
	FirmwareRevisionUUID = UUID16(0x2A26)
	HardwareRevisionUUID = UUID16(0x2A27)
	SoftwareRevisionUUID = UUID16(0x2A28)
	ManufacturerUUID     = UUID16(0x2A29)
	PnPIDUUID            = UUID16(0x2A50)
	BatteryLevelUUID     = UUID16(0x2A19)
	PresentationFmtUUID  = UUID16(0x2904)
	HIDInformationUUID   = UUID16(0x2A4A)
	ReportMapUUID        = UUID16(0x2A4B)
	ControlPointUUID     = UUID16(0x2A4C)
	ReportUUID           = UUID16(0x2A4D)
	ProtocolModeUUID     = UUID16(0x2A4E)
	ReportReferenceUUID  = UUID16(0x2908)
)

package keyboard

import "github.com/everyremote/hid"

// Report IDs of the two collections declared by the report map.
const (
	ReportIDKeyboard = 1
	ReportIDConsumer = 2
)

// Report Reference descriptor report types.
const (
	reportTypeInput  = 1
	reportTypeOutput = 2
)

// reportMap is the HID report descriptor: an 8-byte keyboard report
// (report ID 1) and a 16-bit consumer-control usage report (report ID 2).
// The literal bytes are an OS-facing wire contract; do not edit them.
var reportMap = []byte{
	// Keyboard report (ID 1)
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x06, // Usage (Keyboard)
	0xA1, 0x01, // Collection (Application)
	0x85, 0x01, //   Report ID (1)
	0x75, 0x01, //   Report Size (1)
	0x95, 0x08, //   Report Count (8)
	0x05, 0x07, //   Usage Page (Key Codes)
	0x19, 0xE0, //   Usage Minimum (224)
	0x29, 0xE7, //   Usage Maximum (231)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x81, 0x02, //   Input (Data, Variable, Absolute); modifier bits
	0x95, 0x01, //   Report Count (1)
	0x75, 0x08, //   Report Size (8)
	0x81, 0x01, //   Input (Constant); reserved byte
	0x95, 0x05, //   Report Count (5)
	0x75, 0x01, //   Report Size (1)
	0x05, 0x08, //   Usage Page (LEDs)
	0x19, 0x01, //   Usage Minimum (1)
	0x29, 0x05, //   Usage Maximum (5)
	0x91, 0x02, //   Output (Data, Variable, Absolute); LED report
	0x95, 0x01, //   Report Count (1)
	0x75, 0x03, //   Report Size (3)
	0x91, 0x01, //   Output (Constant); LED padding
	0x95, 0x06, //   Report Count (6)
	0x75, 0x08, //   Report Size (8)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x65, //   Logical Maximum (101)
	0x05, 0x07, //   Usage Page (Key Codes)
	0x19, 0x00, //   Usage Minimum (0)
	0x29, 0x65, //   Usage Maximum (101)
	0x81, 0x00, //   Input (Data, Array); key array
	0xC0, // End Collection

	// Consumer control report (ID 2)
	0x05, 0x0C, // Usage Page (Consumer)
	0x09, 0x01, // Usage (Consumer Control)
	0xA1, 0x01, // Collection (Application)
	0x85, 0x02, //   Report ID (2)
	0x15, 0x00, //   Logical Minimum (0)
	0x26, 0xFF, 0x03, // Logical Maximum (1023)
	0x19, 0x00, //   Usage Minimum (0)
	0x2A, 0xFF, 0x03, // Usage Maximum (1023)
	0x75, 0x10, //   Report Size (16)
	0x95, 0x01, //   Report Count (1)
	0x81, 0x00, //   Input (Data, Array)
	0xC0, // End Collection
}

// ReportMap returns the literal HID report descriptor bytes.
func ReportMap() []byte {
	return append([]byte(nil), reportMap...)
}

// hidInformationValue is the HID Information characteristic: bcdHID 1.1,
// country code 0, no flags.
var hidInformationValue = []byte{0x01, 0x01, 0x00, 0x00}

func hidService() hid.Service {
	refDesc := []hid.Descriptor{{UUID: hid.ReportReferenceUUID, Properties: hid.PropRead}}
	return hid.Service{
		UUID: hid.HIDServiceUUID,
		Characteristics: []hid.Characteristic{
			{UUID: hid.HIDInformationUUID, Properties: hid.PropRead},
			{UUID: hid.ReportMapUUID, Properties: hid.PropRead},
			{UUID: hid.ControlPointUUID, Properties: hid.PropRead | hid.PropWrite | hid.PropWriteNoResponse},
			// Keyboard input report.
			{UUID: hid.ReportUUID, Properties: hid.PropRead | hid.PropNotify, Descriptors: refDesc},
			// LED output report.
			{UUID: hid.ReportUUID, Properties: hid.PropRead | hid.PropWrite | hid.PropNotify | hid.PropWriteNoResponse, Descriptors: refDesc},
			// Consumer input report.
			{UUID: hid.ReportUUID, Properties: hid.PropRead | hid.PropNotify, Descriptors: refDesc},
			{UUID: hid.ProtocolModeUUID, Properties: hid.PropRead | hid.PropWriteNoResponse},
		},
	}
}

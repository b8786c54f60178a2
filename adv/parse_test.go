package adv

import (
	"testing"

	"github.com/everyremote/hid"
)

func TestParse_RoundTrip(t *testing.T) {
	payload, err := BuildPayload(Config{
		Name:       "Shield Remote",
		Services:   []hid.UUID{hid.HIDServiceUUID},
		Appearance: 961,
	})
	if err != nil {
		t.Fatal(err)
	}

	p, err := Parse(payload)
	if err != nil {
		t.Fatalf("parse failed: %s", err)
	}
	if !p.HasFlags || p.Flags != FlagGeneralDiscoverable|FlagLEOnly {
		t.Fatalf("flags lost: %+v", p)
	}
	if p.Name != "Shield Remote" {
		t.Fatalf("got name %q", p.Name)
	}
	if !p.HasService(hid.HIDServiceUUID) {
		t.Fatalf("service list lost: %v", p.Services)
	}
	if p.Appearance != 961 {
		t.Fatalf("got appearance %d", p.Appearance)
	}
}

func TestParse_UnknownRecordsSkipped(t *testing.T) {
	// tx power, then a vendor-specific record, then the name
	b := []byte{
		0x02, 0x0A, 0xF6,
		0x04, 0xFF, 0x5D, 0x00, 0x01,
		0x02, 0x09, 'x',
	}
	p, err := Parse(b)
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasTxPower || p.TxPower != -10 {
		t.Fatalf("tx power not decoded: %+v", p)
	}
	if len(p.MFGData) != 3 {
		t.Fatalf("mfg data not decoded: %x", p.MFGData)
	}
	if p.Name != "x" {
		t.Fatalf("got name %q", p.Name)
	}
}

func TestParse_TruncatedRecord(t *testing.T) {
	if _, err := Parse([]byte{0x05, 0x09, 'a'}); err == nil {
		t.Fatal("expected truncated record to fail")
	}
}

func TestParse_EmptyPayload(t *testing.T) {
	if _, err := Parse(nil); err != ErrEmptyPayload {
		t.Fatal("expected ErrEmptyPayload")
	}
}

func TestParse_ZeroPaddingTerminates(t *testing.T) {
	p, err := Parse([]byte{0x02, 0x01, 0x06, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasFlags {
		t.Fatal("flags record lost")
	}
}

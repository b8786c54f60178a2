// Package adv builds GAP advertising payloads and owns the advertising
// on/off state of the device.
package adv

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/everyremote/hid"
)

// MaxADPacketLength is the maximum advertising data payload length.
// Refer to Supplement to Bluetooth Core Specification, Part A.
const MaxADPacketLength = 31

// AD record types used by this device.
const (
	typeFlags        = 0x01
	typeAllUUID16    = 0x03
	typeCompleteName = 0x09
	typeAppearance   = 0x19
)

// Flag bits for the flags record.
const (
	FlagGeneralDiscoverable = 0x02
	FlagLEOnly              = 0x04
)

// ErrNotFit is returned when a field does not fit into the packet.
var ErrNotFit = errors.New("field does not fit")

// Packet is an advertising data payload under construction. Records are
// laid out as [length][type][value...].
type Packet struct {
	b []byte
}

// Field is an advertising record which can be appended to a packet.
type Field func(p *Packet) error

// NewPacket returns a packet assembled from the given fields.
func NewPacket(fields ...Field) (*Packet, error) {
	p := &Packet{b: make([]byte, 0, MaxADPacketLength)}
	for _, f := range fields {
		if err := f(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Bytes returns the bytes of the packet.
func (p *Packet) Bytes() []byte {
	return p.b
}

// Len returns the length of the packet.
func (p *Packet) Len() int {
	return len(p.b)
}

// Append appends a field to the packet. It returns ErrNotFit if the field
// doesn't fit, and leaves the packet intact.
func (p *Packet) Append(f Field) error {
	return f(p)
}

func (p *Packet) append(typ byte, b []byte) error {
	if p.Len()+1+1+len(b) > MaxADPacketLength {
		return ErrNotFit
	}
	p.b = append(p.b, byte(len(b)+1))
	p.b = append(p.b, typ)
	p.b = append(p.b, b...)
	return nil
}

// Flags is the advertising flags record.
func Flags(f byte) Field {
	return func(p *Packet) error {
		return p.append(typeFlags, []byte{f})
	}
}

// CompleteName is the complete local name record.
func CompleteName(n string) Field {
	return func(p *Packet) error {
		return p.append(typeCompleteName, []byte(n))
	}
}

// AllUUID16 is one entry of the complete 16-bit service UUID list. UUIDs
// longer than 16 bits are skipped; they are not an error.
func AllUUID16(u hid.UUID) Field {
	return func(p *Packet) error {
		if u.Len() != 2 {
			return nil
		}
		return p.append(typeAllUUID16, u)
	}
}

// Appearance is the appearance record, little-endian 16-bit.
func Appearance(a uint16) Field {
	return func(p *Packet) error {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, a)
		return p.append(typeAppearance, b)
	}
}

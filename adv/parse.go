package adv

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/everyremote/hid"
)

// ErrEmptyPayload is returned when there is nothing to parse.
var ErrEmptyPayload = errors.New("nil/empty payload")

// Payload is a decoded advertising data payload.
type Payload struct {
	Flags      byte
	HasFlags   bool
	Name       string
	Services   []hid.UUID
	Appearance uint16
	TxPower    int
	HasTxPower bool
	MFGData    []byte
}

const (
	typeShortName = 0x08
	typeTxPower   = 0x0A
	typeMFGData   = 0xFF
)

// Parse decodes a [len][type][value...] advertising payload. Record types
// this device does not emit are tolerated; a malformed record layout is
// an error.
func Parse(b []byte) (*Payload, error) {
	if len(b) == 0 {
		return nil, ErrEmptyPayload
	}

	out := &Payload{}
	for len(b) > 0 {
		if b[0] == 0 {
			// zero-length record terminates the payload (padding)
			break
		}
		rl := int(b[0])
		if rl+1 > len(b) {
			return nil, errors.Errorf("record length %d exceeds remaining %d bytes", rl, len(b)-1)
		}
		typ := b[1]
		v := b[2 : rl+1]

		if err := out.record(typ, v); err != nil {
			return nil, err
		}
		b = b[rl+1:]
	}
	return out, nil
}

func (p *Payload) record(typ byte, v []byte) error {
	switch typ {
	case typeFlags:
		if len(v) < 1 {
			return errors.New("flags record too short")
		}
		p.Flags = v[0]
		p.HasFlags = true

	case typeAllUUID16:
		if len(v)%2 != 0 {
			return errors.Errorf("odd uuid16 list length %d", len(v))
		}
		for i := 0; i < len(v); i += 2 {
			u := make(hid.UUID, 2)
			copy(u, v[i:i+2])
			p.Services = append(p.Services, u)
		}

	case typeCompleteName, typeShortName:
		p.Name = string(v)

	case typeAppearance:
		if len(v) != 2 {
			return errors.Errorf("bad appearance length %d", len(v))
		}
		p.Appearance = binary.LittleEndian.Uint16(v)

	case typeTxPower:
		if len(v) != 1 {
			return errors.Errorf("bad tx power length %d", len(v))
		}
		p.TxPower = int(int8(v[0]))
		p.HasTxPower = true

	case typeMFGData:
		p.MFGData = append([]byte(nil), v...)

	default:
		// unknown record types are skipped
	}
	return nil
}

// HasService reports whether the payload advertises the given 16-bit
// service UUID.
func (p *Payload) HasService(u hid.UUID) bool {
	for _, s := range p.Services {
		if s.Equal(u) {
			return true
		}
	}
	return false
}

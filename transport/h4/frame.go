package h4

import (
	"time"

	"github.com/pkg/errors"
)

// HCI UART packet type indicators.
const (
	commandPacket byte = 0x01
	aclPacket     byte = 0x02
	eventPacket   byte = 0x04
)

const assembleTimeout = 500 * time.Millisecond

// frame reassembles HCI packets from arbitrarily chunked UART reads.
// Completed packets, packet indicator included, go out on the channel.
type frame struct {
	b       []byte
	timeout time.Time
	out     chan []byte
	pktType byte
}

func newFrame(c chan []byte) *frame {
	return &frame{
		b:   make([]byte, 0, 256),
		out: c,
	}
}

func (f *frame) Assemble(b []byte) {
	switch {
	case len(b) == 0:
		return
	case !f.timeout.IsZero() && time.Now().After(f.timeout):
		// stale partial frame
		fallthrough
	case f.b == nil:
		f.reset()
	default:
		// ok
	}

	if len(f.b) == 0 {
		if err := f.waitStart(b); err != nil {
			return
		}
	} else {
		bb := make([]byte, len(b))
		copy(bb, b)
		f.b = append(f.b, bb...)
	}

	rf, err := f.frame()
	if err != nil {
		return
	}
	out := make([]byte, len(rf))
	copy(out, rf)
	f.out <- out

	// shift
	if len(f.b) > len(rf) {
		rem := make([]byte, len(f.b[len(rf):]))
		copy(rem, f.b[len(rf):])
		f.reset()
		f.Assemble(rem)
	} else {
		f.reset()
	}
}

func (f *frame) reset() {
	f.b = make([]byte, 0, 256)
	f.timeout = time.Time{}
}

// waitStart scans for a packet type indicator, discarding leading noise.
func (f *frame) waitStart(b []byte) error {
	var i int
	var v byte
	var ok bool
	for i, v = range b {
		switch v {
		case eventPacket:
			f.pktType = eventPacket
		case aclPacket:
			f.pktType = aclPacket
		default:
			continue
		}

		ok = true
		f.timeout = time.Now().Add(assembleTimeout)
		break
	}

	if !ok {
		return errors.New("couldn't find start byte")
	}

	bb := make([]byte, len(b[i:]))
	copy(bb, b[i:])
	f.b = append(f.b, bb...)
	return nil
}

func (f *frame) dataLength() (int, error) {
	switch f.pktType {
	case aclPacket:
		return f.aclLength()
	case eventPacket:
		return f.eventLength()
	default:
		return 0, errors.Errorf("invalid packet type %v", f.pktType)
	}
}

// eventLength: indicator, event code, parameter length.
func (f *frame) eventLength() (int, error) {
	if len(f.b) < 3 {
		return 0, errors.New("not enough bytes")
	}
	return int(f.b[2]) + 3, nil
}

// aclLength: indicator, 2-byte handle, 2-byte data length.
func (f *frame) aclLength() (int, error) {
	if len(f.b) < 5 {
		return 0, errors.New("not enough bytes")
	}
	l := int(f.b[3]) | (int(f.b[4]) << 8)
	return l + 5, nil
}

func (f *frame) frame() ([]byte, error) {
	tl, err := f.dataLength()
	if err != nil {
		return nil, err
	}
	if len(f.b) < tl {
		return nil, errors.New("not enough bytes")
	}
	return f.b[:tl], nil
}

package h4

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
)

type idlePort struct{}

func (idlePort) Read(p []byte) (int, error)  { return 0, nil }
func (idlePort) Write(p []byte) (int, error) { return len(p), nil }
func (idlePort) Close() error                { return nil }

func TestRead_QuietLinkTimesOut(t *testing.T) {
	h := newTransport(idlePort{})
	h.timeout = 10 * time.Millisecond

	_, err := h.Read(make([]byte, 64))
	if errors.Cause(err) != ErrReadTimeout {
		t.Fatalf("expected ErrReadTimeout, got %v", err)
	}
}

func TestRead_DeliversQueuedPacket(t *testing.T) {
	h := newTransport(idlePort{})
	pkt := []byte{0x04, 0x0E, 0x01, 0x00}
	h.rxQueue <- pkt

	buf := make([]byte, 64)
	n, err := h.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[:n], pkt) {
		t.Fatalf("got %x, want %x", buf[:n], pkt)
	}
}

func TestRead_ClosedTransportIsEOF(t *testing.T) {
	h := newTransport(idlePort{})
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := h.Read(make([]byte, 64)); err != io.EOF {
		t.Fatalf("expected io.EOF after close, got %v", err)
	}
}

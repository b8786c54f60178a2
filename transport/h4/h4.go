// Package h4 provides an HCI H4 transport over a UART-attached
// controller. Reads hand back whole HCI packets; writes pass through
// untouched.
package h4

import (
	"io"
	"sync"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"

	"github.com/everyremote/hid"
)

const (
	rxQueueSize = 64
	readTimeout = time.Second
)

// ErrReadTimeout reports that no packet arrived within the read window.
// It is transient; callers polling a quiet link should retry, any other
// read error means the transport is gone.
var ErrReadTimeout = errors.New("read timeout")

type h4 struct {
	sp      io.ReadWriteCloser
	rmu     sync.Mutex
	wmu     sync.Mutex
	log     hid.Logger
	timeout time.Duration

	fr      *frame
	rxQueue chan []byte

	done chan struct{}
	cmu  sync.Mutex
}

// New opens the serial port and returns a packet-framed transport.
func New(opts serial.OpenOptions) (io.ReadWriteCloser, error) {
	// the frame assembler needs short reads to flow through
	opts.MinimumReadSize = 0
	opts.InterCharacterTimeout = 100

	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "can't open serial port")
	}

	h := newTransport(sp)
	go h.rxLoop()
	return h, nil
}

func newTransport(sp io.ReadWriteCloser) *h4 {
	rxQueue := make(chan []byte, rxQueueSize)
	return &h4{
		sp:      sp,
		log:     hid.GetLogger().ChildLogger(map[string]interface{}{"pkg": "h4"}),
		timeout: readTimeout,
		fr:      newFrame(rxQueue),
		rxQueue: rxQueue,
		done:    make(chan struct{}),
	}
}

// Read returns the next complete HCI packet. It times out rather than
// blocking forever so callers can notice a dead controller.
func (h *h4) Read(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.rmu.Lock()
	defer h.rmu.Unlock()

	select {
	case t := <-h.rxQueue:
		if len(p) < len(t) {
			return 0, errors.New("buffer too small")
		}
		n := copy(p, t)
		if !h.isOpen() {
			return 0, io.EOF
		}
		return n, nil

	case <-h.done:
		return 0, io.EOF

	case <-time.After(h.timeout):
		return 0, ErrReadTimeout
	}
}

func (h *h4) Write(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()
	n, err := h.sp.Write(p)
	return n, errors.Wrap(err, "can't write h4")
}

func (h *h4) Close() error {
	h.cmu.Lock()
	defer h.cmu.Unlock()

	select {
	case <-h.done:
		return nil
	default:
		close(h.done)
		h.rmu.Lock()
		err := h.sp.Close()
		h.rmu.Unlock()
		return errors.Wrap(err, "can't close h4")
	}
}

func (h *h4) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return h.sp != nil
	}
}

func (h *h4) rxLoop() {
	tmp := make([]byte, 512)
	for {
		select {
		case <-h.done:
			h.log.Debug("rx loop stopped")
			return
		default:
		}

		n, err := h.sp.Read(tmp)
		if err != nil || n == 0 {
			continue
		}
		h.fr.Assemble(tmp[:n])
	}
}

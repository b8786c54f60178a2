// Package loopback implements an in-memory Controller backed by a
// simulated central. It backs the example programs and integration
// tests where no radio hardware is available.
package loopback

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/everyremote/hid"
)

// Controller is an in-memory BLE controller. The device side talks to
// it through the hid.Controller interface; tests and examples drive the
// peer side through the Central methods.
type Controller struct {
	mu sync.Mutex

	handler hid.EventHandler
	cfg     hid.StackConfig
	active  bool

	nextHandle  uint16
	attributes  map[uint16][]byte
	advertising bool
	payload     []byte

	conn      uint16
	connected bool

	notifications chan Notification
}

// Notification is one value pushed to the simulated central.
type Notification struct {
	Handle uint16
	Value  []byte
}

// New returns an inactive loopback controller.
func New() *Controller {
	return &Controller{
		nextHandle:    1,
		attributes:    make(map[uint16][]byte),
		notifications: make(chan Notification, 32),
	}
}

func (c *Controller) SetEventHandler(h hid.EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

func (c *Controller) Activate(cfg hid.StackConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return errors.New("already active")
	}
	c.active = true
	c.cfg = cfg
	return nil
}

func (c *Controller) Deactivate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	c.advertising = false
	c.connected = false
	return nil
}

func (c *Controller) ClearBondState() error {
	return nil
}

func (c *Controller) RegisterServices(svcs []hid.Service) ([][]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]uint16, 0, len(svcs))
	for _, svc := range svcs {
		var hh []uint16
		for _, ch := range svc.Characteristics {
			hh = append(hh, c.nextHandle)
			c.attributes[c.nextHandle] = nil
			c.nextHandle++
			for range ch.Descriptors {
				hh = append(hh, c.nextHandle)
				c.attributes[c.nextHandle] = nil
				c.nextHandle++
			}
		}
		out = append(out, hh)
	}
	return out, nil
}

func (c *Controller) Advertise(intervalMs uint32, payload []byte, connectable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return errors.New("stack not active")
	}
	c.advertising = true
	c.payload = append([]byte(nil), payload...)
	return nil
}

func (c *Controller) StopAdvertising() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advertising = false
	return nil
}

func (c *Controller) WriteLocal(handle uint16, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.attributes[handle]; !ok {
		return errors.Errorf("unknown handle %d", handle)
	}
	c.attributes[handle] = append([]byte(nil), value...)
	return nil
}

func (c *Controller) ReadLocal(handle uint16) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.attributes[handle]
	if !ok {
		return nil, errors.Errorf("unknown handle %d", handle)
	}
	return append([]byte(nil), v...), nil
}

func (c *Controller) Notify(conn, handle uint16, value []byte) error {
	c.mu.Lock()
	if !c.connected || conn != c.conn {
		c.mu.Unlock()
		return errors.Errorf("no connection %d", conn)
	}
	c.attributes[handle] = append([]byte(nil), value...)
	c.mu.Unlock()

	select {
	case c.notifications <- Notification{Handle: handle, Value: append([]byte(nil), value...)}:
	default:
		// central not draining; drop
	}
	return nil
}

func (c *Controller) Disconnect(conn uint16) error {
	c.mu.Lock()
	if !c.connected || conn != c.conn {
		c.mu.Unlock()
		return nil
	}
	c.connected = false
	handler := c.handler
	c.mu.Unlock()

	if handler != nil {
		handler(hid.CentralDisconnected{Conn: conn})
	}
	return nil
}

func (c *Controller) RespondPasskey(conn uint16, action hid.PasskeyAction, passkey uint32) error {
	return nil
}

func (c *Controller) SetMTU(mtu uint16) error {
	return nil
}

// IsAdvertising reports whether the device side started advertising.
func (c *Controller) IsAdvertising() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advertising
}

// Payload returns the last advertising payload.
func (c *Controller) Payload() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.payload...)
}

// Notifications returns the channel carrying values notified to the
// simulated central.
func (c *Controller) Notifications() <-chan Notification {
	return c.notifications
}

// Connect simulates a central connecting. It fails unless the device is
// advertising.
func (c *Controller) Connect(conn uint16) error {
	c.mu.Lock()
	if !c.advertising {
		c.mu.Unlock()
		return errors.New("device is not advertising")
	}
	c.conn = conn
	c.connected = true
	c.advertising = false
	handler := c.handler
	c.mu.Unlock()

	if handler == nil {
		return errors.New("no event handler")
	}
	handler(hid.CentralConnected{Conn: conn})
	return nil
}

// WriteCharacteristic simulates a central write.
func (c *Controller) WriteCharacteristic(handle uint16, value []byte) (hid.Result, error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return hid.Result{}, errors.New("not connected")
	}
	conn := c.conn
	handler := c.handler
	c.mu.Unlock()

	res := handler(hid.CharacteristicWritten{Conn: conn, Handle: handle, Value: value})
	if res.Status == hid.AttSuccess {
		c.mu.Lock()
		c.attributes[handle] = append([]byte(nil), value...)
		c.mu.Unlock()
	}
	return res, nil
}

// ReadCharacteristic simulates a central read: the device authorizes the
// request, then the value comes out of the attribute database.
func (c *Controller) ReadCharacteristic(handle uint16) ([]byte, error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil, errors.New("not connected")
	}
	conn := c.conn
	handler := c.handler
	c.mu.Unlock()

	res := handler(hid.ReadRequest{Conn: conn, Handle: handle})
	if res.Status != hid.AttSuccess {
		return nil, errors.Errorf("read rejected: %s", res.Status)
	}
	return c.ReadLocal(handle)
}

// Encrypt simulates the link going encrypted after pairing.
func (c *Controller) Encrypt(authenticated, bonded bool, keySize uint8) error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return errors.New("not connected")
	}
	conn := c.conn
	handler := c.handler
	c.mu.Unlock()

	handler(hid.EncryptionChanged{
		Conn:          conn,
		Encrypted:     true,
		Authenticated: authenticated,
		Bonded:        bonded,
		KeySize:       keySize,
	})
	return nil
}

var _ hid.Controller = (*Controller)(nil)

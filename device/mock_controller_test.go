package device

import (
	"sync"

	"github.com/everyremote/hid"
)

type notifyCall struct {
	conn   uint16
	handle uint16
	value  []byte
}

type passkeyCall struct {
	conn    uint16
	action  hid.PasskeyAction
	passkey uint32
}

// mockController records every stack interaction and assigns sequential
// attribute handles at registration.
type mockController struct {
	mu sync.Mutex

	handler hid.EventHandler

	active       bool
	activateErr  error
	cfg          hid.StackConfig
	bondsCleared int

	registered  []hid.Service
	registerErr error
	nextHandle  uint16

	advertises  int
	stops       int
	lastPayload []byte

	localValues map[uint16][]byte
	notifies    []notifyCall
	disconnects []uint16
	passkeys    []passkeyCall
	mtu         uint16
}

func newMockController() *mockController {
	return &mockController{
		nextHandle:  1,
		localValues: make(map[uint16][]byte),
	}
}

func (m *mockController) SetEventHandler(h hid.EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

func (m *mockController) Activate(cfg hid.StackConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activateErr != nil {
		return m.activateErr
	}
	m.active = true
	m.cfg = cfg
	return nil
}

func (m *mockController) Deactivate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	return nil
}

func (m *mockController) ClearBondState() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bondsCleared++
	return nil
}

func (m *mockController) RegisterServices(svcs []hid.Service) ([][]uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	m.registered = append(m.registered, svcs...)

	out := make([][]uint16, 0, len(svcs))
	for _, svc := range svcs {
		var hh []uint16
		for _, ch := range svc.Characteristics {
			hh = append(hh, m.nextHandle)
			m.nextHandle++
			for range ch.Descriptors {
				hh = append(hh, m.nextHandle)
				m.nextHandle++
			}
		}
		out = append(out, hh)
	}
	return out, nil
}

func (m *mockController) Advertise(intervalMs uint32, payload []byte, connectable bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advertises++
	m.lastPayload = append([]byte(nil), payload...)
	return nil
}

func (m *mockController) StopAdvertising() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return nil
}

func (m *mockController) WriteLocal(handle uint16, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.localValues[handle] = append([]byte(nil), value...)
	return nil
}

func (m *mockController) ReadLocal(handle uint16) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.localValues[handle]...), nil
}

func (m *mockController) Notify(conn, handle uint16, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.localValues[handle] = append([]byte(nil), value...)
	m.notifies = append(m.notifies, notifyCall{conn: conn, handle: handle, value: append([]byte(nil), value...)})
	return nil
}

func (m *mockController) Disconnect(conn uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnects = append(m.disconnects, conn)
	return nil
}

func (m *mockController) RespondPasskey(conn uint16, action hid.PasskeyAction, passkey uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passkeys = append(m.passkeys, passkeyCall{conn: conn, action: action, passkey: passkey})
	return nil
}

func (m *mockController) SetMTU(mtu uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mtu = mtu
	return nil
}

var _ hid.Controller = (*mockController)(nil)

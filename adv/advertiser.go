package adv

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/everyremote/hid"
)

// DefaultIntervalMs is the advertising interval used when the config does
// not specify one.
const DefaultIntervalMs = 100

// Controller is the slice of the radio surface the advertiser drives.
type Controller interface {
	Advertise(intervalMs uint32, payload []byte, connectable bool) error
	StopAdvertising() error
}

// Config describes one advertising session. The payload is built once at
// construction; reconfigure by building a new Advertiser.
type Config struct {
	Name       string
	Services   []hid.UUID
	Appearance uint16
	IntervalMs uint32
}

// BuildPayload deterministically assembles the advertising payload: flags,
// name (if non-empty), one 16-bit UUID record per two-byte service UUID,
// then appearance (if non-zero).
func BuildPayload(cfg Config) ([]byte, error) {
	fields := []Field{Flags(FlagGeneralDiscoverable | FlagLEOnly)}
	if cfg.Name != "" {
		fields = append(fields, CompleteName(cfg.Name))
	}
	for _, u := range cfg.Services {
		fields = append(fields, AllUUID16(u))
	}
	if cfg.Appearance != 0 {
		fields = append(fields, Appearance(cfg.Appearance))
	}

	p, err := NewPacket(fields...)
	if err != nil {
		return nil, errors.Wrap(err, "can't build advertising payload")
	}
	return p.Bytes(), nil
}

// Advertiser toggles connectable advertising of a fixed payload. Start and
// Stop are idempotent; the advertising flag is owned exclusively by this
// type.
type Advertiser struct {
	ctrl     Controller
	payload  []byte
	interval uint32
	log      hid.Logger

	mu          sync.Mutex
	advertising bool
}

// New builds the payload from cfg and returns an advertiser driving ctrl.
func New(ctrl Controller, cfg Config) (*Advertiser, error) {
	payload, err := BuildPayload(cfg)
	if err != nil {
		return nil, err
	}
	interval := cfg.IntervalMs
	if interval == 0 {
		interval = DefaultIntervalMs
	}
	return &Advertiser{
		ctrl:     ctrl,
		payload:  payload,
		interval: interval,
		log:      hid.GetLogger().ChildLogger(map[string]interface{}{"pkg": "adv"}),
	}, nil
}

// Payload returns the built advertising payload.
func (a *Advertiser) Payload() []byte {
	return a.payload
}

// Start begins connectable advertising with no enforced timeout. Calling
// it while already advertising is a no-op.
func (a *Advertiser) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.advertising {
		return nil
	}
	if err := a.ctrl.Advertise(a.interval, a.payload, true); err != nil {
		return errors.Wrap(err, "can't start advertising")
	}
	a.advertising = true
	a.log.Debug("advertising started")
	return nil
}

// Stop cancels advertising. Calling it while not advertising is a no-op.
func (a *Advertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.advertising {
		return nil
	}
	if err := a.ctrl.StopAdvertising(); err != nil {
		return errors.Wrap(err, "can't stop advertising")
	}
	a.advertising = false
	a.log.Debug("advertising stopped")
	return nil
}

// IsAdvertising reports whether the advertiser is currently advertising.
func (a *Advertiser) IsAdvertising() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.advertising
}

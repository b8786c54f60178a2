package device

import "github.com/everyremote/hid"

// HandleEvent dispatches a controller event to its handler and returns
// the handler's synchronous answer. Events are handled in arrival order;
// no handler blocks on another BLE operation.
func (d *Device) HandleEvent(e hid.Event) hid.Result {
	switch ev := e.(type) {
	case hid.CentralConnected:
		return d.onConnect(ev)
	case hid.CentralDisconnected:
		return d.onDisconnect(ev)
	case hid.CharacteristicWritten:
		return d.onWrite(ev)
	case hid.ReadRequest:
		return d.onReadRequest(ev)
	case hid.MTUExchanged:
		return d.onMTUExchanged(ev)
	case hid.EncryptionChanged:
		return d.onEncryptionChanged(ev)
	case hid.PasskeyRequested:
		return d.onPasskeyRequested(ev)
	case hid.SetSecret:
		return d.onSetSecret(ev)
	case hid.GetSecret:
		return d.onGetSecret(ev)
	default:
		d.log.Warnf("unhandled controller event %T", e)
		return hid.Result{Status: hid.AttSuccess}
	}
}

func (d *Device) onConnect(ev hid.CentralConnected) hid.Result {
	d.mu.Lock()
	d.conn = ev.Conn
	d.hasConn = true
	d.mu.Unlock()

	d.setState(hid.StateConnected)
	d.log.Infof("central connected: handle %d", ev.Conn)
	return hid.Result{Status: hid.AttSuccess}
}

func (d *Device) onDisconnect(ev hid.CentralDisconnected) hid.Result {
	// A disconnect only means something while connected.
	if d.State() != hid.StateConnected {
		return hid.Result{Status: hid.AttSuccess}
	}

	d.mu.Lock()
	d.hasConn = false
	d.conn = 0
	d.encrypted = false
	d.authenticated = false
	d.bonded = false
	d.keySize = 0
	ready := d.ready
	d.mu.Unlock()

	d.setState(hid.StateIdle)
	d.log.Info("central disconnected")

	if ready {
		if err := d.StartAdvertising(); err != nil {
			d.log.Errorf("failed to resume advertising: %s", err)
		}
	}
	return hid.Result{Status: hid.AttSuccess}
}

func (d *Device) onWrite(ev hid.CharacteristicWritten) hid.Result {
	d.mu.Lock()
	entry, known := d.table[ev.Handle]
	if known {
		entry.value = append([]byte(nil), ev.Value...)
		d.table[ev.Handle] = entry
	}
	d.mu.Unlock()

	if !known {
		// Unknown handles are ignored; the acknowledgment stays clean.
		return hid.Result{Status: hid.AttSuccess}
	}

	if d.profile != nil && d.profile.HandleWrite(ev.Handle, ev.Value) {
		d.log.Debugf("profile consumed write to %s", entry.label)
	}
	return hid.Result{Status: hid.AttSuccess}
}

func (d *Device) onReadRequest(ev hid.ReadRequest) hid.Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasConn || ev.Conn != d.conn {
		return hid.Result{Status: hid.AttErrReadNotPermitted}
	}
	if _, ok := d.table[ev.Handle]; !ok {
		return hid.Result{Status: hid.AttErrInvalidHandle}
	}
	// The stored value is served as-is; nothing is recomputed here.
	return hid.Result{Status: hid.AttSuccess}
}

func (d *Device) onMTUExchanged(ev hid.MTUExchanged) hid.Result {
	d.mu.Lock()
	d.mtu = ev.MTU
	d.mu.Unlock()

	if err := d.ctrl.SetMTU(ev.MTU); err != nil {
		d.log.Errorf("failed to apply mtu %d: %s", ev.MTU, err)
	}
	return hid.Result{Status: hid.AttSuccess}
}

func (d *Device) onEncryptionChanged(ev hid.EncryptionChanged) hid.Result {
	d.mu.Lock()
	d.encrypted = ev.Encrypted
	d.authenticated = ev.Authenticated
	d.bonded = ev.Bonded
	d.keySize = ev.KeySize
	d.mu.Unlock()

	d.log.Infof("encryption: %v, authenticated: %v, bonded: %v, key size: %d",
		ev.Encrypted, ev.Authenticated, ev.Bonded, ev.KeySize)
	return hid.Result{Status: hid.AttSuccess}
}

func (d *Device) onPasskeyRequested(ev hid.PasskeyRequested) hid.Result {
	d.mu.Lock()
	passkey := d.passkey
	cb := d.passkeyCallback
	d.mu.Unlock()

	var answer uint32
	switch ev.Action {
	case hid.PasskeyActionDisplay:
		answer = passkey
	case hid.PasskeyActionNumericComparison:
		// Deliberate trust-everyone policy: numeric comparison is
		// auto-confirmed because the remote has no display to show the
		// number on. This forfeits person-in-the-middle protection.
		answer = 1
	case hid.PasskeyActionInput:
		if cb != nil {
			answer = cb()
		} else {
			answer = passkey
		}
	default:
		d.log.Warnf("unknown passkey action %d", ev.Action)
		return hid.Result{Status: hid.AttSuccess}
	}

	if err := d.ctrl.RespondPasskey(ev.Conn, ev.Action, answer); err != nil {
		d.log.Errorf("failed to respond to passkey action %d: %s", ev.Action, err)
	}
	return hid.Result{Status: hid.AttSuccess}
}

func (d *Device) onSetSecret(ev hid.SetSecret) hid.Result {
	if ev.Value == nil {
		if !d.store.Has(ev.Kind, ev.Key) {
			return hid.Result{OK: false}
		}
		d.store.Remove(ev.Kind, ev.Key)
		d.store.Save()
		return hid.Result{OK: true}
	}

	d.store.Add(ev.Kind, ev.Key, ev.Value)
	d.store.Save()
	return hid.Result{OK: true}
}

func (d *Device) onGetSecret(ev hid.GetSecret) hid.Result {
	v, ok := d.store.Get(ev.Kind, ev.Key, ev.Index)
	return hid.Result{Value: v, OK: ok}
}

// Package keystore stores BLE bonding secrets. Secrets are identified by
// a (kind, key) pair and kept in insertion order so the controller can
// enumerate secrets of a kind by index during bonding resolution. The
// persistence backend is injected; without one the store degrades to
// memory-only.
package keystore

import (
	"sync"

	"github.com/everyremote/hid"
)

// blobName is the record the serialized secret set is stored under.
const blobName = "Keys"

// Secret is a single bonding secret. Kind and Key form its identity.
type Secret struct {
	Kind  int
	Key   []byte
	Value []byte
}

type secretID struct {
	kind int
	key  string
}

// Store is an ordered set of bonding secrets with an optional persistence
// backend.
type Store struct {
	mu      sync.RWMutex
	secrets map[secretID][]byte
	order   []secretID
	backend BlobBackend
	log     hid.Logger

	warnedNoBackend bool
}

// New returns a Store persisting through backend. A nil backend yields a
// memory-only store whose Load and Save are no-ops.
func New(backend BlobBackend) *Store {
	return &Store{
		secrets: make(map[secretID][]byte),
		backend: backend,
		log:     hid.GetLogger().ChildLogger(map[string]interface{}{"pkg": "keystore"}),
	}
}

// Add inserts or overwrites the secret at identity (kind, key).
func (s *Store) Add(kind int, key, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := secretID{kind: kind, key: string(key)}
	if _, ok := s.secrets[id]; !ok {
		s.order = append(s.order, id)
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.secrets[id] = v
}

// Get looks a secret up. With a non-nil key it is an exact lookup; with a
// nil key it returns the index-th secret of the kind in insertion order.
// The second return is false when no secret matches.
func (s *Store) Get(kind int, key []byte, index int) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if key != nil {
		v, ok := s.secrets[secretID{kind: kind, key: string(key)}]
		if !ok {
			return nil, false
		}
		return append([]byte(nil), v...), true
	}

	i := 0
	for _, id := range s.order {
		if id.kind != kind {
			continue
		}
		if i == index {
			return append([]byte(nil), s.secrets[id]...), true
		}
		i++
	}
	return nil, false
}

// Remove deletes the identity (kind, key) if present.
func (s *Store) Remove(kind int, key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := secretID{kind: kind, key: string(key)}
	if _, ok := s.secrets[id]; !ok {
		return
	}
	delete(s.secrets, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Has reports whether the identity (kind, key) is present.
func (s *Store) Has(kind int, key []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.secrets[secretID{kind: kind, key: string(key)}]
	return ok
}

// Clear empties the in-memory set. Call Save to persist the clearing.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.secrets = make(map[secretID][]byte)
	s.order = nil
}

// Count returns the number of stored secrets.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Secrets returns a snapshot of all secrets in insertion order.
func (s *Store) Secrets() []Secret {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Secret, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Secret{
			Kind:  id.kind,
			Key:   []byte(id.key),
			Value: append([]byte(nil), s.secrets[id]...),
		})
	}
	return out
}

// Load merges persisted secrets into the store. An absent or empty backing
// record is not an error and leaves the set unchanged. Returns true when
// secrets were loaded.
func (s *Store) Load() bool {
	if !s.backendAvailable() {
		return false
	}

	data, err := s.backend.GetBlob(blobName)
	if err == ErrNoBlob || len(data) == 0 {
		s.log.Debug("no saved bonding keys")
		return false
	}
	if err != nil {
		s.log.Errorf("failed to load secrets: %s", err)
		return false
	}

	entries, err := decodeSecrets(data)
	if err != nil {
		// Malformed persisted payload; discard rather than fail.
		s.log.Errorf("discarding malformed secret blob: %s", err)
		return false
	}

	s.mu.Lock()
	for _, e := range entries {
		id := secretID{kind: e.Kind, key: string(e.Key)}
		if _, ok := s.secrets[id]; !ok {
			s.order = append(s.order, id)
		}
		s.secrets[id] = e.Value
	}
	s.mu.Unlock()

	s.log.Infof("loaded %d bonding keys", len(entries))
	return true
}

// Save serializes every secret to the backend. Failures, including the
// serialized blob exceeding the backend's record size, are logged and
// reported as false, never fatal.
func (s *Store) Save() bool {
	if !s.backendAvailable() {
		return false
	}

	data, err := encodeSecrets(s.Secrets())
	if err != nil {
		s.log.Errorf("failed to serialize secrets: %s", err)
		return false
	}

	if err := s.backend.SetBlob(blobName, data); err != nil {
		s.log.Errorf("failed to save secrets: %s", err)
		return false
	}

	s.log.Debugf("saved %d bonding keys", s.Count())
	return true
}

func (s *Store) backendAvailable() bool {
	if s.backend != nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.warnedNoBackend {
		s.log.Warn("no persistence backend, bonding secrets are memory-only")
		s.warnedNoBackend = true
	}
	return false
}

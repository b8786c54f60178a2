package keystore

import (
	"bytes"
	"testing"
)

const (
	kindOurSec  = 1
	kindPeerSec = 2
)

func TestStore_AddGetExact(t *testing.T) {
	s := New(nil)
	s.Add(kindOurSec, []byte("key1"), []byte("value1"))

	v, ok := s.Get(kindOurSec, []byte("key1"), 0)
	if !ok {
		t.Fatal("expected to find secret")
	}
	if !bytes.Equal(v, []byte("value1")) {
		t.Fatalf("wrong value: %q", v)
	}

	if _, ok := s.Get(kindOurSec, []byte("missing"), 0); ok {
		t.Fatal("expected not-found for missing key")
	}
	if _, ok := s.Get(kindPeerSec, []byte("key1"), 0); ok {
		t.Fatal("expected not-found for wrong kind")
	}
}

func TestStore_AddOverwritesIdentity(t *testing.T) {
	s := New(nil)
	s.Add(kindOurSec, []byte("k"), []byte("old"))
	s.Add(kindOurSec, []byte("k"), []byte("new"))

	if s.Count() != 1 {
		t.Fatalf("expected 1 secret, got %d", s.Count())
	}
	v, _ := s.Get(kindOurSec, []byte("k"), 0)
	if !bytes.Equal(v, []byte("new")) {
		t.Fatalf("expected overwrite, got %q", v)
	}
}

func TestStore_IndexLookupInsertionOrder(t *testing.T) {
	s := New(nil)
	s.Add(kindOurSec, []byte("a"), []byte("va"))
	s.Add(kindPeerSec, []byte("x"), []byte("vx"))
	s.Add(kindOurSec, []byte("b"), []byte("vb"))
	s.Add(kindOurSec, []byte("c"), []byte("vc"))

	want := [][]byte{[]byte("va"), []byte("vb"), []byte("vc")}
	for i, w := range want {
		v, ok := s.Get(kindOurSec, nil, i)
		if !ok {
			t.Fatalf("index %d: expected a secret", i)
		}
		if !bytes.Equal(v, w) {
			t.Fatalf("index %d: got %q, want %q", i, v, w)
		}
	}

	if _, ok := s.Get(kindOurSec, nil, 3); ok {
		t.Fatal("expected not-found past the end of the kind")
	}
	if _, ok := s.Get(kindPeerSec, nil, 1); ok {
		t.Fatal("expected not-found past the end of the kind")
	}
}

func TestStore_RemoveAndHas(t *testing.T) {
	s := New(nil)
	s.Add(kindOurSec, []byte("k"), []byte("v"))

	if !s.Has(kindOurSec, []byte("k")) {
		t.Fatal("expected Has to be true")
	}
	s.Remove(kindOurSec, []byte("k"))
	if s.Has(kindOurSec, []byte("k")) {
		t.Fatal("expected Has to be false after remove")
	}

	// Removing again is a no-op.
	s.Remove(kindOurSec, []byte("k"))
	if s.Count() != 0 {
		t.Fatalf("expected empty store, got %d", s.Count())
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	backend := NewMemoryBackend()

	s := New(backend)
	s.Add(kindOurSec, []byte("a"), []byte{0x01, 0x02})
	s.Add(kindPeerSec, []byte("b"), []byte{0x03})
	s.Add(kindOurSec, []byte("c"), []byte{0x04, 0x05, 0x06})
	s.Remove(kindPeerSec, []byte("b"))
	if !s.Save() {
		t.Fatal("save failed")
	}

	fresh := New(backend)
	if !fresh.Load() {
		t.Fatal("load failed")
	}

	got := fresh.Secrets()
	want := s.Secrets()
	if len(got) != len(want) {
		t.Fatalf("got %d secrets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Kind != want[i].Kind ||
			!bytes.Equal(got[i].Key, want[i].Key) ||
			!bytes.Equal(got[i].Value, want[i].Value) {
			t.Fatalf("secret %d differs: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStore_LoadEmptyBackendIsNotAnError(t *testing.T) {
	s := New(NewMemoryBackend())
	if s.Load() {
		t.Fatal("expected Load to report nothing loaded")
	}
	if s.Count() != 0 {
		t.Fatal("expected store unchanged")
	}
}

func TestStore_NoBackendDegradesToMemoryOnly(t *testing.T) {
	s := New(nil)
	s.Add(kindOurSec, []byte("k"), []byte("v"))

	if s.Save() {
		t.Fatal("expected Save to be a no-op returning false")
	}
	if s.Load() {
		t.Fatal("expected Load to be a no-op returning false")
	}
	if !s.Has(kindOurSec, []byte("k")) {
		t.Fatal("in-memory contents must survive no-op persistence")
	}
}

func TestStore_OversizedSaveFails(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend)
	s.Add(kindOurSec, []byte("k"), []byte("v"))
	if !s.Save() {
		t.Fatal("seed save failed")
	}

	dir := t.TempDir()
	fb, err := NewFileBackendWithLimit(dir, 16)
	if err != nil {
		t.Fatal(err)
	}
	bounded := New(fb)
	bounded.Add(kindOurSec, []byte("some-long-key-material"), bytes.Repeat([]byte{0xAB}, 64))
	if bounded.Save() {
		t.Fatal("expected oversized save to fail")
	}

	// The failed save must not have produced a record.
	fresh := New(fb)
	if fresh.Load() {
		t.Fatal("expected nothing persisted after failed save")
	}
}

func TestStore_ClearDoesNotPersist(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend)
	s.Add(kindOurSec, []byte("k"), []byte("v"))
	s.Save()

	s.Clear()
	if s.Count() != 0 {
		t.Fatal("expected empty store after clear")
	}

	// Without an explicit Save the backend still holds the old set.
	fresh := New(backend)
	if !fresh.Load() {
		t.Fatal("expected persisted secrets to survive clear")
	}
	if fresh.Count() != 1 {
		t.Fatalf("expected 1 persisted secret, got %d", fresh.Count())
	}

	s.Save()
	again := New(backend)
	again.Load()
	if again.Count() != 0 {
		t.Fatal("expected cleared set after explicit save")
	}
}

func TestStore_MalformedBlobDiscarded(t *testing.T) {
	backend := NewMemoryBackend()
	if err := backend.SetBlob(blobName, []byte(`{"not":"an array"}`)); err != nil {
		t.Fatal(err)
	}

	s := New(backend)
	if s.Load() {
		t.Fatal("expected malformed blob to be discarded")
	}
	if s.Count() != 0 {
		t.Fatal("expected store unchanged")
	}

	if err := backend.SetBlob(blobName, []byte(`[[1,"!!!","???"]]`)); err != nil {
		t.Fatal(err)
	}
	if s.Load() {
		t.Fatal("expected blob with invalid base64 to be discarded")
	}
}

func TestFileBackend_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := fb.GetBlob("Keys"); err != ErrNoBlob {
		t.Fatalf("expected ErrNoBlob, got %v", err)
	}

	if err := fb.SetBlob("Keys", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	data, err := fb.GetBlob("Keys")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte(`[]`)) {
		t.Fatalf("got %q", data)
	}
}

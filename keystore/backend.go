package keystore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// ErrNoBlob reports that a backend has no record under the requested name.
// It is the "first boot" case and is not treated as a failure.
var ErrNoBlob = errors.New("no stored blob")

// DefaultMaxBlobSize is the record size cap applied by the file backend
// when none is configured. It mirrors the NVS blob limit of the reference
// deployment.
const DefaultMaxBlobSize = 512

// BlobBackend is a persistence medium holding named binary records.
type BlobBackend interface {
	GetBlob(name string) ([]byte, error)
	SetBlob(name string, data []byte) error
}

// MemoryBackend is a volatile BlobBackend for tests and diskless
// deployments.
type MemoryBackend struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryBackend returns an empty volatile backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

func (m *MemoryBackend) GetBlob(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blobs[name]
	if !ok {
		return nil, ErrNoBlob
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryBackend) SetBlob(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

// FileBackend stores each record as a JSON file in a directory, with a
// hard cap on record size. Writes above the cap fail; they do not
// truncate an existing record.
type FileBackend struct {
	dir     string
	maxSize int
	mu      sync.Mutex
}

// NewFileBackend returns a backend rooted at dir with the default record
// size cap. The directory is created if missing.
func NewFileBackend(dir string) (*FileBackend, error) {
	return NewFileBackendWithLimit(dir, DefaultMaxBlobSize)
}

// NewFileBackendWithLimit returns a backend rooted at dir with an explicit
// record size cap.
func NewFileBackendWithLimit(dir string, maxSize int) (*FileBackend, error) {
	if maxSize <= 0 {
		return nil, errors.Errorf("invalid blob size limit %d", maxSize)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(err, "can't create blob directory")
	}
	return &FileBackend{dir: dir, maxSize: maxSize}, nil
}

func (f *FileBackend) GetBlob(name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := ioutil.ReadFile(f.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNoBlob
	}
	if err != nil {
		return nil, errors.Wrap(err, "can't read blob")
	}
	return data, nil
}

func (f *FileBackend) SetBlob(name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(data) > f.maxSize {
		return errors.Errorf("blob %q is %d bytes, limit is %d", name, len(data), f.maxSize)
	}
	if err := ioutil.WriteFile(f.path(name), data, 0600); err != nil {
		return errors.Wrap(err, "can't write blob")
	}
	return nil
}

func (f *FileBackend) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

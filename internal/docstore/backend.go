package docstore

import (
	"context"
	"errors"
	"sync"
)

// ErrMissing is returned by Backend.Read when a collection has never been written.
var ErrMissing = errors.New("docstore: collection not persisted")

// Backend persists whole collections as opaque JSON blobs.
type Backend interface {
	Read(ctx context.Context, collection string) ([]byte, error)
	Write(ctx context.Context, collection string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// MemoryBackend keeps collections in a map. Used by tests and dry runs.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Seed copies raw into the backend, replacing any existing collection.
func (m *MemoryBackend) Seed(collection string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[collection] = append([]byte(nil), raw...)
}

// Raw returns a copy of the persisted bytes for a collection.
func (m *MemoryBackend) Raw(collection string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[collection]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

func (m *MemoryBackend) Read(_ context.Context, collection string) ([]byte, error) {
	if b, ok := m.Raw(collection); ok {
		return b, nil
	}
	return nil, ErrMissing
}

func (m *MemoryBackend) Write(_ context.Context, collection string, data []byte) error {
	m.Seed(collection, data)
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }

// Package memory provides an in-process storage.Medium.
package memory

import (
	"context"
	"sync"

	"github.com/hongminglow/red-syndicate/internal/storage"
)

var _ storage.Medium = (*Medium)(nil)

// Medium keeps values in a map. Contents are lost when the process exits.
type Medium struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New returns an empty Medium.
func New() *Medium {
	return &Medium{data: make(map[string][]byte)}
}

func (m *Medium) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *Medium) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Medium) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Medium) Ping(context.Context) error { return nil }

func (m *Medium) Close() error { return nil }

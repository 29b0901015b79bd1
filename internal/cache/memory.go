package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Memory is an in-process cache on ristretto. Keys are tracked on the side
// because ristretto only stores their hashes.
type Memory struct {
	store *ristretto.Cache[string, []byte]

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemory creates a cache holding at most maxBytes of values.
func NewMemory(maxBytes int64) (*Memory, error) {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &Memory{store: store, keys: make(map[string]struct{})}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.store.Get(key)
	if !ok {
		m.mu.Lock()
		delete(m.keys, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return v, true, nil
}

// Set tracks key before the value lands so DeletePrefix cannot miss it.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.keys[key] = struct{}{}
	m.mu.Unlock()
	if !m.store.SetWithTTL(key, value, int64(len(value)), ttl) {
		// Dropped by the admission policy; a later Set may succeed.
		return nil
	}
	m.store.Wait()
	return nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.keys {
		if strings.HasPrefix(key, prefix) {
			m.store.Del(key)
			delete(m.keys, key)
		}
	}
	return nil
}

func (m *Memory) Close() {
	m.store.Close()
}

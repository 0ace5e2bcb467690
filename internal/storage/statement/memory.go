package statement

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend keeps documents in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[Collection]map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[Collection]map[string][]byte)}
}

func (m *MemoryBackend) Get(ctx context.Context, c Collection, symbol string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[c][symbol]
	if !ok {
		return nil, notFound(c, symbol)
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

func (m *MemoryBackend) Put(ctx context.Context, c Collection, symbol string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.docs[c] == nil {
		m.docs[c] = make(map[string][]byte)
	}
	stored := make([]byte, len(doc))
	copy(stored, doc)
	m.docs[c][symbol] = stored
	return nil
}

func (m *MemoryBackend) Symbols(ctx context.Context, c Collection) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.docs[c]))
	for sym := range m.docs[c] {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryBackend) Close() error {
	return nil
}

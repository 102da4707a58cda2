package cart

import "sync"

// MemoryStorage is an in-process Storage backend, the moral equivalent of
// a browser tab's local storage.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, nil
}

func (m *MemoryStorage) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]byte, len(value))
	copy(copied, value)
	m.values[key] = copied
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

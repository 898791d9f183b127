package database

import (
	"context"
	"sort"
	"sync"

	"github.com/Nystya/atomic-kv/domain"
)

type MemoryDatabase struct {
	cache map[string]*domain.Entry

	lock *sync.RWMutex
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		cache: make(map[string]*domain.Entry),
		lock:  &sync.RWMutex{},
	}
}

func (m *MemoryDatabase) Put(ctx context.Context, key string, value interface{}) error {
	data, err := EncodeValue(key, value)
	if err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.cache[key] = &domain.Entry{Key: key, Value: data}

	return nil
}

func (m *MemoryDatabase) PutBatch(ctx context.Context, txID string, entries []*domain.Entry) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, entry := range entries {
		m.cache[entry.Key] = &domain.Entry{TxID: txID, Key: entry.Key, Value: entry.Value}
	}

	return nil
}

func (m *MemoryDatabase) Get(ctx context.Context, key string) (*domain.Entry, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	val, ok := m.cache[key]
	if !ok {
		return nil, &domain.NotFoundError{Key: key}
	}

	entry := *val

	return &entry, nil
}

func (m *MemoryDatabase) Delete(ctx context.Context, key string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.cache, key)
}

func (m *MemoryDatabase) DeleteAll(ctx context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.cache = make(map[string]*domain.Entry)

	return nil
}

// GetAllKeys returns the stored keys in sorted order.
func (m *MemoryDatabase) GetAllKeys() []string {
	m.lock.RLock()
	defer m.lock.RUnlock()

	keys := make([]string, 0, len(m.cache))

	for k := range m.cache {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

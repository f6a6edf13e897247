package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// kvStoreInMemory — key-value хранилище в памяти для локальной разработки и тестов.
type kvStoreInMemory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewKVStore возвращает in-memory реализацию KVStore.
func NewKVStore() *kvStoreInMemory {
	return &kvStoreInMemory{values: make(map[string]string)}
}

// Get возвращает значение или ErrKeyNotFound.
func (s *kvStoreInMemory) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

// Set перезаписывает значение.
func (s *kvStoreInMemory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Remove удаляет ключ, если он есть.
func (s *kvStoreInMemory) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Ping всегда успешен: хранилище живёт в процессе.
func (s *kvStoreInMemory) Ping(context.Context) error {
	return nil
}

// Len возвращает количество ключей (для тестов и отладки).
func (s *kvStoreInMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

var (
	_ domain.KVStore = (*kvStoreInMemory)(nil)
	_ domain.Pinger  = (*kvStoreInMemory)(nil)
)

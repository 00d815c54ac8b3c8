package inmemory

import (
	"context"
	"sync"

	"github.com/UkralStul/blogfront/internal/storage"
)

// Store реализует интерфейс Storage в памяти процесса.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	// копия, чтобы вызывающий не испортил сохраненное значение
	return append([]byte(nil), v...), nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *Store) Close() error { return nil }

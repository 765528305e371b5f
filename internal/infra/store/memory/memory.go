package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/davay42/sw-gallery/internal/domain"
)

// Store — реализация domain.BlobStore на map. Для тестов и запуска
// без внешней инфраструктуры.
type Store struct {
	mu sync.RWMutex
	m  map[string]domain.StoredItem
}

func New() *Store {
	return &Store{m: make(map[string]domain.StoredItem)}
}

func (s *Store) Get(ctx context.Context, filename string) (domain.StoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.m[filename]
	if !ok {
		return domain.StoredItem{}, fmt.Errorf("%q: %w", filename, domain.ErrNotFound)
	}
	out := it
	out.Blob = append([]byte(nil), it.Blob...)
	return out, nil
}

func (s *Store) GetAll(ctx context.Context) ([]domain.StoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.StoredItem, 0, len(s.m))
	for _, it := range s.m {
		it.Blob = nil // листинг — только метаданные
		items = append(items, it)
	}
	return items, nil
}

func (s *Store) Put(ctx context.Context, item domain.StoredItem) error {
	item.Blob = append([]byte(nil), item.Blob...)
	s.mu.Lock()
	s.m[item.Filename] = item
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(ctx context.Context, filename string) error {
	s.mu.Lock()
	delete(s.m, filename)
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() {}

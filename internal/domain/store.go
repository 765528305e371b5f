package domain

import "context"

// BlobStore — асинхронное k/v хранилище картинок, ключ — filename.
// Каждый вызов — отдельная транзакция стора; дополнительной блокировки
// поверх нет, при гонке по одному ключу побеждает последняя запись.
type BlobStore interface {
	// Get возвращает ErrNotFound, если ключа нет.
	Get(ctx context.Context, filename string) (StoredItem, error)
	// GetAll возвращает метаданные всех записей; Blob может быть nil.
	// Порядок не гарантируется.
	GetAll(ctx context.Context) ([]StoredItem, error)
	// Put полностью заменяет запись с тем же filename.
	Put(ctx context.Context, item StoredItem) error
	// Delete идемпотентен: отсутствие ключа — не ошибка.
	Delete(ctx context.Context, filename string) error
	Ping(ctx context.Context) error
	Close()
}

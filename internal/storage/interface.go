package storage

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, когда по ключу ничего не сохранено.
var ErrNotFound = errors.New("key not found")

// Storage определяет контракт для хранилищ клиентского состояния.
// Каждое значение перезаписывается целиком, побеждает последняя запись.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

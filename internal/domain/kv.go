package domain

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KVStore.Get for keys that were never
// written. Callers that treat absence as "no data yet" must check for
// it with errors.Is.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the durable string-keyed store the core persists through.
// Implementations live in internal/repository/kv and pkg/storage.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

package kv

import (
	"context"

	"artkit-backend/internal/domain"
)

// namespacedStore prefixes every key, isolating one user's favorites
// from another's while the core keeps using its canonical key names.
type namespacedStore struct {
	inner  domain.KVStore
	prefix string
}

// Namespaced wraps store so all keys are read and written under prefix.
func Namespaced(store domain.KVStore, prefix string) domain.KVStore {
	if prefix == "" {
		return store
	}
	return &namespacedStore{inner: store, prefix: prefix + ":"}
}

func (s *namespacedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *namespacedStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

package storage

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryKV keeps values in process memory. Nothing expires.
type MemoryKV struct {
	cache *cache.Cache
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{cache: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, ok := m.cache.Get(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	return v.(string), nil
}

func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Delete(key)
	return nil
}

var _ KV = (*MemoryKV)(nil)

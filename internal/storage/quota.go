package storage

import (
	"context"
	"errors"
	"sync"
)

// Quota caps the total bytes held by the keys written through it, the way a
// browser caps local storage. Sizes are learned from the inner store the
// first time a key is touched.
type Quota struct {
	inner KV
	limit int

	mu    sync.Mutex
	sizes map[string]int
}

// NewQuota wraps inner with a byte limit. A limit <= 0 disables the cap.
func NewQuota(inner KV, limit int) *Quota {
	return &Quota{inner: inner, limit: limit, sizes: make(map[string]int)}
}

func (q *Quota) Get(ctx context.Context, key string) (string, error) {
	v, err := q.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	q.mu.Lock()
	q.sizes[key] = len(key) + len(v)
	q.mu.Unlock()
	return v, nil
}

func (q *Quota) Set(ctx context.Context, key, value string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, known := q.sizes[key]; !known {
		current, err := q.inner.Get(ctx, key)
		switch {
		case err == nil:
			q.sizes[key] = len(key) + len(current)
		case errors.Is(err, ErrKeyNotFound):
		default:
			return err
		}
	}

	next := len(key) + len(value)
	if q.limit > 0 && q.usedLocked()-q.sizes[key]+next > q.limit {
		return ErrCapacityExceeded
	}
	if err := q.inner.Set(ctx, key, value); err != nil {
		return err
	}
	q.sizes[key] = next
	return nil
}

func (q *Quota) Delete(ctx context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.inner.Delete(ctx, key); err != nil {
		return err
	}
	delete(q.sizes, key)
	return nil
}

// Used returns the bytes currently accounted for.
func (q *Quota) Used() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.usedLocked()
}

func (q *Quota) usedLocked() int {
	total := 0
	for _, n := range q.sizes {
		total += n
	}
	return total
}

var _ KV = (*Quota)(nil)

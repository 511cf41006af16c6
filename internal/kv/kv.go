// Package kv persists named slots of opaque bytes. Values are round-tripped
// verbatim: no versioning, no migration.
package kv

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("kv: slot not found")

// UpdateFunc derives the new value of a slot from its current value. found is
// false when the slot does not exist yet. Returning an error aborts the write.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Update runs a read-modify-write of one slot atomically with respect to
	// other Update calls on the same backend.
	Update(ctx context.Context, key string, fn UpdateFunc) ([]byte, error)
}

// MemoryStore keeps slots in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[string][]byte{}}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, key string, fn UpdateFunc) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.slots[key]
	next, err := fn(append([]byte(nil), cur...), ok)
	if err != nil {
		return nil, err
	}
	m.slots[key] = append([]byte(nil), next...)
	return next, nil
}

// Package callregistry tracks calls in progress and enforces the concurrent
// call limit, either per process or across instances through Redis.
package callregistry

import (
	"context"
	"errors"
	"sync"
)

var ErrCapacityReached = errors.New("call capacity reached")

// Registry admits and releases calls by session id.
type Registry interface {
	// Acquire admits a call, or returns ErrCapacityReached. Acquiring an id
	// that is already admitted succeeds without taking a second slot.
	Acquire(ctx context.Context, sessionID string) error
	Release(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int, error)
	Capacity() int
}

// MemoryRegistry is a Registry local to this process.
type MemoryRegistry struct {
	mu       sync.Mutex
	capacity int
	active   map[string]struct{}
}

func NewMemoryRegistry(capacity int) *MemoryRegistry {
	return &MemoryRegistry{capacity: capacity, active: make(map[string]struct{})}
}

func (r *MemoryRegistry) Acquire(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[sessionID]; ok {
		return nil
	}
	if len(r.active) >= r.capacity {
		return ErrCapacityReached
	}
	r.active[sessionID] = struct{}{}
	return nil
}

func (r *MemoryRegistry) Release(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, sessionID)
	return nil
}

func (r *MemoryRegistry) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active), nil
}

func (r *MemoryRegistry) Capacity() int {
	return r.capacity
}

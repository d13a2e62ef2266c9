package quanta

import "sync"

// SafePool wraps a Pool with a mutex so it can be shared across
// goroutines. The cross-structure invariants between the slot list and
// the size heap span every operation, so locking is coarse: one mutex
// around the whole call, not per-structure, exactly as spec.md's
// concurrency model assumes for the bare Pool.
type SafePool struct {
	mu   sync.Mutex
	pool *Pool
}

// NewSafePool wraps an already-initialized Pool.
func NewSafePool(pool *Pool) *SafePool {
	return &SafePool{pool: pool}
}

// Deinit releases the underlying Pool's resources.
func (s *SafePool) Deinit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.Deinit()
}

// Allocate is Pool.Allocate under the pool's mutex.
func (s *SafePool) Allocate(size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Allocate(size)
}

// Release is Pool.Release under the pool's mutex.
func (s *SafePool) Release(ptr []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Release(ptr)
}

// Resize is Pool.Resize under the pool's mutex.
func (s *SafePool) Resize(ptr []byte, size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Resize(ptr, size)
}

// Stats is Pool.Stats under the pool's mutex.
func (s *SafePool) Stats() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Stats()
}

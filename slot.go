package leftright

import "golang.org/x/sys/cpu"

// slot is one of the two copies of the value together with the lock
// guarding it. Readers take it shared, the single writer takes it exclusive.
type slot[T any] struct {
	lock RWLocker // guards val
	val  T        // one copy of the value
	_    cpu.CacheLinePad
}

// rlock takes shared access without waiting.
func (s *slot[T]) rlock() bool {
	return s.lock.TryRLock()
}

// load copies the value out. Caller must hold the lock in any mode.
func (s *slot[T]) load() T {
	return s.val
}

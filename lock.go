package leftright

import (
	"runtime"
	"sync/atomic"

	"github.com/valyala/fastrand"
)

// RWLocker is the busy-wait lock a Buffer places in front of each slot.
// Implementations must not sleep: Lock spins until every shared holder has
// left, TryRLock never waits.
//
// *SpinRWLock is the default. *sync.RWMutex also satisfies RWLocker.
type RWLocker interface {
	Lock()
	Unlock()
	TryRLock() bool
	RUnlock()
}

const (
	writerBit  = 1      // bit 0: held exclusive
	readerUnit = 1 << 1 // bits 1+: number of shared holders
)

const goschedEvery = 64 // spins before a spinning caller starts yielding

// SpinRWLock is a spin-based reader-writer lock for a single writer.
// The zero value is unlocked.
//
// Exclusive acquisition fails fast: if another exclusive holder exists the
// only party that could release it is a second writer or the caller itself,
// so Lock panics with ErrConcurrentWrite instead of spinning forever.
type SpinRWLock struct {
	state atomic.Uint32
}

// Lock acquires exclusive access, waiting for shared holders to leave.
func (l *SpinRWLock) Lock() {
	var spins uint32
	for {
		s := l.state.Load()
		if s&writerBit != 0 {
			panic(violation("lock", ErrConcurrentWrite))
		}
		if s == 0 && l.state.CompareAndSwap(0, writerBit) {
			return
		}
		// shared holders from an older generation are still copying out
		delay(&spins)
	}
}

// Unlock releases exclusive access.
func (l *SpinRWLock) Unlock() {
	if !l.state.CompareAndSwap(writerBit, 0) {
		panic(violation("unlock", ErrLockMisuse))
	}
}

// TryRLock acquires shared access unless the lock is held exclusive.
func (l *SpinRWLock) TryRLock() bool {
	for {
		s := l.state.Load()
		if s&writerBit != 0 {
			return false
		}
		if l.state.CompareAndSwap(s, s+readerUnit) {
			return true
		}
		// lost to another reader, retry
	}
}

// RUnlock releases shared access.
func (l *SpinRWLock) RUnlock() {
	for {
		s := l.state.Load()
		if s < readerUnit {
			panic(violation("runlock", ErrLockMisuse))
		}
		if l.state.CompareAndSwap(s, s-readerUnit) {
			return
		}
	}
}

// delay backs off a spinning caller. Past goschedEvery spins it yields the
// processor with a probability that grows with the spin count, so spinners
// that started together drift apart.
func delay(spins *uint32) {
	*spins++
	if *spins < goschedEvery {
		return
	}
	if fastrand.Uint32n(goschedEvery) < *spins/goschedEvery {
		runtime.Gosched()
	}
}

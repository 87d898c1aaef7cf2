package leftright

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// writer states; readers never look at these
const (
	stateIdle int32 = iota
	stateWriting
	statePublishing
)

const (
	opWrite            = "write"
	opWriteWithoutSync = "write without sync"
	opEdit             = "edit"
	opUpdate           = "update"
	opPublish          = "publish"
)

// Buffer holds two copies of a value of type T. Readers see the active
// copy, the single writer stages into the standby copy, and Publish swaps
// the two.
type Buffer[T any] struct {
	slots [2]slot[T]
	index activeIndex
	_     cpu.CacheLinePad

	state   atomic.Int32 // writer state machine, fail-fast guard
	pending atomic.Bool  // standby holds a value that has not been published
	_       cpu.CacheLinePad

	stats counters
}

// New creates a Buffer with both copies set to initial, guarded by
// SpinRWLock.
func New[T any](initial T) *Buffer[T] {
	return NewWithLocker(initial, func() RWLocker { return new(SpinRWLock) })
}

// NewWithLocker creates a Buffer whose slots are guarded by locks from
// newLock. newLock is called twice, once per slot.
func NewWithLocker[T any](initial T, newLock func() RWLocker) *Buffer[T] {
	if newLock == nil {
		panic("locker factory must not be nil")
	}

	b := &Buffer[T]{}
	for i := range b.slots {
		l := newLock()
		if l == nil {
			panic("locker factory returned nil")
		}
		b.slots[i].lock = l
		b.slots[i].val = initial
	}
	return b
}

// Read returns a copy of the most recently published value.
// May be called concurrently from many goroutines, including while the
// writer is staging.
func (b *Buffer[T]) Read() T {
	v, _ := b.Snapshot()
	return v
}

// Snapshot is Read that also returns the generation the value was
// published at. The generation starts at 0 and grows by one per
// effective Publish, so a reader can tell whether anything changed since
// its last look.
func (b *Buffer[T]) Snapshot() (T, uint64) {
	var spins uint32
	for {
		gen := b.index.load()
		s := &b.slots[activeSlot(gen)]
		if s.rlock() {
			// the slot is still active only if no publish slipped in
			// between loading the index and taking the lock
			if b.index.load() == gen {
				v := s.load()
				s.lock.RUnlock()
				b.stats.reads.Add(1)
				return v, gen
			}
			s.lock.RUnlock()
		}
		b.stats.readRetries.Add(1)
		delay(&spins)
	}
}

// Generation returns the number of effective publishes so far.
func (b *Buffer[T]) Generation() uint64 {
	return b.index.load()
}

// Pending reports whether a staged value is waiting for Publish.
func (b *Buffer[T]) Pending() bool {
	return b.pending.Load()
}

// Write stages v and publishes it. Readers observe either the previous
// value or v, never a state in between.
//
// IMPORTANT: must be called from the single writer goroutine.
func (b *Buffer[T]) Write(v T) {
	b.enter(opWrite, stateWriting)
	b.store(v)
	b.state.Store(statePublishing)
	b.publish()
	b.state.Store(stateIdle)
}

// WriteWithoutSync stages v in the standby copy without publishing it.
// Only the last value staged before a Publish is ever seen by readers.
//
// IMPORTANT: must be called from the single writer goroutine.
func (b *Buffer[T]) WriteWithoutSync(v T) {
	b.enter(opWriteWithoutSync, stateWriting)
	b.store(v)
	b.state.Store(stateIdle)
}

// Edit lets fn modify the standby copy in place without publishing.
// The first Edit after a Publish starts from the published value; an Edit
// that follows unpublished staging builds on the staged value.
//
// fn may call Read. Calling Write, WriteWithoutSync, Edit, Update or
// Publish from fn panics. If fn panics, anything staged is dropped and
// readers keep the published value.
//
// IMPORTANT: must be called from the single writer goroutine.
func (b *Buffer[T]) Edit(fn func(staged *T)) {
	b.enter(opEdit, stateWriting)
	defer b.state.Store(stateIdle)
	b.edit(fn)
}

// Update is Edit followed by Publish.
//
// IMPORTANT: must be called from the single writer goroutine.
func (b *Buffer[T]) Update(fn func(staged *T)) {
	b.enter(opUpdate, stateWriting)
	defer b.state.Store(stateIdle)
	b.edit(fn)
	b.state.Store(statePublishing)
	b.publish()
}

// Publish makes the value staged by the last WriteWithoutSync or Edit
// visible to readers. With nothing staged it does nothing, so repeated
// publishes leave Read unchanged.
//
// IMPORTANT: must be called from the single writer goroutine.
func (b *Buffer[T]) Publish() {
	b.enter(opPublish, statePublishing)
	b.publish()
	b.state.Store(stateIdle)
}

// enter moves the writer state machine out of idle or panics.
// A busy state means a second writer exists or the caller re-entered
// from an Edit callback; neither resolves by waiting.
func (b *Buffer[T]) enter(op string, to int32) {
	if b.state.CompareAndSwap(stateIdle, to) {
		return
	}
	if to == statePublishing && b.state.Load() == stateWriting {
		panic(violation(op, ErrPublishDuringWrite))
	}
	panic(violation(op, ErrConcurrentWrite))
}

// lockStandby takes the standby slot exclusive. The index cannot move
// while the writer state is busy.
func (b *Buffer[T]) lockStandby() (*slot[T], uint64) {
	gen := b.index.load()
	s := &b.slots[standbySlot(gen)]
	s.lock.Lock()
	return s, gen
}

func (b *Buffer[T]) store(v T) {
	s, _ := b.lockStandby()
	s.val = v
	s.lock.Unlock()

	b.stats.writes.Add(1)
	if b.pending.Swap(true) {
		b.stats.superseded.Add(1)
	}
}

func (b *Buffer[T]) edit(fn func(staged *T)) {
	s, gen := b.lockStandby()
	done := false
	defer func() {
		if !done {
			// fn panicked: the standby copy is half edited, drop it so
			// the next edit starts over from the published copy
			b.pending.Store(false)
		}
		s.lock.Unlock()
	}()

	if !b.pending.Load() {
		// the writer is the only mutator of either slot
		s.val = b.slots[activeSlot(gen)].val
	}
	fn(&s.val)
	done = true

	b.stats.writes.Add(1)
	b.pending.Store(true)
}

func (b *Buffer[T]) publish() {
	if !b.pending.Load() {
		b.stats.emptyPublishes.Add(1)
		return
	}
	b.index.swap()
	b.pending.Store(false)
	b.stats.publishes.Add(1)
}

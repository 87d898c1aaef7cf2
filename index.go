package leftright

import "sync/atomic"

// activeIndex is the publish counter of a Buffer. The low bit names the
// slot readers use; the other slot belongs to the writer.
// Only publish moves it, so two loads returning the same generation
// bracket a window in which the active slot was not replaced.
type activeIndex struct {
	gen atomic.Uint64
}

// load returns the current generation.
func (a *activeIndex) load() uint64 {
	return a.gen.Load()
}

// swap flips the active slot and returns the generation that was active
// before the flip.
func (a *activeIndex) swap() uint64 {
	return a.gen.Add(1) - 1
}

func activeSlot(gen uint64) uint64 {
	return gen & 1
}

func standbySlot(gen uint64) uint64 {
	return (gen & 1) ^ 1
}

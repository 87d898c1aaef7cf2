package leftright

import "sync/atomic"

type counters struct {
	reads          atomic.Uint64
	readRetries    atomic.Uint64
	writes         atomic.Uint64
	superseded     atomic.Uint64
	publishes      atomic.Uint64
	emptyPublishes atomic.Uint64
}

// BufferStats is a point-in-time copy of a Buffer's counters.
type BufferStats struct {
	Reads       uint64 // completed Read and Snapshot calls
	ReadRetries uint64 // times a reader found its slot replaced or held and went again

	Writes     uint64 // values staged by Write, WriteWithoutSync, Edit and Update
	Superseded uint64 // staged values overwritten before any publish

	Publishes      uint64 // publishes that exposed a staged value
	EmptyPublishes uint64 // publishes with nothing staged
}

// Stats retrieves the current statistics of the Buffer
func (b *Buffer[T]) Stats() BufferStats {
	return BufferStats{
		Reads:          b.stats.reads.Load(),
		ReadRetries:    b.stats.readRetries.Load(),
		Writes:         b.stats.writes.Load(),
		Superseded:     b.stats.superseded.Load(),
		Publishes:      b.stats.publishes.Load(),
		EmptyPublishes: b.stats.emptyPublishes.Load(),
	}
}

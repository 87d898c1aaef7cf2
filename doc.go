// Package leftright provides a single-writer, multi-reader mailbox that
// owns the same value twice: one copy for readers and one for the writer.
//
// It is meant to carry the latest value from a lower priority producer to
// higher priority consumers, interrupt handlers included, without the
// consumers ever waiting on the producer. Nothing is queued. A value staged
// and then overwritten before Publish is lost.
//
// Assumptions:
//   - exactly one writer goroutine exists at a time;
//   - the writer never preempts a reader.
//
// Guarantees:
//   - any number of readers can run at once, and alongside the writer;
//   - a reader observes whole published values only;
//   - breaking the single-writer assumption panics with a *UsageError
//     instead of spinning forever.
//
// Locks are busy-wait only. On a multi-core host readers validate the
// publish generation after taking their slot, so the guarantees above hold
// there too; the fail-fast checks cover the writer side only.
package leftright

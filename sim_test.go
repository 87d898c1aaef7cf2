package leftright

import (
	"testing"

	"github.com/eapache/queue"
	"github.com/valyala/fastrand"
)

// core simulates a single processor core. Interrupts raised while the low
// priority task runs are queued and run, each to completion, at the next
// preemption point.
type core struct {
	pending *queue.Queue
	served  int
}

func newCore() *core {
	return &core{pending: queue.New()}
}

func (c *core) raise(isr func()) {
	c.pending.Add(isr)
}

func (c *core) preempt() {
	for c.pending.Length() > 0 {
		isr := c.pending.Remove().(func())
		isr()
		c.served++
	}
}

func expectRead(t *testing.T, b *Buffer[pair], want int) func() {
	return func() {
		t.Helper()
		if v := b.Read(); v.a != want {
			t.Errorf("interrupt read %d, expected %d", v.a, want)
		}
	}
}

func TestInterruptBeforeAndAfterPublish(t *testing.T) {
	c := newCore()
	b := New(pair{})

	b.Write(pair{a: 10})

	// low priority task
	b.WriteWithoutSync(pair{a: 20})
	c.raise(expectRead(t, b, 10))
	c.preempt()

	b.Publish()
	c.raise(expectRead(t, b, 20))
	c.preempt()

	// after the low priority task
	c.raise(expectRead(t, b, 20))
	c.preempt()

	if c.served != 3 {
		t.Fatalf("expected 3 interrupts served, got %d", c.served)
	}
}

func TestInterruptDuringEdit(t *testing.T) {
	c := newCore()
	b := New(pair{})

	b.Write(pair{a: 30})

	b.Edit(func(p *pair) {
		c.raise(expectRead(t, b, 30))
		c.preempt()
		p.a = 40
		// the reader preempts the writer in the middle of its critical section
		c.raise(expectRead(t, b, 30))
		c.raise(expectRead(t, b, 30))
		c.preempt()
	})
	c.raise(expectRead(t, b, 30))
	c.preempt()

	b.Publish()
	c.raise(expectRead(t, b, 40))
	c.preempt()
}

func TestInterruptDuringUpdate(t *testing.T) {
	c := newCore()
	b := New(pair{})

	b.Write(pair{a: 50})
	b.Update(func(p *pair) {
		p.a = 60
		c.raise(expectRead(t, b, 50))
		c.preempt()
	})
	c.raise(expectRead(t, b, 60))
	c.preempt()
}

func TestHigherPriorityWriterPanics(t *testing.T) {
	c := newCore()
	b := New(pair{})

	b.Edit(func(p *pair) {
		p.a = 1
		c.raise(func() {
			// interrupt that writes as well; violates the single writer assumption
			mustPanicWith(t, ErrConcurrentWrite, func() { b.Write(pair{a: 2}) })
		})
		c.preempt()
	})
	b.Publish()

	if v := b.Read(); v.a != 1 {
		t.Fatalf("expected the low priority write to win, got %+v", v)
	}
}

// Randomized interleaving of writer operations and reader interrupts,
// checked against a plain model of published and staged values.
func TestRandomInterleavings(t *testing.T) {
	const steps = 20_000

	c := newCore()
	b := New(pair{})

	var (
		published int
		staged    int
		pending   bool
		gen       uint64
	)

	check := func() {
		v, g := b.Snapshot()
		if v.a != published || g != gen {
			t.Errorf("read (%d, gen %d), expected (%d, gen %d)", v.a, g, published, gen)
		}
	}

	for i := 0; i < steps; i++ {
		for n := fastrand.Uint32n(3); n > 0; n-- {
			c.raise(check)
		}

		v := int(fastrand.Uint32n(1 << 20))
		switch fastrand.Uint32n(5) {
		case 0:
			b.WriteWithoutSync(pair{a: v})
			staged, pending = v, true
		case 1:
			b.Write(pair{a: v})
			published, staged, pending = v, v, false
			gen++
		case 2:
			b.Edit(func(p *pair) {
				c.preempt()
				p.a += v
			})
			if !pending {
				staged = published
			}
			staged += v
			pending = true
		case 3:
			b.Update(func(p *pair) {
				p.a++
			})
			if !pending {
				staged = published
			}
			published, pending = staged+1, false
			gen++
		case 4:
			b.Publish()
			if pending {
				published, pending = staged, false
				gen++
			}
		}
		if b.Pending() != pending {
			t.Fatalf("step %d: pending %v, expected %v", i, b.Pending(), pending)
		}
		c.preempt()
	}
	check()
}

package breaker

import "sync/atomic"

// Bulkhead is a non-blocking counting semaphore bounding the number of
// concurrent calls a breaker admits, independent of its Closed/Open/
// HalfOpen state. Acquisition never blocks: a caller that finds the
// bulkhead full gets rejected immediately.
type Bulkhead struct {
	limit    int32
	acquired atomic.Int32
}

// NewBulkhead builds a bulkhead admitting at most limit concurrent
// calls. limit <= 0 is a programmer error.
func NewBulkhead(limit int) *Bulkhead {
	if limit <= 0 {
		panic("breaker: bulkhead limit must be > 0")
	}
	return &Bulkhead{limit: int32(limit)}
}

func (b *Bulkhead) Limit() int { return int(b.limit) }

func (b *Bulkhead) InUse() int { return int(b.acquired.Load()) }

// TryAcquire attempts to take one slot via a CAS loop. On success it
// returns a Permit the caller must Release exactly once (typically via
// defer) on every exit path, including panics.
func (b *Bulkhead) TryAcquire() (*Permit, bool) {
	for {
		cur := b.acquired.Load()
		if cur >= b.limit {
			return nil, false
		}
		if b.acquired.CompareAndSwap(cur, cur+1) {
			return &Permit{b: b}, true
		}
	}
}

// Permit is a single bulkhead slot. Release is idempotent: calling it
// more than once, or on a nil Permit, is a safe no-op.
type Permit struct {
	b        *Bulkhead
	released atomic.Bool
}

func (p *Permit) Release() {
	if p == nil {
		return
	}
	if p.released.CompareAndSwap(false, true) {
		p.b.acquired.Add(-1)
	}
}

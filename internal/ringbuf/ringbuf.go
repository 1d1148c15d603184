// Package ringbuf implements a fixed-capacity, lock-free single-producer/
// single-consumer queue of interface{} messages, built on atomic head/tail
// counters. It is the Go-native stand-in for the Rust rtrb crate used by
// the original control<->executor message channel: push/pop are wait-free,
// and a full push returns false rather than blocking, which is the
// contract the realtime side depends on (it must never block).
package ringbuf

import "sync/atomic"

// Queue is a bounded SPSC ring buffer. Exactly one goroutine may call
// Push, and exactly one (possibly different) goroutine may call Pop;
// concurrent pushers or concurrent poppers are not supported.
type Queue struct {
	buf  []any
	mask uint64

	head atomic.Uint64 // next slot to write (producer-owned)
	tail atomic.Uint64 // next slot to read (consumer-owned)
}

// New creates a Queue with the given capacity, rounded up to the next
// power of two (a power-of-two size lets index wrap use a mask instead of
// a modulo).
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Queue{
		buf:  make([]any, size),
		mask: uint64(size - 1),
	}
}

// Push enqueues msg. It returns false without blocking if the queue is
// full.
func (q *Queue) Push(msg any) bool {
	head := q.head.Load()
	tail := q.tail.Load()
	if head-tail >= uint64(len(q.buf)) {
		return false
	}
	q.buf[head&q.mask] = msg
	q.head.Store(head + 1)
	return true
}

// Pop dequeues the oldest message. It returns (nil, false) without
// blocking if the queue is empty.
func (q *Queue) Pop() (any, bool) {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail == head {
		return nil, false
	}
	msg := q.buf[tail&q.mask]
	q.buf[tail&q.mask] = nil
	q.tail.Store(tail + 1)
	return msg, true
}

// Len reports the approximate number of queued messages. It is a
// best-effort snapshot, useful only for diagnostics.
func (q *Queue) Len() int {
	return int(q.head.Load() - q.tail.Load())
}

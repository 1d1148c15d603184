// Package bufpool implements the refcounted buffer-index allocator used by
// the graph compiler's SSA-style buffer assignment pass: each compiled
// schedule node acquires buffer slots for its outputs and releases the
// slots it consumed as inputs, and a slot is only returned to the free
// list once every reference to it has been released.
package bufpool

// Ref names one buffer slot. Generation increments each time the slot is
// recycled, so a stale Ref (one captured before a release) is
// distinguishable from the slot's current occupant in debug assertions.
type Ref struct {
	Index      uint32
	Generation uint32
}

// Handle is a single live reference to a buffer slot. Clone shares the
// same underlying refcount; Allocator.Release decrements it and only
// returns the slot to the free list when the count reaches zero.
type Handle struct {
	ref      Ref
	refCount *int
}

func (h *Handle) Ref() Ref { return h.ref }

// Clone returns a new Handle to the same slot, incrementing the shared
// refcount.
func (h *Handle) Clone() *Handle {
	*h.refCount++
	return &Handle{ref: h.ref, refCount: h.refCount}
}

// Allocator hands out buffer slot indices and recycles them once every
// Handle referencing a slot has been released. Not safe for concurrent
// use: the compiler runs buffer assignment single-threaded.
type Allocator struct {
	freeList []Ref
	count    uint32
}

// Acquire returns a Handle to a free slot, minting a new index if the free
// list is empty.
func (a *Allocator) Acquire() *Handle {
	var ref Ref
	if n := len(a.freeList); n > 0 {
		ref = a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
	} else {
		ref = Ref{Index: a.count}
		a.count++
	}
	rc := 1
	return &Handle{ref: ref, refCount: &rc}
}

// Release drops h's reference to its slot. Once the last outstanding
// Handle to a slot is released, the slot's index is returned to the free
// list with its generation bumped.
func (a *Allocator) Release(h *Handle) {
	*h.refCount--
	if *h.refCount == 0 {
		a.freeList = append(a.freeList, Ref{Index: h.ref.Index, Generation: h.ref.Generation + 1})
	}
}

// NumBuffers returns the high-water mark of distinct buffer slots minted
// so far — the size the caller must allocate its backing buffer pool to.
func (a *Allocator) NumBuffers() int {
	return int(a.count)
}

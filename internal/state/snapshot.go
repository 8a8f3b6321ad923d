package state

import "sync/atomic"

// Snapshot is an immutable handle onto a published AudioState. Holding one
// never blocks Kernel's writer; the underlying value is never mutated after
// publication, only replaced.
type Snapshot[Extra any] struct {
	state *AudioState[Extra]
}

// Get returns the immutable AudioState value this snapshot refers to.
func (s Snapshot[Extra]) Get() AudioState[Extra] {
	if s.state == nil {
		return Initial[Extra]()
	}
	return *s.state
}

// Writer is the single-writer side of the snapshot primitive. Only Kernel
// holds one. Each commit performs a generational pointer swap: readers that
// already hold a Snapshot keep observing the old value; new calls to
// Reader.Get observe the new one. No reader ever takes a lock.
type Writer[Extra any] struct {
	ptr atomic.Pointer[AudioState[Extra]]
}

// NewWriter creates a Writer pre-published with initial.
func NewWriter[Extra any](initial AudioState[Extra]) *Writer[Extra] {
	w := &Writer[Extra]{}
	v := initial
	w.ptr.Store(&v)
	return w
}

// Peek returns the currently published Snapshot without publishing anything
// new. Kernel uses this to reply with the unchanged state for commands whose
// precondition failed or whose effect is a no-op (spec.md §4.1.a: "If a
// precondition fails, reply with the current snapshot").
func (w *Writer[Extra]) Peek() Snapshot[Extra] {
	return Snapshot[Extra]{state: w.ptr.Load()}
}

// CommitClone publishes next as the new authoritative state wholesale. Used
// for commands whose result isn't a small delta over the previous state
// (stop, shuffle, restore) where building the new value from scratch is
// clearer than mutating a working copy in place.
func (w *Writer[Extra]) CommitClone(next AudioState[Extra]) Snapshot[Extra] {
	v := next
	w.ptr.Store(&v)
	return Snapshot[Extra]{state: &v}
}

// CommitReplay applies mutate to a clone of the currently published state and
// publishes the result. Used for commands that make a small, deterministic
// change (toggle, volume, repeat, seek) where "take the current state, flip
// one field" reads more directly than constructing a full replacement value.
func (w *Writer[Extra]) CommitReplay(mutate func(*AudioState[Extra])) Snapshot[Extra] {
	cur := w.ptr.Load().Clone()
	mutate(&cur)
	return w.CommitClone(cur)
}

// Reader is the multi-reader side of the snapshot primitive. Any number of
// goroutines may hold and use a Reader concurrently with Kernel's Writer.
type Reader[Extra any] struct {
	w *Writer[Extra]
}

// NewReader builds a Reader over w.
func NewReader[Extra any](w *Writer[Extra]) *Reader[Extra] {
	return &Reader[Extra]{w: w}
}

// Get returns the most recently published Snapshot. It never blocks.
func (r *Reader[Extra]) Get() Snapshot[Extra] {
	return Snapshot[Extra]{state: r.w.ptr.Load()}
}

package kernel

import (
	"audioengine/internal/source"
	"audioengine/internal/state"
)

// Result is the reply shape for commands that can fail on a precondition
// (seek, skip, back, set_index, remove, remove_range — spec.md §4.1 shape 3).
type Result[Extra any] struct {
	Snapshot state.Snapshot[Extra]
	Err      error
}

// ClearMode selects what clear() empties: the queue (keeping Current) or
// just Current (pausing, keeping the rest of the queue).
type ClearMode int

const (
	ClearQueue ClearMode = iota
	ClearCurrent
)

// ShuffleMode selects how shuffle() reshuffles the queue and what happens
// to Current (spec.md §4.1.2).
type ShuffleMode int

const (
	// ShuffleFull shuffles the whole queue; Current keeps its index but is
	// rebound to whatever Source now sits there.
	ShuffleFull ShuffleMode = iota
	// ShuffleReset shuffles the whole queue and rebinds Current to index 0.
	ShuffleReset
	// ShuffleQueue shuffles the queue while keeping the current track's
	// Source in place; no new-source handshake is needed.
	ShuffleQueue
)

type insertKind int

const (
	insertBack insertKind = iota
	insertFront
	insertIndex
)

// InsertMethod selects where add_many() splices new sources into the queue.
type InsertMethod struct {
	kind  insertKind
	index int
}

// InsertAtBack appends new sources after the existing queue.
func InsertAtBack() InsertMethod { return InsertMethod{kind: insertBack} }

// InsertAtFront prepends new sources before the existing queue, preserving
// the order of the sources given.
func InsertAtFront() InsertMethod { return InsertMethod{kind: insertFront} }

// InsertAtIndex inserts new sources starting at position i, preserving the
// order of the sources given. i == 0 behaves like InsertAtFront; i >= the
// queue's length behaves like InsertAtBack (spec.md §4.1.2's normalization).
func InsertAtIndex(i int) InsertMethod { return InsertMethod{kind: insertIndex, index: i} }

func (m InsertMethod) normalize(queueLen int) insertKind {
	if m.kind != insertIndex {
		return m.kind
	}
	if m.index <= 0 {
		return insertFront
	}
	if m.index >= queueLen {
		return insertBack
	}
	return insertIndex
}

// SeekMode matches the original engine's three seek flavors: an absolute
// position, or a relative move forward/backward from the current position.
type SeekMode int

const (
	SeekAbsolute SeekMode = iota
	SeekForward
	SeekBackward
)

// SeekTarget is the argument to seek(): a mode plus the number of seconds it
// applies to.
type SeekTarget struct {
	Mode    SeekMode
	Seconds float64
}

// fire-only / fire-and-snapshot request shapes. Every one of these carries
// its own one-shot reply channel (spec.md §9: "one bounded-1 channel per
// reply kind") rather than a single channel shared across concurrent
// callers, so two callers racing each other never cross wires.

type snapshotReq[Extra any] struct {
	reply chan state.Snapshot[Extra]
}

type clearReq[Extra any] struct {
	mode  ClearMode
	reply chan state.Snapshot[Extra]
}

type repeatReq[Extra any] struct {
	mode  state.Repeat
	reply chan state.Snapshot[Extra]
}

type volumeReq[Extra any] struct {
	vol   state.Volume
	reply chan state.Snapshot[Extra]
}

type shuffleReq[Extra any] struct {
	mode  ShuffleMode
	reply chan state.Snapshot[Extra]
}

type addManyReq[Extra any] struct {
	sources []source.Source[Extra]
	method  InsertMethod
	clear   bool
	play    bool
	reply   chan state.Snapshot[Extra]
}

type restoreReq[Extra any] struct {
	next  state.AudioState[Extra]
	reply chan state.Snapshot[Extra]
}

type backThresholdReq struct {
	seconds float64
	reply   chan struct{}
}

// fire-and-result request shapes.

type seekReq[Extra any] struct {
	target SeekTarget
	reply  chan Result[Extra]
}

type skipReq[Extra any] struct {
	n     int
	reply chan Result[Extra]
}

// backReq carries n (tracks to step back); the threshold applied is always
// the live runtime back_threshold from AtomicState, per spec.md §4.1.2.
type backReq[Extra any] struct {
	n     int
	reply chan Result[Extra]
}

type setIndexReq[Extra any] struct {
	index int
	play  *bool
	reply chan Result[Extra]
}

type removeRangeReq[Extra any] struct {
	start, end int
	reply      chan Result[Extra]
}

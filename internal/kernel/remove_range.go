package kernel

import (
	"audioengine/internal/source"
	"audioengine/internal/state"
)

// RemoveRange deletes queue[start..=end] inclusive (spec.md §4.1.2). Returns
// ErrQueueEmpty on an empty queue or ErrBadRange if start > end or end is
// out of bounds.
//
// When the removed range contains Current, the redesigned behavior applies
// (spec.md §9/REDESIGN FLAGS): the new Current is whatever track now sits at
// index start — the one that used to sit at end+1 — not start-1. If nothing
// slides into that slot (the removed range ran to the end of the queue), the
// new Current falls back to the queue's new last entry.
func (k *Actor[Extra]) RemoveRange(start, end int) Result[Extra] {
	reply := make(chan Result[Extra], 1)
	k.chRemoveRange <- removeRangeReq[Extra]{start: start, end: end, reply: reply}
	return <-reply
}

// Remove deletes a single index. Equivalent to RemoveRange(i, i).
func (k *Actor[Extra]) Remove(i int) Result[Extra] {
	return k.RemoveRange(i, i)
}

func (k *Actor[Extra]) removeRange(start, end int) Result[Extra] {
	cur := k.w.Peek().Get()
	if len(cur.Queue) == 0 {
		return Result[Extra]{Snapshot: k.snapshot(), Err: ErrQueueEmpty}
	}
	if start < 0 || start > end || end >= len(cur.Queue) {
		return Result[Extra]{Snapshot: k.snapshot(), Err: ErrBadRange}
	}

	queue := cur.Queue
	newQ := append(append([]source.Source[Extra]{}, queue[:start]...), queue[end+1:]...)

	if len(newQ) == 0 {
		k.atomic.SetAudioReadyToRecv(false)
		k.audioActor.DiscardCurrentAudio()
		k.decodeActor.DiscardAndStop()
		k.atomic.SetPlaying(false)
		k.currentTotal = 0
		snap := k.w.CommitClone(state.AudioState[Extra]{
			Queue:   nil,
			Current: nil,
			Playing: false,
			Repeat:  cur.Repeat,
			Volume:  cur.Volume,
		})
		if k.atomic.QueueEndClear() {
			k.notifier.NotifyQueueEnd()
		}
		return Result[Extra]{Snapshot: snap, Err: nil}
	}

	newCurrent := cur.Current
	if cur.Current != nil {
		idx := cur.Current.Index
		switch {
		case idx >= start && idx <= end:
			newIdx := start
			if newIdx >= len(newQ) {
				newIdx = len(newQ) - 1
			}
			newSrc := newQ[newIdx]
			k.newSourceHandshake(newSrc)
			newCurrent = &state.Current[Extra]{Source: newSrc, Index: newIdx, Elapsed: 0}
		case idx > end:
			shifted := *cur.Current
			shifted.Index -= end - start + 1
			newCurrent = &shifted
		}
	}

	snap := k.w.CommitClone(state.AudioState[Extra]{
		Queue:   newQ,
		Current: newCurrent,
		Playing: cur.Playing,
		Repeat:  cur.Repeat,
		Volume:  cur.Volume,
	})
	return Result[Extra]{Snapshot: snap, Err: nil}
}

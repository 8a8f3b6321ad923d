package kernel

import "audioengine/internal/state"

// Skip advances n tracks according to the current Repeat mode (spec.md
// §4.1.2). Returns ErrQueueEmpty if the queue has nothing in it.
func (k *Actor[Extra]) Skip(n int) Result[Extra] {
	reply := make(chan Result[Extra], 1)
	k.chSkip <- skipReq[Extra]{n: n, reply: reply}
	return <-reply
}

func (k *Actor[Extra]) skip(n int) Result[Extra] {
	cur := k.w.Peek().Get()
	if len(cur.Queue) == 0 {
		return Result[Extra]{Snapshot: k.snapshot(), Err: ErrQueueEmpty}
	}

	idx := 0
	if cur.Current != nil {
		idx = cur.Current.Index
	}

	switch cur.Repeat {
	case state.RepeatOff:
		newIdx := idx + n
		if newIdx >= len(cur.Queue) {
			return Result[Extra]{Snapshot: k.endQueue(cur), Err: nil}
		}
		return Result[Extra]{Snapshot: k.moveTo(cur, newIdx), Err: nil}

	case state.RepeatTrack:
		return Result[Extra]{Snapshot: k.moveTo(cur, idx), Err: nil}

	case state.RepeatQueue:
		newIdx := (idx + n) % len(cur.Queue)
		wrapped := idx+n >= len(cur.Queue)
		snap := k.moveTo(cur, newIdx)
		if wrapped {
			k.notifier.NotifyRepeat()
		}
		return Result[Extra]{Snapshot: snap, Err: nil}

	default:
		return Result[Extra]{Snapshot: k.snapshot(), Err: nil}
	}
}

// endQueue clears Current and pauses because RepeatOff ran off the end of
// the queue, and emits the queue-end notification (spec.md §4.1.2 "Off").
// The queue's contents are NOT cleared here — only RemoveRange's
// queue-became-empty case and an explicit Clear/Stop touch the queue itself.
func (k *Actor[Extra]) endQueue(cur state.AudioState[Extra]) state.Snapshot[Extra] {
	if cur.Current != nil {
		k.atomic.SetAudioReadyToRecv(false)
		k.audioActor.DiscardCurrentAudio()
		k.decodeActor.DiscardAndStop()
	}
	k.atomic.SetPlaying(false)
	k.currentTotal = 0
	snap := k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		s.Current = nil
		s.Playing = false
	})
	k.notifier.NotifyQueueEnd()
	return snap
}

// moveTo rebinds Current to queue[newIdx] and always runs the new-source
// handshake, even when the bound Source doesn't change (RepeatTrack
// restarting the same index): moveTo always treats this as "start the
// target track from elapsed 0".
func (k *Actor[Extra]) moveTo(cur state.AudioState[Extra], newIdx int) state.Snapshot[Extra] {
	src := cur.Queue[newIdx]
	k.newSourceHandshake(src)
	return k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		s.Current = &state.Current[Extra]{Source: src, Index: newIdx, Elapsed: 0}
	})
}

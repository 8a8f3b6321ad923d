package kernel

import (
	"audioengine/internal/source"
	"audioengine/internal/state"
)

// Clear empties either the queue (ClearQueue) or just Current (ClearCurrent)
// (spec.md §4.1). ClearQueue preserves Current: since AudioState's invariant
// 1 requires a non-empty queue whenever Current is set, draining the queue
// collapses it down to Current's own Source at index 0 rather than an empty
// slice. ClearCurrent leaves the queue untouched, nulls Current, and pauses.
func (k *Actor[Extra]) Clear(mode ClearMode) state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chClear <- clearReq[Extra]{mode: mode, reply: reply}
	return <-reply
}

func (k *Actor[Extra]) clear(mode ClearMode) state.Snapshot[Extra] {
	switch mode {
	case ClearQueue:
		return k.clearQueue()
	case ClearCurrent:
		return k.clearCurrent()
	default:
		return k.snapshot()
	}
}

func (k *Actor[Extra]) clearQueue() state.Snapshot[Extra] {
	cur := k.w.Peek().Get()
	if cur.Current == nil {
		if len(cur.Queue) == 0 {
			return k.snapshot()
		}
		return k.w.CommitReplay(func(s *state.AudioState[Extra]) {
			s.Queue = nil
		})
	}
	return k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		s.Queue = []source.Source[Extra]{s.Current.Source}
		s.Current.Index = 0
	})
}

func (k *Actor[Extra]) clearCurrent() state.Snapshot[Extra] {
	cur := k.w.Peek().Get()
	if cur.Current == nil {
		return k.snapshot()
	}

	k.atomic.SetAudioReadyToRecv(false)
	k.audioActor.DiscardCurrentAudio()
	k.decodeActor.DiscardAndStop()
	k.atomic.SetPlaying(false)
	k.currentTotal = 0

	return k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		s.Current = nil
		s.Playing = false
	})
}

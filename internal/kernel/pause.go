package kernel

import "audioengine/internal/state"

// Pause stops playback without disturbing Current or the queue. A no-op if
// already paused (spec.md §4.1: "pause on a paused state is a no-op").
func (k *Actor[Extra]) Pause() state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chPause <- snapshotReq[Extra]{reply: reply}
	return <-reply
}

func (k *Actor[Extra]) pause() state.Snapshot[Extra] {
	cur := k.w.Peek().Get()
	if !cur.Playing {
		return k.snapshot()
	}
	k.atomic.SetPlaying(false)
	return k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		s.Playing = false
	})
}

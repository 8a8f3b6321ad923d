package kernel

import "audioengine/internal/state"

// Play starts playback of Current, if any. A no-op on an empty queue
// (spec.md §4.1: "attempts to play on empty queue are no-ops") and on an
// already-playing state.
func (k *Actor[Extra]) Play() state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chPlay <- snapshotReq[Extra]{reply: reply}
	return <-reply
}

func (k *Actor[Extra]) play() state.Snapshot[Extra] {
	cur := k.w.Peek().Get()
	if cur.Current == nil || cur.Playing {
		return k.snapshot()
	}
	k.atomic.SetPlaying(true)
	return k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		s.Playing = true
	})
}

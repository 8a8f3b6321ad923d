package kernel

import "audioengine/internal/state"

// Restore replaces the entire AudioState with next, e.g. to reload a session
// saved by the embedder (spec.md §4.1.2). If next.Current points outside
// next.Queue, Current is nulled rather than trusted blindly.
func (k *Actor[Extra]) Restore(next state.AudioState[Extra]) state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chRestore <- restoreReq[Extra]{next: next, reply: reply}
	return <-reply
}

func (k *Actor[Extra]) restore(next state.AudioState[Extra]) state.Snapshot[Extra] {
	if next.Current != nil {
		valid := next.Current.Index >= 0 &&
			next.Current.Index < len(next.Queue) &&
			next.Queue[next.Current.Index].Equal(next.Current.Source)
		if !valid {
			next.Current = nil
		}
	}
	if next.Current == nil {
		next.Playing = false
	}
	next.Volume = next.Volume.Clamp()

	k.atomic.SetPlaying(next.Playing)
	k.atomic.SetRepeat(next.Repeat)
	k.atomic.SetVolume(next.Volume)
	k.currentTotal = 0

	snap := k.w.CommitClone(next)

	if next.Current != nil {
		k.newSourceHandshake(next.Current.Source)
	}
	return snap
}

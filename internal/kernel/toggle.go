package kernel

import "audioengine/internal/state"

// Toggle flips playing: Play if paused, Pause if playing. A no-op if the
// queue has no Current (spec.md §8: "toggle applied twice is identity on
// playing").
func (k *Actor[Extra]) Toggle() state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chToggle <- snapshotReq[Extra]{reply: reply}
	return <-reply
}

func (k *Actor[Extra]) toggle() state.Snapshot[Extra] {
	cur := k.w.Peek().Get()
	if cur.Current == nil {
		return k.snapshot()
	}
	if cur.Playing {
		return k.pause()
	}
	return k.play()
}

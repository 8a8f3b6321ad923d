package kernel

import "audioengine/internal/state"

// Previous steps back one track, restarting the current track instead if
// it's played past the runtime back_threshold (spec.md §4.1.2: "If queue
// empty → snapshot. Else call back(1, threshold = runtime back_threshold)").
// Unlike Back, Previous never returns an error.
func (k *Actor[Extra]) Previous() state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chPrevious <- snapshotReq[Extra]{reply: reply}
	return <-reply
}

func (k *Actor[Extra]) previous() state.Snapshot[Extra] {
	cur := k.w.Peek().Get()
	if len(cur.Queue) == 0 {
		return k.snapshot()
	}
	return k.back(1).Snapshot
}

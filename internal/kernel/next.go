package kernel

import "audioengine/internal/state"

// Next advances to the next track (spec.md §4.1.2: "If queue empty →
// snapshot. Else call skip(1)"). Unlike Skip, Next never returns an error —
// an empty queue is simply a no-op.
func (k *Actor[Extra]) Next() state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chNext <- snapshotReq[Extra]{reply: reply}
	return <-reply
}

func (k *Actor[Extra]) next() state.Snapshot[Extra] {
	cur := k.w.Peek().Get()
	if len(cur.Queue) == 0 {
		return k.snapshot()
	}
	return k.skip(1).Snapshot
}

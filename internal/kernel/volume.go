package kernel

import "audioengine/internal/state"

// Volume sets the linear gain factor, clamped to [0.0, 2.0] by
// state.NewVolume before it ever reaches here. A no-op (no commit) if it
// already equals the current value.
func (k *Actor[Extra]) Volume(v state.Volume) state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chVolume <- volumeReq[Extra]{vol: v, reply: reply}
	return <-reply
}

func (k *Actor[Extra]) volume(v state.Volume) state.Snapshot[Extra] {
	v = v.Clamp()
	cur := k.w.Peek().Get()
	if cur.Volume == v {
		return k.snapshot()
	}
	k.atomic.SetVolume(v)
	return k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		s.Volume = v
	})
}

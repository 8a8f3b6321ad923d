package kernel

import "audioengine/internal/state"

// Repeat sets the repeat mode. A no-op (no commit) if it already equals the
// current value (spec.md §4.1: "Repeat and volume changes that equal the
// current value are ignored").
func (k *Actor[Extra]) Repeat(mode state.Repeat) state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chRepeat <- repeatReq[Extra]{mode: mode, reply: reply}
	return <-reply
}

func (k *Actor[Extra]) repeat(mode state.Repeat) state.Snapshot[Extra] {
	cur := k.w.Peek().Get()
	if cur.Repeat == mode {
		return k.snapshot()
	}
	k.atomic.SetRepeat(mode)
	return k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		s.Repeat = mode
	})
}

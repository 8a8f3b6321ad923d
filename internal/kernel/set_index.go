package kernel

import "audioengine/internal/state"

// SetIndex jumps directly to queue[i] (spec.md §4.1.2). play, if non-nil,
// overrides the playing flag; if nil, the previous playing value is kept.
// Returns ErrQueueEmpty or ErrOutOfBounds on a bad index.
func (k *Actor[Extra]) SetIndex(i int, play *bool) Result[Extra] {
	reply := make(chan Result[Extra], 1)
	k.chSetIndex <- setIndexReq[Extra]{index: i, play: play, reply: reply}
	return <-reply
}

func (k *Actor[Extra]) setIndex(i int, play *bool) Result[Extra] {
	cur := k.w.Peek().Get()
	if len(cur.Queue) == 0 {
		return Result[Extra]{Snapshot: k.snapshot(), Err: ErrQueueEmpty}
	}
	if i < 0 || i >= len(cur.Queue) {
		return Result[Extra]{Snapshot: k.snapshot(), Err: ErrOutOfBounds}
	}

	src := cur.Queue[i]
	k.newSourceHandshake(src)

	newPlaying := cur.Playing
	if play != nil {
		newPlaying = *play
	}
	k.atomic.SetPlaying(newPlaying)

	snap := k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		s.Current = &state.Current[Extra]{Source: src, Index: i, Elapsed: 0}
		s.Playing = newPlaying
	})
	return Result[Extra]{Snapshot: snap, Err: nil}
}

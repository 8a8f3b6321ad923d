package kernel

import (
	"math/rand/v2"

	"audioengine/internal/source"
	"audioengine/internal/state"
)

// Shuffle reorders the queue per mode (spec.md §4.1.2). A queue shorter than
// 2 entries has nothing meaningful to shuffle — the one exception is
// ShuffleReset on a single-entry queue, which restarts that entry from
// elapsed 0 (spec.md §8).
func (k *Actor[Extra]) Shuffle(mode ShuffleMode) state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chShuffle <- shuffleReq[Extra]{mode: mode, reply: reply}
	return <-reply
}

func (k *Actor[Extra]) shuffle(mode ShuffleMode) state.Snapshot[Extra] {
	cur := k.w.Peek().Get()

	if len(cur.Queue) < 2 {
		if mode == ShuffleReset && len(cur.Queue) == 1 {
			return k.moveTo(cur, 0)
		}
		return k.snapshot()
	}

	switch mode {
	case ShuffleFull:
		shuffled := shuffledCopy(cur.Queue)
		snap := k.w.CommitClone(state.AudioState[Extra]{
			Queue:   shuffled,
			Current: cur.Current,
			Playing: cur.Playing,
			Repeat:  cur.Repeat,
			Volume:  cur.Volume,
		})
		if cur.Current != nil {
			idx := cur.Current.Index
			src := shuffled[idx]
			k.newSourceHandshake(src)
			snap = k.w.CommitReplay(func(s *state.AudioState[Extra]) {
				s.Current = &state.Current[Extra]{Source: src, Index: idx, Elapsed: 0}
			})
		}
		return snap

	case ShuffleReset:
		shuffled := shuffledCopy(cur.Queue)
		snap := k.w.CommitClone(state.AudioState[Extra]{
			Queue:   shuffled,
			Current: cur.Current,
			Playing: cur.Playing,
			Repeat:  cur.Repeat,
			Volume:  cur.Volume,
		})
		if cur.Current != nil {
			src := shuffled[0]
			k.newSourceHandshake(src)
			snap = k.w.CommitReplay(func(s *state.AudioState[Extra]) {
				s.Current = &state.Current[Extra]{Source: src, Index: 0, Elapsed: 0}
			})
		}
		return snap

	case ShuffleQueue:
		var fixedIdx = -1
		if cur.Current != nil {
			fixedIdx = cur.Current.Index
		}
		shuffled := shuffleKeeping(cur.Queue, fixedIdx)
		return k.w.CommitClone(state.AudioState[Extra]{
			Queue:   shuffled,
			Current: cur.Current,
			Playing: cur.Playing,
			Repeat:  cur.Repeat,
			Volume:  cur.Volume,
		})

	default:
		return k.snapshot()
	}
}

func shuffledCopy[Extra any](queue []source.Source[Extra]) []source.Source[Extra] {
	out := append([]source.Source[Extra](nil), queue...)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// shuffleKeeping shuffles queue while leaving the element at fixedIdx (if
// >= 0) in place, matching spec.md's ShuffleQueue mode.
func shuffleKeeping[Extra any](queue []source.Source[Extra], fixedIdx int) []source.Source[Extra] {
	if fixedIdx < 0 || fixedIdx >= len(queue) {
		return shuffledCopy(queue)
	}

	fixed := queue[fixedIdx]
	others := make([]source.Source[Extra], 0, len(queue)-1)
	for i, s := range queue {
		if i != fixedIdx {
			others = append(others, s)
		}
	}
	rand.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	out := make([]source.Source[Extra], len(queue))
	oi := 0
	for i := range out {
		if i == fixedIdx {
			out[i] = fixed
			continue
		}
		out[i] = others[oi]
		oi++
	}
	return out
}

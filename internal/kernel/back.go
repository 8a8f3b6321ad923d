package kernel

import "math"

// Back steps n tracks backward, or restarts the current track from elapsed 0
// if it has played past the runtime back_threshold (spec.md §4.1.2). Returns
// ErrQueueEmpty if the queue has nothing in it. n <= 0 is treated as 1
// (spec.md §8: "back(0, _) is treated as back(1, _)").
func (k *Actor[Extra]) Back(n int) Result[Extra] {
	reply := make(chan Result[Extra], 1)
	k.chBack <- backReq[Extra]{n: n, reply: reply}
	return <-reply
}

func (k *Actor[Extra]) back(n int) Result[Extra] {
	cur := k.w.Peek().Get()
	if len(cur.Queue) == 0 {
		return Result[Extra]{Snapshot: k.snapshot(), Err: ErrQueueEmpty}
	}

	idx := 0
	if cur.Current != nil {
		idx = cur.Current.Index
	}

	threshold := k.atomic.BackThreshold()
	thresholdIsNormal := threshold > 0 && !math.IsNaN(threshold) && !math.IsInf(threshold, 0)
	elapsed := k.atomic.Elapsed()

	var newIdx int
	if thresholdIsNormal && elapsed > threshold {
		newIdx = idx
	} else {
		step := n
		if step < 1 {
			step = 1
		}
		newIdx = idx - step
		if newIdx < 0 {
			newIdx = 0
		}
	}

	return Result[Extra]{Snapshot: k.moveTo(cur, newIdx), Err: nil}
}

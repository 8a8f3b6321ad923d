package kernel

import (
	"math"

	"audioengine/internal/state"
)

// Seek moves the current track's read position (spec.md §4.1.2). Returns
// ErrNoCurrent if nothing is currently bound. target.Seconds is resolved
// against target.Mode and then clamped into [0, total_duration]: NaN and
// +Inf saturate to the end, -Inf and negative values saturate to 0.
func (k *Actor[Extra]) Seek(target SeekTarget) Result[Extra] {
	reply := make(chan Result[Extra], 1)
	k.chSeek <- seekReq[Extra]{target: target, reply: reply}
	return <-reply
}

func (k *Actor[Extra]) seek(target SeekTarget) Result[Extra] {
	cur := k.w.Peek().Get()
	if cur.Current == nil {
		return Result[Extra]{Snapshot: k.snapshot(), Err: ErrNoCurrent}
	}

	var raw float64
	switch target.Mode {
	case SeekAbsolute:
		raw = target.Seconds
	case SeekForward:
		raw = cur.Current.Elapsed + target.Seconds
	case SeekBackward:
		raw = cur.Current.Elapsed - target.Seconds
	}
	clamped := clampSeek(raw, k.currentTotal)

	k.atomic.SetAudioReadyToRecv(false)
	result := <-k.decodeActor.Seek(clamped)
	if result.Err != nil {
		k.atomic.SetAudioReadyToRecv(true)
		return Result[Extra]{Snapshot: k.snapshot(), Err: result.Err}
	}

	k.audioActor.DiscardCurrentAudio()

	snap := k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		if s.Current != nil {
			s.Current.Elapsed = result.Seeked
		}
	})
	return Result[Extra]{Snapshot: snap, Err: nil}
}

func clampSeek(target, total float64) float64 {
	if math.IsNaN(target) || math.IsInf(target, 1) {
		return total
	}
	if math.IsInf(target, -1) || target < 0 {
		return 0
	}
	if total > 0 && target > total {
		return total
	}
	return target
}

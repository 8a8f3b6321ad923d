package kernel

import "audioengine/internal/state"

// Stop clears both Current and the queue and pauses (spec.md §4.1: "stop
// clears both current and queue, sets playing=false"). Repeat and volume
// survive a stop.
func (k *Actor[Extra]) Stop() state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chStop <- snapshotReq[Extra]{reply: reply}
	return <-reply
}

func (k *Actor[Extra]) stop() state.Snapshot[Extra] {
	cur := k.w.Peek().Get()
	if cur.Current == nil && len(cur.Queue) == 0 && !cur.Playing {
		return k.snapshot()
	}

	if cur.Current != nil {
		k.atomic.SetAudioReadyToRecv(false)
		k.audioActor.DiscardCurrentAudio()
		k.decodeActor.DiscardAndStop()
	}
	k.atomic.SetPlaying(false)
	k.currentTotal = 0

	return k.w.CommitClone(state.AudioState[Extra]{
		Queue:   nil,
		Current: nil,
		Playing: false,
		Repeat:  cur.Repeat,
		Volume:  cur.Volume,
	})
}

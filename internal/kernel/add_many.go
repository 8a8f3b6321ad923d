package kernel

import (
	"audioengine/internal/source"
	"audioengine/internal/state"
)

// AddMany inserts sources into the queue per method, optionally clearing the
// queue first, optionally starting playback (spec.md §4.1.2). A no-op
// returning the unchanged snapshot if sources is empty — per the command
// surface (spec.md §4.1), add_many is fire-only: an empty source list is a
// precondition failure handled the shape-1 way, not a reply-channel error.
func (k *Actor[Extra]) AddMany(sources []source.Source[Extra], method InsertMethod, clear bool, play bool) state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chAddMany <- addManyReq[Extra]{sources: sources, method: method, clear: clear, play: play, reply: reply}
	return <-reply
}

func (k *Actor[Extra]) addMany(sources []source.Source[Extra], method InsertMethod, clearFlag bool, play bool) state.Snapshot[Extra] {
	if len(sources) == 0 {
		return k.snapshot()
	}

	cur := k.w.Peek().Get()
	queue := cur.Queue
	current := cur.Current
	playing := cur.Playing

	if clearFlag {
		if current != nil {
			k.atomic.SetAudioReadyToRecv(false)
			k.audioActor.DiscardCurrentAudio()
			k.decodeActor.DiscardAndStop()
		}
		queue = nil
		current = nil
		playing = false
		k.currentTotal = 0
	}

	kind := method.normalize(len(queue))

	var newQueue []source.Source[Extra]
	var insertAt int
	switch kind {
	case insertBack:
		insertAt = len(queue)
		newQueue = append(append([]source.Source[Extra](nil), queue...), sources...)
	case insertFront:
		insertAt = 0
		newQueue = make([]source.Source[Extra], 0, len(queue)+len(sources))
		newQueue = append(newQueue, sources...)
		newQueue = append(newQueue, queue...)
	default: // insertIndex
		insertAt = method.index
		newQueue = make([]source.Source[Extra], 0, len(queue)+len(sources))
		newQueue = append(newQueue, queue[:insertAt]...)
		newQueue = append(newQueue, sources...)
		newQueue = append(newQueue, queue[insertAt:]...)
	}

	// A splice at or before current's slot shifts its index; one after it
	// doesn't (spec.md §8's AddMany/Front example: index 0 before becomes 3
	// after inserting 3 sources at the front).
	if current != nil && insertAt <= current.Index {
		shifted := *current
		shifted.Index += len(sources)
		current = &shifted
	}

	// spec.md §9's resolved Open Question: play=true only takes effect when
	// there was no Current before this call; a non-empty queue with an
	// existing Current is left alone.
	startPlayback := play && current == nil
	if startPlayback {
		first := sources[0]
		current = &state.Current[Extra]{Source: first, Index: insertAt, Elapsed: 0}
		playing = true
	}

	snap := k.w.CommitClone(state.AudioState[Extra]{
		Queue:   newQueue,
		Current: current,
		Playing: playing,
		Repeat:  cur.Repeat,
		Volume:  cur.Volume,
	})

	if startPlayback {
		k.newSourceHandshake(current.Source)
	}

	return snap
}

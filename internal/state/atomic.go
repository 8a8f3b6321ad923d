package state

import (
	"math"
	"sync/atomic"
)

// AtomicState mirrors the hot fields of AudioState that other actors need to
// read on every frame without going through the commit/publish path. Kernel
// writes most fields; Audio writes elapsed and AudioReadyToRecv, and
// Engine.UpdateConfig writes the runtime-config fields. None of them require
// the reader to take a lock or wait on a channel.
//
// Float fields are stored bit-punned into Uint64 the same way the voice-chat
// teacher stores its notification scale into an atomic.Uint32 — there is no
// atomic float type in the standard library.
type AtomicState struct {
	playing            atomic.Bool
	repeat             atomic.Int32
	volume             atomic.Uint64
	elapsed            atomic.Uint64
	audioReadyToRecv   atomic.Bool
	backThreshold      atomic.Uint64
	elapsedRefreshRate atomic.Uint64
	queueEndClear      atomic.Bool
}

// NewAtomicState builds an AtomicState seeded with the given init-time
// constants. playing/elapsed/repeat/volume start at their zero values; the
// engine's New sets them from the initial AudioState.
func NewAtomicState(backThreshold, elapsedRefreshRate float64, queueEndClear bool) *AtomicState {
	a := &AtomicState{}
	a.audioReadyToRecv.Store(true)
	a.backThreshold.Store(math.Float64bits(backThreshold))
	a.elapsedRefreshRate.Store(math.Float64bits(elapsedRefreshRate))
	a.queueEndClear.Store(queueEndClear)
	return a
}

func (a *AtomicState) Playing() bool       { return a.playing.Load() }
func (a *AtomicState) SetPlaying(v bool)   { a.playing.Store(v) }

func (a *AtomicState) Repeat() Repeat         { return Repeat(a.repeat.Load()) }
func (a *AtomicState) SetRepeat(r Repeat)     { a.repeat.Store(int32(r)) }

func (a *AtomicState) Volume() Volume {
	return Volume(math.Float64frombits(a.volume.Load()))
}
func (a *AtomicState) SetVolume(v Volume) {
	a.volume.Store(math.Float64bits(float64(v)))
}

func (a *AtomicState) Elapsed() float64 {
	return math.Float64frombits(a.elapsed.Load())
}
func (a *AtomicState) SetElapsed(seconds float64) {
	a.elapsed.Store(math.Float64bits(seconds))
}

// AudioReadyToRecv reports whether Decode is allowed to forward frames to
// Audio. Kernel clears it at the start of the new-source handshake and Audio
// sets it back once it has drained the stale frames belonging to the
// previous source.
func (a *AtomicState) AudioReadyToRecv() bool     { return a.audioReadyToRecv.Load() }
func (a *AtomicState) SetAudioReadyToRecv(v bool) { a.audioReadyToRecv.Store(v) }

func (a *AtomicState) BackThreshold() float64 {
	return math.Float64frombits(a.backThreshold.Load())
}
func (a *AtomicState) SetBackThreshold(seconds float64) {
	a.backThreshold.Store(math.Float64bits(seconds))
}

func (a *AtomicState) ElapsedRefreshRate() float64 {
	return math.Float64frombits(a.elapsedRefreshRate.Load())
}
func (a *AtomicState) SetElapsedRefreshRate(seconds float64) {
	a.elapsedRefreshRate.Store(math.Float64bits(seconds))
}

func (a *AtomicState) QueueEndClear() bool     { return a.queueEndClear.Load() }
func (a *AtomicState) SetQueueEndClear(v bool) { a.queueEndClear.Store(v) }

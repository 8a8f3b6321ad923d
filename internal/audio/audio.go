// Package audio owns the Audio actor: it pulls decoded frames from Decode,
// resamples and scales them by the current volume, writes them to Output,
// and tracks elapsed playback time.
package audio

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"audioengine/internal/decode"
	"audioengine/internal/output"
	"audioengine/internal/state"
)

// ElapsedNotifier receives a callback, checked once per frame, whenever at
// least the configured elapsed refresh rate has accumulated since the
// previous notification. Caller
// implements this; Audio doesn't need to know about Snapshots or callbacks
// beyond this one method.
type ElapsedNotifier interface {
	NotifyElapsed(seconds float64)
}

type cmdDiscard struct {
	done chan struct{}
}

// Actor is the Audio actor (spec.md §4.3).
type Actor[Extra any] struct {
	fromDecode <-chan decode.Frame
	atomic     *state.AtomicState
	backend    output.Backend
	gcCh       chan<- any
	elapsedTo  ElapsedNotifier

	OutputErrors chan error

	cmdDiscard chan cmdDiscard
	shutdown   chan struct{}
	done       chan struct{}

	log *log.Logger

	deviceSpec   output.Spec
	deviceOpen   bool
	resampler    *resampler
	lastDecodeFmt decode.Format

	elapsedAcc    float64
	notifiedUpTo  float64
	dropped       atomic.Uint64

	bufferMillis        int
	disableDeviceSwitch bool
}

// Config holds the init-time knobs Audio needs that aren't state.
type Config struct {
	BufferMillis        int
	DisableDeviceSwitch bool
}

// New constructs an Audio actor.
func New[Extra any](fromDecode <-chan decode.Frame, atomicState *state.AtomicState, backend output.Backend, gcCh chan<- any, elapsedTo ElapsedNotifier, cfg Config) *Actor[Extra] {
	return &Actor[Extra]{
		fromDecode:          fromDecode,
		atomic:              atomicState,
		backend:             backend,
		gcCh:                gcCh,
		elapsedTo:           elapsedTo,
		OutputErrors:        make(chan error, 4),
		cmdDiscard:          make(chan cmdDiscard),
		shutdown:            make(chan struct{}),
		done:                make(chan struct{}),
		log:                 log.Default().WithPrefix("audio"),
		bufferMillis:        cfg.BufferMillis,
		disableDeviceSwitch: cfg.DisableDeviceSwitch,
	}
}

// DiscardCurrentAudio flushes any in-flight frame state, resets the elapsed
// accumulator, and re-arms AudioReadyToRecv once drained. Part of the
// new-source handshake, step 3; blocks until the drain completes so Kernel
// can rely on AudioReadyToRecv being set before it sends NewSource.
func (a *Actor[Extra]) DiscardCurrentAudio() {
	done := make(chan struct{})
	a.cmdDiscard <- cmdDiscard{done: done}
	<-done
}

// DroppedFrames returns the number of frame buffers Audio dropped itself
// because Gc's channel was full, rather than blocking on it. Diagnostic only.
func (a *Actor[Extra]) DroppedFrames() uint64 { return a.dropped.Load() }

// OutputErrorsCh exposes OutputErrors as a receive-only channel, satisfying
// kernel.AudioDriver.
func (a *Actor[Extra]) OutputErrorsCh() <-chan error { return a.OutputErrors }

// Shutdown stops the actor's Run loop.
func (a *Actor[Extra]) Shutdown() { close(a.shutdown) }

// Done is closed once Run has returned.
func (a *Actor[Extra]) Done() <-chan struct{} { return a.done }

// Run is the actor's main loop.
func (a *Actor[Extra]) Run() {
	defer close(a.done)
	for {
		select {
		case frame := <-a.fromDecode:
			a.handleFrame(frame)
		case cmd := <-a.cmdDiscard:
			a.handleDiscard(cmd)
		case <-a.shutdown:
			if a.backend != nil {
				_ = a.backend.Close()
			}
			return
		}
	}
}

func (a *Actor[Extra]) handleFrame(frame decode.Frame) {
	samples := frame.Samples[:frame.N]
	decFmt := a.lastDecodeFmt

	if a.resampler != nil && a.resampler.needed() {
		samples = a.resampler.process(samples)
	}

	vol := a.atomic.Volume().F64()
	if err := a.backend.Write(samples, vol); err != nil {
		a.log.Warn("write failed", "err", err)
		select {
		case a.OutputErrors <- err:
		default:
			a.log.Warn("output error channel full, dropping report")
		}
	}

	a.advanceElapsed(frame.N, decFmt)
	a.sendToGC(frame.Samples)
}

func (a *Actor[Extra]) advanceElapsed(n int, f decode.Format) {
	rate := f.SampleRate
	if rate <= 0 {
		rate = a.deviceSpec.SampleRate
	}
	if rate <= 0 {
		return
	}
	a.elapsedAcc += float64(n) / float64(rate)
	a.atomic.SetElapsed(a.elapsedAcc)

	refresh := a.atomic.ElapsedRefreshRate()
	if refresh <= 0 {
		return
	}
	if a.elapsedAcc-a.notifiedUpTo >= refresh {
		a.notifiedUpTo = a.elapsedAcc
		if a.elapsedTo != nil {
			a.elapsedTo.NotifyElapsed(a.elapsedAcc)
		}
	}
}

// OpenDevice (re)opens Output for decFmt, building a resampler if decFmt's
// sample rate doesn't match the device's. Called by Kernel when a new
// source's format is discovered, before frames for it start flowing.
func (a *Actor[Extra]) OpenDevice(decFmt decode.Format, preferredRate int) error {
	spec := output.Spec{SampleRate: preferredRate, Channels: decFmt.Channels}
	if preferredRate <= 0 {
		spec.SampleRate = decFmt.SampleRate
	}
	if err := a.backend.Open(spec, a.disableDeviceSwitch, a.bufferMillis); err != nil {
		return err
	}
	a.deviceSpec = a.backend.Spec()
	a.lastDecodeFmt = decFmt
	if decFmt.SampleRate != a.deviceSpec.SampleRate {
		a.resampler = newResampler(decFmt.SampleRate, a.deviceSpec.SampleRate)
	} else {
		a.resampler = nil
	}
	a.deviceOpen = true
	return a.backend.Play()
}

func (a *Actor[Extra]) handleDiscard(cmd cmdDiscard) {
	defer close(cmd.done)
	for {
		select {
		case frame := <-a.fromDecode:
			a.sendToGC(frame.Samples)
		default:
			a.elapsedAcc = 0
			a.notifiedUpTo = 0
			a.atomic.SetElapsed(0)
			a.resampler = nil
			if a.backend != nil {
				_ = a.backend.Discard()
			}
			a.atomic.SetAudioReadyToRecv(true)
			return
		}
	}
}

func (a *Actor[Extra]) sendToGC(v any) {
	select {
	case a.gcCh <- v:
	default:
		a.dropped.Add(1)
	}
}

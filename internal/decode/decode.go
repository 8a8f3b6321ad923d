package decode

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"audioengine/internal/source"
	"audioengine/internal/state"
)

const frameSize = 1024

// SeekResult is the reply to a Seek command: the position the Decoder
// actually reached (clamped to the stream's bounds) plus any error
// encountered performing the seek.
type SeekResult struct {
	Seeked float64
	Err    error
}

type cmdNewSource[Extra any] struct {
	src source.Source[Extra]
}

type cmdSeek struct {
	target float64
	reply  chan SeekResult
}

type cmdDiscardAndStop struct{}

// Actor is the Decode actor (spec.md §4.2): it owns a single open Decoder at
// a time, stays at most one frame ahead of Audio, and never blocks on the
// frame channel past a single non-blocking send attempt per step so command
// handling is never starved.
type Actor[Extra any] struct {
	opener Opener[Extra]
	atomic *state.AtomicState
	gcCh   chan<- any

	ToAudio      chan Frame
	SourceErrors chan error
	DecodeErrors chan error

	cmdNewSource chan cmdNewSource[Extra]
	cmdSeek      chan cmdSeek
	cmdDiscard   chan cmdDiscardAndStop
	shutdown     chan struct{}
	done         chan struct{}

	log *log.Logger

	dec          Decoder
	doneDecoding bool
	buffered     *Frame
	dropped      atomic.Uint64
}

// New constructs a Decode actor. toAudioCap is the capacity of the channel
// Audio reads frames from; it bounds how far ahead of playback Decode may
// run (spec.md calls for a single buffer of lookahead, so 1 is the intended
// value in production; tests may widen it).
func New[Extra any](opener Opener[Extra], atomicState *state.AtomicState, gcCh chan<- any, toAudioCap int) *Actor[Extra] {
	return &Actor[Extra]{
		opener:       opener,
		atomic:       atomicState,
		gcCh:         gcCh,
		ToAudio:      make(chan Frame, toAudioCap),
		SourceErrors: make(chan error, 4),
		DecodeErrors: make(chan error, 4),
		cmdNewSource: make(chan cmdNewSource[Extra]),
		cmdSeek:      make(chan cmdSeek),
		cmdDiscard:   make(chan cmdDiscardAndStop),
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		log:          log.Default().WithPrefix("decode"),
	}
}

// NewSource asks Decode to drop whatever it was decoding and open src. It is
// fire-only: a failure to open arrives later on SourceErrors; success sends
// nothing.
func (a *Actor[Extra]) NewSource(src source.Source[Extra]) {
	a.cmdNewSource <- cmdNewSource[Extra]{src: src}
}

// Seek asks Decode to move its read position. The reply channel receives
// exactly one SeekResult.
func (a *Actor[Extra]) Seek(target float64) <-chan SeekResult {
	reply := make(chan SeekResult, 1)
	a.cmdSeek <- cmdSeek{target: target, reply: reply}
	return reply
}

// DiscardAndStop flushes any buffered-but-unsent frame and stops pulling new
// ones from the current Decoder until the next NewSource. Fire-only: part of
// the new-source handshake, step 2.
func (a *Actor[Extra]) DiscardAndStop() {
	a.cmdDiscard <- cmdDiscardAndStop{}
}

// DroppedFrames returns the number of values (stale frames or closed
// Decoders) Decode dropped itself because Gc's channel was full. A frame
// Audio isn't ready for is kept, not counted. Diagnostic only.
func (a *Actor[Extra]) DroppedFrames() uint64 { return a.dropped.Load() }

// SourceErrorsCh exposes SourceErrors as a receive-only channel, satisfying
// kernel.DecodeDriver.
func (a *Actor[Extra]) SourceErrorsCh() <-chan error { return a.SourceErrors }

// DecodeErrorsCh exposes DecodeErrors as a receive-only channel, satisfying
// kernel.DecodeDriver.
func (a *Actor[Extra]) DecodeErrorsCh() <-chan error { return a.DecodeErrors }

// Shutdown stops the actor's Run loop.
func (a *Actor[Extra]) Shutdown() { close(a.shutdown) }

// Done is closed once Run has returned.
func (a *Actor[Extra]) Done() <-chan struct{} { return a.done }

// Run is the actor's main loop. It alternates a non-blocking decode step
// with a non-blocking poll of its command channels so a long-running decode
// never starves incoming commands.
func (a *Actor[Extra]) Run() {
	defer close(a.done)
	defer a.closeDecoder()
	for {
		a.step()
		select {
		case cmd := <-a.cmdNewSource:
			a.handleNewSource(cmd)
		case cmd := <-a.cmdSeek:
			a.handleSeek(cmd)
		case <-a.cmdDiscard:
			a.handleDiscard()
		case <-a.shutdown:
			return
		default:
		}
	}
}

func (a *Actor[Extra]) step() {
	if a.buffered == nil && a.dec != nil && !a.doneDecoding {
		buf := make([][2]float64, frameSize)
		n, err := a.dec.NextFrame(buf)
		if err != nil {
			a.doneDecoding = true
			if err != ErrEndOfStream {
				a.log.Warn("decode error", "err", err)
				select {
				case a.DecodeErrors <- err:
				default:
					a.log.Warn("decode error channel full, dropping report")
				}
			}
		} else if n > 0 {
			a.buffered = &Frame{Samples: buf[:n], N: n}
		}
	}

	if a.buffered != nil && a.audioReady() {
		select {
		case a.ToAudio <- *a.buffered:
			a.buffered = nil
		default:
			// Audio isn't draining fast enough; keep the buffered frame and
			// try again next step rather than dropping audible content.
		}
	}
}

func (a *Actor[Extra]) audioReady() bool {
	return len(a.ToAudio) < cap(a.ToAudio) && a.atomic.AudioReadyToRecv()
}

func (a *Actor[Extra]) handleNewSource(cmd cmdNewSource[Extra]) {
	a.closeDecoder()
	a.buffered = nil
	a.doneDecoding = false

	dec, err := a.opener(cmd.src)
	if err != nil {
		a.log.Warn("failed to open source", "err", err)
		select {
		case a.SourceErrors <- err:
		default:
			a.log.Warn("source error channel full, dropping report")
		}
		a.dec = nil
		a.doneDecoding = true
		return
	}
	a.dec = dec
}

func (a *Actor[Extra]) handleSeek(cmd cmdSeek) {
	if a.dec == nil {
		cmd.reply <- SeekResult{Err: ErrEndOfStream}
		return
	}
	a.buffered = nil
	a.doneDecoding = false
	seeked, err := a.dec.SeekTo(cmd.target)
	cmd.reply <- SeekResult{Seeked: seeked, Err: err}
}

func (a *Actor[Extra]) handleDiscard() {
	if a.buffered != nil {
		a.sendToGC(a.buffered)
		a.buffered = nil
	}
	a.doneDecoding = true
}

func (a *Actor[Extra]) closeDecoder() {
	if a.dec != nil {
		a.sendToGC(a.dec)
		a.dec = nil
	}
}

func (a *Actor[Extra]) sendToGC(v any) {
	select {
	case a.gcCh <- v:
	default:
		a.dropped.Add(1)
		if c, ok := v.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
}

// Package kernel owns the Kernel actor (spec.md §4.1): the single writer of
// AudioState, the router for every queue/transport command, and the
// coordinator of the new-source handshake with Decode and Audio.
package kernel

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"audioengine/internal/decode"
	"audioengine/internal/source"
	"audioengine/internal/state"
)

// DecodeDriver is the subset of decode.Actor Kernel drives. Parameterizing
// Kernel over this interface (rather than importing *decode.Actor directly
// everywhere) keeps kernel_test.go's fakes small.
type DecodeDriver[Extra any] interface {
	NewSource(source.Source[Extra])
	Seek(target float64) <-chan decode.SeekResult
	DiscardAndStop()
	SourceErrorsCh() <-chan error
	DecodeErrorsCh() <-chan error
}

// AudioDriver is the subset of audio.Actor Kernel drives.
type AudioDriver[Extra any] interface {
	DiscardCurrentAudio()
	OpenDevice(decFmt decode.Format, preferredRate int) error
	OutputErrorsCh() <-chan error
}

// Notifier is the subset of caller.Actor Kernel pushes notifications
// through. Elapsed notifications are routed to Kernel as well as to Caller
// (Kernel implements audio.ElapsedNotifier itself, see NotifyElapsed below)
// so the published snapshot's Current.Elapsed stays live.
type Notifier interface {
	NotifyNext()
	NotifyQueueEnd()
	NotifyRepeat()
	NotifyErrorDecode(error)
	NotifyErrorSource(error)
	NotifyErrorOutput(error)
}

// Actor is the Kernel actor. Exactly one goroutine ever calls w.CommitClone
// / w.CommitReplay: Actor.Run's own. Every exported method sends a request
// over a channel and blocks for that request's own reply — never call them
// from the goroutine running Run.
type Actor[Extra any] struct {
	w      *state.Writer[Extra]
	atomic *state.AtomicState
	gcCh   chan<- any

	decodeActor DecodeDriver[Extra]
	audioActor  AudioDriver[Extra]
	opener      decode.Opener[Extra]
	notifier    Notifier
	policies    Policies

	preferredRate int

	// currentTotal is the total duration, in seconds, of whatever source
	// Current currently refers to. It is not part of AudioState (spec.md's
	// Current carries no duration field) — Kernel alone needs it, to clamp
	// seek targets, so it lives here instead of being republished on every
	// commit.
	currentTotal float64
	// currentFormat is the decoded format probed for Current, kept so
	// Reopen can retry OpenDevice without re-running the whole new-source
	// handshake (which would re-fire NotifyNext for a track that hasn't
	// actually changed).
	currentFormat decode.Format
	// deviceOK reports whether the last OpenDevice attempt succeeded.
	// Cleared on an Output error, set again on any successful open.
	deviceOK atomic.Bool

	chToggle        chan snapshotReq[Extra]
	chPlay          chan snapshotReq[Extra]
	chPause         chan snapshotReq[Extra]
	chStop          chan snapshotReq[Extra]
	chNext          chan snapshotReq[Extra]
	chPrevious      chan snapshotReq[Extra]
	chClear         chan clearReq[Extra]
	chRepeat        chan repeatReq[Extra]
	chVolume        chan volumeReq[Extra]
	chShuffle       chan shuffleReq[Extra]
	chAddMany       chan addManyReq[Extra]
	chRestore       chan restoreReq[Extra]
	chBackThreshold chan backThresholdReq

	chSeek        chan seekReq[Extra]
	chSkip        chan skipReq[Extra]
	chBack        chan backReq[Extra]
	chSetIndex    chan setIndexReq[Extra]
	chRemoveRange chan removeRangeReq[Extra]
	chReopen      chan snapshotReq[Extra]

	chElapsed chan float64

	shutdown chan struct{}
	done     chan struct{}

	log *log.Logger
}

// Config bundles the collaborators and policies Kernel needs at construction
// time. Everything here is wired by the root engine package.
type Config[Extra any] struct {
	Writer        *state.Writer[Extra]
	Atomic        *state.AtomicState
	GC            chan<- any
	Decode        DecodeDriver[Extra]
	Audio         AudioDriver[Extra]
	Opener        decode.Opener[Extra]
	Notifier      Notifier
	Policies      Policies
	PreferredRate int
}

// New constructs a Kernel actor. Call Run on a dedicated goroutine to start
// it; the command methods below block until that goroutine services them.
func New[Extra any](cfg Config[Extra]) *Actor[Extra] {
	a := &Actor[Extra]{
		w:             cfg.Writer,
		atomic:        cfg.Atomic,
		gcCh:          cfg.GC,
		decodeActor:   cfg.Decode,
		audioActor:    cfg.Audio,
		opener:        cfg.Opener,
		notifier:      cfg.Notifier,
		policies:      cfg.Policies,
		preferredRate: cfg.PreferredRate,

		chToggle:        make(chan snapshotReq[Extra]),
		chPlay:          make(chan snapshotReq[Extra]),
		chPause:         make(chan snapshotReq[Extra]),
		chStop:          make(chan snapshotReq[Extra]),
		chNext:          make(chan snapshotReq[Extra]),
		chPrevious:      make(chan snapshotReq[Extra]),
		chClear:         make(chan clearReq[Extra]),
		chRepeat:        make(chan repeatReq[Extra]),
		chVolume:        make(chan volumeReq[Extra]),
		chShuffle:       make(chan shuffleReq[Extra]),
		chAddMany:       make(chan addManyReq[Extra]),
		chRestore:       make(chan restoreReq[Extra]),
		chBackThreshold: make(chan backThresholdReq),

		chSeek:        make(chan seekReq[Extra]),
		chSkip:        make(chan skipReq[Extra]),
		chBack:        make(chan backReq[Extra]),
		chSetIndex:    make(chan setIndexReq[Extra]),
		chRemoveRange: make(chan removeRangeReq[Extra]),
		chReopen:      make(chan snapshotReq[Extra]),

		chElapsed: make(chan float64, 1),

		shutdown: make(chan struct{}),
		done:     make(chan struct{}),

		log: log.Default().WithPrefix("kernel"),
	}
	a.deviceOK.Store(true)
	return a
}

// Shutdown stops Run. Idempotent from the caller's point of view only if
// called once; Kernel follows the rest of the pack in not guarding against
// a double-close.
func (k *Actor[Extra]) Shutdown() { close(k.shutdown) }

// Done is closed once Run has returned.
func (k *Actor[Extra]) Done() <-chan struct{} { return k.done }

// Run is Kernel's main loop (spec.md §5: "channel select on its command set;
// blocks when idle"). Commands are serviced strictly one at a time in the
// order select happens to observe them ready, which is all the total
// ordering spec.md §5 requires — Go's select doesn't bias toward any one
// case, but since every producer is itself a single blocking call from a
// single goroutine, there is never more than one ready command of a given
// kind racing another of the same kind.
func (k *Actor[Extra]) Run() {
	defer close(k.done)
	for {
		select {
		case req := <-k.chToggle:
			req.reply <- k.toggle()
		case req := <-k.chPlay:
			req.reply <- k.play()
		case req := <-k.chPause:
			req.reply <- k.pause()
		case req := <-k.chStop:
			req.reply <- k.stop()
		case req := <-k.chNext:
			req.reply <- k.next()
		case req := <-k.chPrevious:
			req.reply <- k.previous()
		case req := <-k.chClear:
			req.reply <- k.clear(req.mode)
		case req := <-k.chRepeat:
			req.reply <- k.repeat(req.mode)
		case req := <-k.chVolume:
			req.reply <- k.volume(req.vol)
		case req := <-k.chShuffle:
			req.reply <- k.shuffle(req.mode)
		case req := <-k.chAddMany:
			req.reply <- k.addMany(req.sources, req.method, req.clear, req.play)
		case req := <-k.chRestore:
			req.reply <- k.restore(req.next)
		case req := <-k.chBackThreshold:
			k.atomic.SetBackThreshold(req.seconds)
			close(req.reply)

		case req := <-k.chSeek:
			req.reply <- k.seek(req.target)
		case req := <-k.chSkip:
			req.reply <- k.skip(req.n)
		case req := <-k.chBack:
			req.reply <- k.back(req.n)
		case req := <-k.chSetIndex:
			req.reply <- k.setIndex(req.index, req.play)
		case req := <-k.chRemoveRange:
			req.reply <- k.removeRange(req.start, req.end)
		case req := <-k.chReopen:
			req.reply <- k.reopen()

		case seconds := <-k.chElapsed:
			k.handleElapsedTick(seconds)

		case err := <-k.decodeActor.SourceErrorsCh():
			k.dispatchError(k.policies.Source, err, k.notifier.NotifyErrorSource)
		case err := <-k.decodeActor.DecodeErrorsCh():
			k.dispatchError(k.policies.Decode, err, k.notifier.NotifyErrorDecode)
		case err := <-k.audioActor.OutputErrorsCh():
			k.deviceOK.Store(false)
			k.dispatchError(k.policies.Output, err, k.notifier.NotifyErrorOutput)

		case <-k.shutdown:
			return
		}
	}
}

func (k *Actor[Extra]) dispatchError(policy ErrorPolicy, err error, notify func(error)) {
	switch policy {
	case PolicyPause:
		k.pause()
	case PolicyPauseAndNotify:
		k.pause()
		notify(err)
	case PolicyNotify:
		notify(err)
	}
}

// NotifyElapsed implements audio.ElapsedNotifier so Audio can drive Kernel's
// own commit of a live Current.Elapsed alongside the user-facing callback
// Caller delivers. Called from Audio's goroutine: it must never touch
// AudioState directly, only hand off to Run's goroutine over a channel.
func (k *Actor[Extra]) NotifyElapsed(seconds float64) {
	select {
	case k.chElapsed <- seconds:
	default:
		// A tick is already queued; the one in flight will be superseded by
		// the next one shortly, so dropping this one loses nothing observable.
	}
}

func (k *Actor[Extra]) handleElapsedTick(seconds float64) {
	snap := k.w.CommitReplay(func(s *state.AudioState[Extra]) {
		if s.Current != nil {
			s.Current.Elapsed = seconds
		}
	})
	_ = snap
}

// probe opens src just long enough to read its format and total duration,
// then closes it. This runs on Kernel's own goroutine (never the audio hot
// path) so a synchronous file open here is acceptable.
func (k *Actor[Extra]) probe(src source.Source[Extra]) (decode.Format, float64, error) {
	dec, err := k.opener(src)
	if err != nil {
		return decode.Format{}, 0, err
	}
	defer dec.Close()
	return dec.Format(), dec.TotalDuration(), nil
}

// newSourceHandshake performs spec.md §4.1.1's four-step protocol and
// returns the new source's total duration (0 if probing failed). Probing
// failures are routed through the Source error policy but never block the
// command that triggered the switch from completing its queue/index
// mutation — the queue's shape is authoritative even when the file behind an
// entry turns out to be unplayable.
func (k *Actor[Extra]) newSourceHandshake(src source.Source[Extra]) float64 {
	format, total, err := k.probe(src)
	if err != nil {
		k.dispatchError(k.policies.Source, err, k.notifier.NotifyErrorSource)
		k.currentTotal = 0
		return 0
	}

	k.notifier.NotifyNext()

	k.atomic.SetAudioReadyToRecv(false)
	k.audioActor.DiscardCurrentAudio()
	k.decodeActor.DiscardAndStop()

	k.currentFormat = format
	if err := k.audioActor.OpenDevice(format, k.preferredRate); err != nil {
		k.deviceOK.Store(false)
		k.dispatchError(k.policies.Output, err, k.notifier.NotifyErrorOutput)
		k.currentTotal = total
		return total
	}
	k.deviceOK.Store(true)

	k.decodeActor.NewSource(src)
	k.currentTotal = total
	return total
}

// DeviceHealthy reports whether the last OpenDevice attempt succeeded.
// Engine's audio_retry loop polls this to decide whether Reopen is worth
// attempting again.
func (k *Actor[Extra]) DeviceHealthy() bool { return k.deviceOK.Load() }

// Reopen retries OpenDevice for whatever Current is bound to, using the
// format probed for it, without re-running the rest of the new-source
// handshake (no discard, no NotifyNext) since the source itself hasn't
// changed. A no-op if there's no Current.
func (k *Actor[Extra]) Reopen() state.Snapshot[Extra] {
	reply := make(chan state.Snapshot[Extra], 1)
	k.chReopen <- snapshotReq[Extra]{reply: reply}
	return <-reply
}

func (k *Actor[Extra]) reopen() state.Snapshot[Extra] {
	cur := k.w.Peek().Get()
	if cur.Current == nil {
		return k.snapshot()
	}
	if err := k.audioActor.OpenDevice(k.currentFormat, k.preferredRate); err != nil {
		k.deviceOK.Store(false)
		k.dispatchError(k.policies.Output, err, k.notifier.NotifyErrorOutput)
		return k.snapshot()
	}
	k.deviceOK.Store(true)
	k.atomic.SetAudioReadyToRecv(true)
	return k.snapshot()
}

func (k *Actor[Extra]) sendToGC(v any) {
	select {
	case k.gcCh <- v:
	default:
	}
}

func (k *Actor[Extra]) snapshot() state.Snapshot[Extra] {
	return k.w.Peek()
}

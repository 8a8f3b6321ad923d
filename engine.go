// Package audioengine is the public facade: construct an Engine with New,
// drive playback through its methods, and observe state through State.
// Engine itself stays thin (client/app.go's App is the same shape: a handle
// that delegates to the actors, never holding playback logic of its own) —
// every command forwards straight to the Kernel actor; the real work lives
// in internal/kernel, internal/decode, internal/audio, and internal/output.
package audioengine

import (
	"sync"
	"sync/atomic"
	"time"

	"audioengine/internal/audio"
	"audioengine/internal/caller"
	"audioengine/internal/decode"
	"audioengine/internal/gc"
	"audioengine/internal/kernel"
	"audioengine/internal/metadata"
	"audioengine/internal/output"
	"audioengine/internal/source"
	"audioengine/internal/state"
)

// Engine owns one full actor pipeline: Kernel, Decode, Audio, Gc, and
// Caller, each on its own goroutine, plus the Output backend Audio writes
// to. Construct one with New; call Shutdown when done with it.
type Engine[Extra any] struct {
	reader *state.Reader[Extra]
	atomic *state.AtomicState

	kernelActor *kernel.Actor[Extra]
	decodeActor *decode.Actor[Extra]
	audioActor  *audio.Actor[Extra]
	gcActor     *gc.Actor
	callerActor *caller.Actor[Extra]

	shutdownBlocking bool

	running atomic.Bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// elapsedFanout relays Audio's elapsed ticks to both Kernel (which
// republishes Current.Elapsed into AudioState) and Caller (which runs the
// user's Elapsed callback) — audio.ElapsedNotifier only accepts one target,
// and Kernel itself doesn't exist yet at the point audio.New needs one, so
// kernel is filled in after construction, before any actor's Run starts.
type elapsedFanout[Extra any] struct {
	kernel *kernel.Actor[Extra]
	caller *caller.Actor[Extra]
}

func (f *elapsedFanout[Extra]) NotifyElapsed(seconds float64) {
	f.kernel.NotifyElapsed(seconds)
	f.caller.NotifyElapsed(seconds)
}

// New builds an Engine from cfg and starts every actor's goroutine. If
// cfg.InitBlocking is true, New does not return until every actor's
// goroutine has started; each one signals just before it calls its Run, so
// New does not wait for the Run loops themselves to begin.
func New[Extra any](cfg Config[Extra]) (*Engine[Extra], error) {
	initial := state.Initial[Extra]()
	if cfg.AudioState != nil {
		initial = *cfg.AudioState
	}
	w := state.NewWriter(initial)
	reader := state.NewReader(w)

	live := cfg.LiveConfig
	if live == nil {
		d := DefaultRuntimeConfig()
		live = &d
	}
	atomicState := state.NewAtomicState(live.BackThreshold, live.ElapsedRefreshRate, live.QueueEndClear)
	atomicState.SetVolume(initial.Volume)
	atomicState.SetRepeat(initial.Repeat)
	atomicState.SetPlaying(initial.Playing)
	if initial.Current != nil {
		atomicState.SetElapsed(initial.Current.Elapsed)
	}

	gcCapacity := cfg.GCCapacity
	if gcCapacity <= 0 {
		gcCapacity = 64
	}
	gcActor := gc.New(gcCapacity)

	opener := cfg.Opener
	if opener == nil {
		opener = decode.OpenBeep[Extra]
	}

	lookahead := cfg.DecodeLookahead
	if lookahead <= 0 {
		lookahead = 1
	}
	decodeActor := decode.New(opener, atomicState, gcActor.Sender(), lookahead)

	backend := cfg.Backend
	if backend == nil {
		backend = output.NewOtoBackend()
	}

	callerActor := caller.New(cfg.Callbacks, reader, cfg.CallbackLowPriority)
	fanout := &elapsedFanout[Extra]{caller: callerActor}

	audioCfg := audio.Config{BufferMillis: cfg.BufferMillis, DisableDeviceSwitch: cfg.DisableDeviceSwitch}
	audioActor := audio.New[Extra](decodeActor.ToAudio, atomicState, backend, gcActor.Sender(), fanout, audioCfg)

	preferredRate := cfg.PreferredRate
	if preferredRate <= 0 {
		preferredRate = 44100
	}
	kernelActor := kernel.New(kernel.Config[Extra]{
		Writer:        w,
		Atomic:        atomicState,
		GC:            gcActor.Sender(),
		Decode:        decodeActor,
		Audio:         audioActor,
		Opener:        opener,
		Notifier:      callerActor,
		Policies:      cfg.Policies,
		PreferredRate: preferredRate,
	})
	fanout.kernel = kernelActor

	e := &Engine[Extra]{
		reader:           reader,
		atomic:           atomicState,
		kernelActor:      kernelActor,
		decodeActor:      decodeActor,
		audioActor:       audioActor,
		gcActor:          gcActor,
		callerActor:      callerActor,
		shutdownBlocking: live.ShutdownBlocking || cfg.ShutdownBlocking,
		stop:             make(chan struct{}),
	}

	started := make(chan struct{}, 5)
	spawn := func(run func()) {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			started <- struct{}{}
			run()
		}()
	}
	spawn(func() { gcActor.Run(e.stop) })
	spawn(decodeActor.Run)
	spawn(audioActor.Run)
	spawn(func() { callerActor.Run(e.stop) })
	spawn(kernelActor.Run)
	e.running.Store(true)

	if cfg.InitBlocking {
		for i := 0; i < 5; i++ {
			<-started
		}
	}

	if initial.Current != nil {
		kernelActor.Reopen()
	}
	if cfg.AudioRetry > 0 {
		e.startAudioRetry(cfg.AudioRetry)
	}

	return e, nil
}

// startAudioRetry keeps retrying Kernel's last OpenDevice attempt on a
// timer, for the case the device was unavailable when a Current was first
// bound (spec.md §6: "period of the audio-open retry loop when the device
// is unavailable at init"). It backs off to doing nothing once the device
// reports healthy, so a long-running Engine doesn't reopen a perfectly
// fine device on every tick.
func (e *Engine[Extra]) startAudioRetry(period time.Duration) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !e.kernelActor.DeviceHealthy() && e.reader.Get().Get().Current != nil {
					e.kernelActor.Reopen()
				}
			case <-e.stop:
				return
			}
		}
	}()
}

// State returns the most recently published Snapshot without blocking.
func (e *Engine[Extra]) State() state.Snapshot[Extra] { return e.reader.Get() }

// DroppedFrames aggregates the diagnostic drop counters Decode and Audio
// keep (values each actor dropped itself because Gc's channel was full,
// rather than blocking on it).
func (e *Engine[Extra]) DroppedFrames() (decodeDropped, audioDropped uint64) {
	return e.decodeActor.DroppedFrames(), e.audioActor.DroppedFrames()
}

// Shutdown stops every actor. If the engine was built with ShutdownBlocking
// (directly or via RuntimeConfig), Shutdown does not return until every
// actor's Run loop has exited — mirroring client/audio.go's AudioEngine.Stop,
// which must wait for its capture/playback goroutines before closing the
// native streams they hold, so a goroutine never touches a backend resource
// that's already being freed.
func (e *Engine[Extra]) Shutdown() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	close(e.stop)
	e.kernelActor.Shutdown()
	e.decodeActor.Shutdown()
	e.audioActor.Shutdown()

	if e.shutdownBlocking {
		<-e.kernelActor.Done()
		<-e.decodeActor.Done()
		<-e.audioActor.Done()
		e.wg.Wait()
	}
}

// UpdateConfig applies live-updatable runtime settings (spec.md §6).
// ShutdownBlocking only takes effect on the next Shutdown call.
func (e *Engine[Extra]) UpdateConfig(rc RuntimeConfig) {
	e.atomic.SetBackThreshold(rc.BackThreshold)
	e.atomic.SetElapsedRefreshRate(rc.ElapsedRefreshRate)
	e.atomic.SetQueueEndClear(rc.QueueEndClear)
	e.shutdownBlocking = rc.ShutdownBlocking
}

// Errors forwarded from command preconditions (spec.md §7); re-exported here
// so callers never need to import internal/kernel themselves.
var (
	ErrNoCurrent   = kernel.ErrNoCurrent
	ErrQueueEmpty  = kernel.ErrQueueEmpty
	ErrOutOfBounds = kernel.ErrOutOfBounds
	ErrBadRange    = kernel.ErrBadRange
	ErrNoSources   = kernel.ErrNoSources
)

// Re-exported types so callers only ever import the root package.
type (
	InsertMethod = kernel.InsertMethod
	ClearMode    = kernel.ClearMode
	ShuffleMode  = kernel.ShuffleMode
	SeekTarget   = kernel.SeekTarget
	SeekMode     = kernel.SeekMode
	ErrorPolicy  = kernel.ErrorPolicy
	Policies     = kernel.Policies
	Tags         = metadata.Tags
)

const (
	ClearQueue   = kernel.ClearQueue
	ClearCurrent = kernel.ClearCurrent

	ShuffleFull  = kernel.ShuffleFull
	ShuffleReset = kernel.ShuffleReset
	ShuffleQueue = kernel.ShuffleQueue

	SeekAbsolute = kernel.SeekAbsolute
	SeekForward  = kernel.SeekForward
	SeekBackward = kernel.SeekBackward

	PolicyPause          = kernel.PolicyPause
	PolicyPauseAndNotify = kernel.PolicyPauseAndNotify
	PolicyNotify         = kernel.PolicyNotify
)

func InsertAtBack() InsertMethod       { return kernel.InsertAtBack() }
func InsertAtFront() InsertMethod      { return kernel.InsertAtFront() }
func InsertAtIndex(i int) InsertMethod { return kernel.InsertAtIndex(i) }

// Toggle flips play/pause.
func (e *Engine[Extra]) Toggle() state.Snapshot[Extra] { return e.kernelActor.Toggle() }

// Play resumes playback; a no-op if there's no Current.
func (e *Engine[Extra]) Play() state.Snapshot[Extra] { return e.kernelActor.Play() }

// Pause pauses playback; a no-op if already paused.
func (e *Engine[Extra]) Pause() state.Snapshot[Extra] { return e.kernelActor.Pause() }

// Stop clears both the queue and Current and pauses.
func (e *Engine[Extra]) Stop() state.Snapshot[Extra] { return e.kernelActor.Stop() }

// Next advances to the next track, honoring Repeat.
func (e *Engine[Extra]) Next() state.Snapshot[Extra] { return e.kernelActor.Next() }

// Previous moves to the previous track, or restarts Current if it has played
// past back_threshold.
func (e *Engine[Extra]) Previous() state.Snapshot[Extra] { return e.kernelActor.Previous() }

// Clear empties either the queue or just Current, per mode.
func (e *Engine[Extra]) Clear(mode ClearMode) state.Snapshot[Extra] {
	return e.kernelActor.Clear(mode)
}

// Repeat sets the repeat mode.
func (e *Engine[Extra]) Repeat(mode state.Repeat) state.Snapshot[Extra] {
	return e.kernelActor.Repeat(mode)
}

// Volume sets the output volume.
func (e *Engine[Extra]) Volume(v state.Volume) state.Snapshot[Extra] {
	return e.kernelActor.Volume(v)
}

// Shuffle reshuffles the queue per mode.
func (e *Engine[Extra]) Shuffle(mode ShuffleMode) state.Snapshot[Extra] {
	return e.kernelActor.Shuffle(mode)
}

// Add queues a single source.
func (e *Engine[Extra]) Add(src source.Source[Extra], method InsertMethod, clear bool, play bool) state.Snapshot[Extra] {
	return e.kernelActor.Add(src, method, clear, play)
}

// AddMany queues multiple sources in one commit.
func (e *Engine[Extra]) AddMany(sources []source.Source[Extra], method InsertMethod, clear bool, play bool) state.Snapshot[Extra] {
	return e.kernelActor.AddMany(sources, method, clear, play)
}

// Probe extracts best-effort tag metadata (title/artist/album/year) for src
// (SPEC_FULL.md's supplemented metadata feature, internal/metadata). It
// never touches the playback path: callers typically probe a Source before
// handing it to Add/AddMany, to populate a library view, but probing and
// queuing are otherwise independent. A Source with no readable tags yields
// a zero-value Tags, never an error.
func (e *Engine[Extra]) Probe(src source.Source[Extra]) Tags {
	return metadata.Probe(src)
}

// Restore replaces the entire AudioState, e.g. to resume a session saved
// earlier via State().
func (e *Engine[Extra]) Restore(next state.AudioState[Extra]) state.Snapshot[Extra] {
	return e.kernelActor.Restore(next)
}

// Seek moves the read position of Current.
func (e *Engine[Extra]) Seek(target SeekTarget) kernel.Result[Extra] { return e.kernelActor.Seek(target) }

// Skip moves forward n tracks.
func (e *Engine[Extra]) Skip(n int) kernel.Result[Extra] { return e.kernelActor.Skip(n) }

// Back moves backward n tracks, or restarts Current if within back_threshold.
func (e *Engine[Extra]) Back(n int) kernel.Result[Extra] { return e.kernelActor.Back(n) }

// SetIndex jumps directly to an index in the queue.
func (e *Engine[Extra]) SetIndex(i int, play *bool) kernel.Result[Extra] {
	return e.kernelActor.SetIndex(i, play)
}

// Remove drops a single queue entry.
func (e *Engine[Extra]) Remove(i int) kernel.Result[Extra] { return e.kernelActor.Remove(i) }

// RemoveRange drops queue entries [start, end] inclusive.
func (e *Engine[Extra]) RemoveRange(start, end int) kernel.Result[Extra] {
	return e.kernelActor.RemoveRange(start, end)
}

// SetBackThreshold updates the live back_threshold seconds.
func (e *Engine[Extra]) SetBackThreshold(seconds float64) { e.kernelActor.SetBackThreshold(seconds) }

package audioengine

import (
	"time"

	"audioengine/internal/caller"
	"audioengine/internal/decode"
	"audioengine/internal/kernel"
	"audioengine/internal/output"
	"audioengine/internal/state"
)

// Config bundles everything Engine needs at construction time (spec.md §6
// "Engine configuration (init)"). Fields left at their zero value fall back
// to the defaults documented per field.
type Config[Extra any] struct {
	// Callbacks are the optional user-supplied notification functions.
	Callbacks caller.Callbacks[Extra]

	// CallbackLowPriority lowers Caller's goroutine priority. Go doesn't
	// expose OS thread priority the way the original runtime does; this is
	// honored as a GOMAXPROCS-neutral scheduling hint via runtime.Gosched
	// calls in Caller's dispatch loop rather than a true priority change.
	CallbackLowPriority bool

	// ShutdownBlocking, if true, makes Shutdown wait for every actor to
	// reach its done channel before returning.
	ShutdownBlocking bool

	// InitBlocking, if true, makes New wait until every actor's Run
	// goroutine has started before returning.
	InitBlocking bool

	// AudioRetry is the period of the background retry loop that keeps
	// trying to open the audio device if it was unavailable at init. Zero
	// disables retrying: a failed initial open is reported once via
	// ErrorOutput (if configured) and never retried automatically.
	AudioRetry time.Duration

	// MediaControls requests the OS media-controls integration. Out of
	// scope for this engine (spec.md §6 lists it "for completeness" only);
	// setting it true has no effect.
	MediaControls bool

	// AudioState, if non-nil, restores this state instead of starting from
	// state.Initial.
	AudioState *state.AudioState[Extra]

	// LiveConfig seeds RuntimeConfig's live-updatable fields. Defaults to
	// DefaultRuntimeConfig() if nil.
	LiveConfig *RuntimeConfig

	// Policies selects the error-handling policy per backend error axis. The
	// zero value (PolicyPause on every axis) is a safe default: playback
	// always stops on a backend error even if no callback is configured.
	Policies kernel.Policies

	// PreferredRate is the sample rate Engine asks Output to open the device
	// at; tracks at any other rate are resampled to it. 0 defaults to 44100.
	PreferredRate int

	// BufferMillis and DisableDeviceSwitch are forwarded to audio.Config.
	BufferMillis        int
	DisableDeviceSwitch bool

	// Opener overrides the Decoder constructor. Defaults to decode.OpenBeep.
	Opener decode.Opener[Extra]

	// Backend overrides the Output backend. Defaults to a real
	// output.OtoBackend; tests should supply output.NewDummy() here.
	Backend output.Backend

	// DecodeLookahead is the frame lookahead Decode keeps buffered in
	// ToAudio. Defaults to 1 (spec.md §5: "a single buffer of lookahead").
	DecodeLookahead int

	// GCCapacity sizes Gc's drop channel. Defaults to 64.
	GCCapacity int
}

// RuntimeConfig holds the fields mutable after init via Engine.UpdateConfig
// (spec.md §6).
type RuntimeConfig struct {
	BackThreshold      float64
	ElapsedRefreshRate float64
	QueueEndClear      bool
	ShutdownBlocking   bool
}

// DefaultRuntimeConfig returns spec.md §6's documented defaults.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		BackThreshold:      3.0,
		ElapsedRefreshRate: 0.033,
		QueueEndClear:      true,
		ShutdownBlocking:   false,
	}
}

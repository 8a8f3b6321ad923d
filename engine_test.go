package audioengine

import (
	"testing"
	"time"

	"audioengine/internal/decode"
	"audioengine/internal/output"
	"audioengine/internal/source"
	"audioengine/internal/state"
)

// fakeDecoder produces a fixed number of all-zero frames then ErrEndOfStream,
// the same fixture internal/decode/decode_test.go uses so Engine's wiring is
// exercised end to end without touching a real container decoder.
type fakeDecoder struct {
	framesLeft int
	pos        float64
}

func (f *fakeDecoder) Format() decode.Format         { return decode.Format{SampleRate: 44100, Channels: 2} }
func (f *fakeDecoder) TotalDuration() float64        { return 10 }
func (f *fakeDecoder) CurrentTimestamp() float64     { return f.pos }
func (f *fakeDecoder) NextFrame(buf [][2]float64) (int, error) {
	if f.framesLeft <= 0 {
		return 0, decode.ErrEndOfStream
	}
	f.framesLeft--
	f.pos += 0.1
	return len(buf), nil
}
func (f *fakeDecoder) SeekTo(target float64) (float64, error) { f.pos = target; return target, nil }
func (f *fakeDecoder) Close() error                           { return nil }

func fakeOpener(src source.Source[int]) (decode.Decoder, error) {
	return &fakeDecoder{framesLeft: 50}, nil
}

func testConfig() Config[int] {
	return Config[int]{
		Opener:        fakeOpener,
		Backend:       output.NewDummy(),
		Policies:      Policies{Source: PolicyPauseAndNotify, Decode: PolicyPauseAndNotify, Output: PolicyPauseAndNotify},
		PreferredRate: 44100,
		InitBlocking:  true,
	}
}

func TestNewWiresActorsAndPlaysATrack(t *testing.T) {
	nextCh := make(chan struct{}, 1)
	cfg := testConfig()
	cfg.Callbacks.Next = func(state.Snapshot[int]) {
		select {
		case nextCh <- struct{}{}:
		default:
		}
	}

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Shutdown()

	e.Add(source.FromPath[int]("track", 1), InsertAtBack(), false, true)

	select {
	case <-nextCh:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Next callback")
	}

	deadline := time.After(time.Second)
	for {
		if e.State().Get().Playing {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for playback to start")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestShutdownBlockingWaitsForActors(t *testing.T) {
	cfg := testConfig()
	cfg.ShutdownBlocking = true

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Add(source.FromPath[int]("track", 1), InsertAtBack(), false, true)
	e.Shutdown()

	select {
	case <-e.kernelActor.Done():
	default:
		t.Fatal("expected kernel actor to have stopped by the time Shutdown returned")
	}
}

func TestEngineForwardsCommandsToKernel(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Shutdown()

	e.AddMany([]source.Source[int]{
		source.FromPath[int]("a", 1),
		source.FromPath[int]("b", 2),
	}, InsertAtBack(), false, true)

	res := e.Skip(1)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Snapshot.Get().Current.Index != 1 {
		t.Fatalf("expected skip to land on index 1, got %d", res.Snapshot.Get().Current.Index)
	}

	snap := e.Pause()
	if snap.Get().Playing {
		t.Fatal("expected paused after Pause")
	}
}

func TestEngineProbeReturnsZeroTagsForUntaggedSource(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Shutdown()

	src := source.FromBytes[int]([]byte("not actually tagged audio"), 0)
	tags := e.Probe(src)
	if tags != (Tags{}) {
		t.Fatalf("Probe on an untagged buffer should yield zero Tags, got %+v", tags)
	}
}

func TestRestoreReopensDeviceForExistingCurrent(t *testing.T) {
	restored := state.AudioState[int]{
		Queue:   []source.Source[int]{source.FromPath[int]("a", 1)},
		Current: &state.Current[int]{Source: source.FromPath[int]("a", 1), Index: 0},
		Playing: true,
		Repeat:  state.RepeatOff,
		Volume:  state.NewVolume(1),
	}
	cfg := testConfig()
	cfg.AudioState = &restored

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Shutdown()

	deadline := time.After(time.Second)
	for !e.kernelActor.DeviceHealthy() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for device reopen on restore")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

package kernel

import (
	"errors"
	"testing"
	"time"

	"audioengine/internal/decode"
	"audioengine/internal/source"
	"audioengine/internal/state"
)

// fakeDecodeDriver and fakeAudioDriver stand in for decode.Actor/audio.Actor
// the way decode_test.go's fakeDecoder stands in for a real container
// decoder: Kernel only ever talks to these through the DecodeDriver /
// AudioDriver interfaces, so a test never touches real hardware or files.
type fakeDecodeDriver[Extra any] struct {
	newSourceCalls int
	discardCalls   int
	seekResult     decode.SeekResult
	sourceErrors   chan error
	decodeErrors   chan error
}

func newFakeDecodeDriver[Extra any]() *fakeDecodeDriver[Extra] {
	return &fakeDecodeDriver[Extra]{
		sourceErrors: make(chan error, 1),
		decodeErrors: make(chan error, 1),
	}
}

func (f *fakeDecodeDriver[Extra]) NewSource(source.Source[Extra]) { f.newSourceCalls++ }
func (f *fakeDecodeDriver[Extra]) Seek(target float64) <-chan decode.SeekResult {
	ch := make(chan decode.SeekResult, 1)
	res := f.seekResult
	if res.Err == nil && res.Seeked == 0 {
		res.Seeked = target
	}
	ch <- res
	return ch
}
func (f *fakeDecodeDriver[Extra]) DiscardAndStop()              { f.discardCalls++ }
func (f *fakeDecodeDriver[Extra]) SourceErrorsCh() <-chan error { return f.sourceErrors }
func (f *fakeDecodeDriver[Extra]) DecodeErrorsCh() <-chan error { return f.decodeErrors }

type fakeAudioDriver struct {
	discardCalls int
	openErr      error
	outputErrors chan error
}

func newFakeAudioDriver() *fakeAudioDriver {
	return &fakeAudioDriver{outputErrors: make(chan error, 1)}
}

func (f *fakeAudioDriver) DiscardCurrentAudio()                { f.discardCalls++ }
func (f *fakeAudioDriver) OpenDevice(decode.Format, int) error { return f.openErr }
func (f *fakeAudioDriver) OutputErrorsCh() <-chan error        { return f.outputErrors }

type fakeNotifier struct {
	nextCalls     int
	queueEndCalls int
	repeatCalls   int
	errDecode     []error
	errSource     []error
	errOutput     []error
}

func (f *fakeNotifier) NotifyNext()               { f.nextCalls++ }
func (f *fakeNotifier) NotifyQueueEnd()           { f.queueEndCalls++ }
func (f *fakeNotifier) NotifyRepeat()             { f.repeatCalls++ }
func (f *fakeNotifier) NotifyErrorDecode(e error) { f.errDecode = append(f.errDecode, e) }
func (f *fakeNotifier) NotifyErrorSource(e error) { f.errSource = append(f.errSource, e) }
func (f *fakeNotifier) NotifyErrorOutput(e error) { f.errOutput = append(f.errOutput, e) }

func fakeOpener[Extra any]() decode.Opener[Extra] {
	return func(src source.Source[Extra]) (decode.Decoder, error) {
		return &fakeProbeDecoder{}, nil
	}
}

// fakeProbeDecoder answers Format/TotalDuration without ever producing
// frames; Kernel's own prober only calls those two methods and Close.
type fakeProbeDecoder struct{}

func (fakeProbeDecoder) Format() decode.Format     { return decode.Format{SampleRate: 44100, Channels: 2} }
func (fakeProbeDecoder) TotalDuration() float64    { return 100 }
func (fakeProbeDecoder) CurrentTimestamp() float64 { return 0 }
func (fakeProbeDecoder) NextFrame(buf [][2]float64) (int, error) {
	return 0, errors.New("not implemented")
}
func (fakeProbeDecoder) SeekTo(target float64) (float64, error) { return target, nil }
func (fakeProbeDecoder) Close() error                           { return nil }

func newTestActor(t *testing.T) (*Actor[int], *fakeDecodeDriver[int], *fakeAudioDriver, *fakeNotifier) {
	t.Helper()
	w := state.NewWriter(state.Initial[int]())
	as := state.NewAtomicState(5, 0.25, true)
	dd := newFakeDecodeDriver[int]()
	ad := newFakeAudioDriver()
	notifier := &fakeNotifier{}
	gcCh := make(chan any, 8)

	k := New(Config[int]{
		Writer:        w,
		Atomic:        as,
		GC:            gcCh,
		Decode:        dd,
		Audio:         ad,
		Opener:        fakeOpener[int](),
		Notifier:      notifier,
		Policies:      Policies{Source: PolicyPauseAndNotify, Decode: PolicyPauseAndNotify, Output: PolicyPauseAndNotify},
		PreferredRate: 44100,
	})
	go k.Run()
	t.Cleanup(func() {
		k.Shutdown()
		select {
		case <-k.Done():
		case <-time.After(time.Second):
			t.Fatal("kernel did not shut down")
		}
	})
	return k, dd, ad, notifier
}

func src(n int) source.Source[int] { return source.FromPath[int]("track", n) }

func TestPlayPauseToggleNoCurrentIsNoop(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	snap := k.Play()
	if snap.Get().Playing {
		t.Fatal("play with no current must be a no-op")
	}
	snap = k.Toggle()
	if snap.Get().Playing {
		t.Fatal("toggle with no current must be a no-op")
	}
}

func TestSkipOffEndsQueue(t *testing.T) {
	k, _, _, notifier := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0), src(1)}, InsertAtBack(), false, true)
	k.Repeat(state.RepeatOff)
	res := k.Skip(5)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	st := res.Snapshot.Get()
	if st.Current != nil {
		t.Fatal("expected current cleared after running off the end")
	}
	if notifier.queueEndCalls != 1 {
		t.Fatalf("expected 1 queue-end notification, got %d", notifier.queueEndCalls)
	}
}

func TestSkipQueueWrapsAndNotifies(t *testing.T) {
	k, _, _, notifier := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0), src(1)}, InsertAtBack(), false, true)
	k.Repeat(state.RepeatQueue)
	res := k.Skip(3)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	st := res.Snapshot.Get()
	if st.Current.Index != 1 {
		t.Fatalf("expected wrap to index 1, got %d", st.Current.Index)
	}
	if notifier.repeatCalls != 1 {
		t.Fatalf("expected 1 repeat notification, got %d", notifier.repeatCalls)
	}
}

func TestSkipOnEmptyQueueErrors(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	res := k.Skip(1)
	if !errors.Is(res.Err, ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", res.Err)
	}
}

func TestSeekNoCurrentErrors(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	res := k.Seek(SeekTarget{Mode: SeekAbsolute, Seconds: 10})
	if !errors.Is(res.Err, ErrNoCurrent) {
		t.Fatalf("expected ErrNoCurrent, got %v", res.Err)
	}
}

func TestSeekClampsToTotalDuration(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0)}, InsertAtBack(), false, true)
	res := k.Seek(SeekTarget{Mode: SeekAbsolute, Seconds: 1e9})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if got := res.Snapshot.Get().Current.Elapsed; got != 100 {
		t.Fatalf("expected clamp to total duration 100, got %v", got)
	}
}

func TestClearQueuePreservesCurrent(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0), src(1), src(2)}, InsertAtBack(), false, true)
	snap := k.Clear(ClearQueue)
	st := snap.Get()
	if len(st.Queue) != 1 {
		t.Fatalf("expected queue collapsed to 1 (current only), got %d", len(st.Queue))
	}
	if st.Current == nil || st.Current.Index != 0 {
		t.Fatalf("expected current preserved at index 0, got %+v", st.Current)
	}
}

func TestClearCurrentPausesAndNullsCurrent(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0), src(1)}, InsertAtBack(), false, true)
	snap := k.Clear(ClearCurrent)
	st := snap.Get()
	if st.Current != nil {
		t.Fatal("expected current nulled")
	}
	if st.Playing {
		t.Fatal("expected playing=false")
	}
	if len(st.Queue) != 2 {
		t.Fatalf("expected queue untouched, got %d", len(st.Queue))
	}
}

func TestStopClearsQueueAndCurrent(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0), src(1)}, InsertAtBack(), false, true)
	k.Repeat(state.RepeatQueue)
	snap := k.Stop()
	st := snap.Get()
	if st.Current != nil || len(st.Queue) != 0 || st.Playing {
		t.Fatalf("expected fully stopped state, got %+v", st)
	}
	if st.Repeat != state.RepeatQueue {
		t.Fatal("expected repeat mode to survive stop")
	}
}

func TestBackRestartsPastThreshold(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0), src(1)}, InsertAtBack(), false, true)
	k.SetIndex(1, nil)
	k.atomic.SetElapsed(10) // past the 5s threshold configured in newTestActor

	res := k.Back(1)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Snapshot.Get().Current.Index != 1 {
		t.Fatalf("expected restart at same index 1, got %d", res.Snapshot.Get().Current.Index)
	}
}

func TestBackStepsBackUnderThreshold(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0), src(1)}, InsertAtBack(), false, true)
	k.SetIndex(1, nil)
	k.atomic.SetElapsed(1)

	res := k.Back(1)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Snapshot.Get().Current.Index != 0 {
		t.Fatalf("expected step back to index 0, got %d", res.Snapshot.Get().Current.Index)
	}
}

func TestShuffleQueueKeepsCurrentSourceInPlace(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0), src(1), src(2), src(3)}, InsertAtBack(), false, false)
	k.SetIndex(2, nil)
	snap := k.Shuffle(ShuffleQueue)
	st := snap.Get()
	if st.Current.Index != 2 {
		t.Fatalf("ShuffleQueue must not move current's index, got %d", st.Current.Index)
	}
	if st.Queue[2].Extra() != 2 {
		t.Fatalf("ShuffleQueue must keep current's source fixed in place, got extra=%v", st.Queue[2].Extra())
	}
}

func TestRestoreRejectsInvalidCurrent(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	bad := state.AudioState[int]{
		Queue:   []source.Source[int]{src(0)},
		Current: &state.Current[int]{Source: source.FromPath[int]("other-track", 99), Index: 0},
		Playing: true,
	}
	snap := k.Restore(bad)
	st := snap.Get()
	if st.Current != nil {
		t.Fatal("expected invalid current to be rejected")
	}
	if st.Playing {
		t.Fatal("expected playing forced false when current is nulled")
	}
}

func TestSetIndexOutOfBounds(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0)}, InsertAtBack(), false, false)
	res := k.SetIndex(5, nil)
	if !errors.Is(res.Err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", res.Err)
	}
}

func TestVolumeAndRepeatNoopWhenUnchanged(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	v := state.NewVolume(0.5)
	k.Volume(v)
	snap := k.Volume(v)
	if snap.Get().Volume != v {
		t.Fatalf("expected volume %v, got %v", v, snap.Get().Volume)
	}

	k.Repeat(state.RepeatTrack)
	snap = k.Repeat(state.RepeatTrack)
	if snap.Get().Repeat != state.RepeatTrack {
		t.Fatal("expected repeat mode retained")
	}
}

func TestSetBackThresholdUpdatesAtomicState(t *testing.T) {
	k, _, _, _ := newTestActor(t)
	k.SetBackThreshold(42)
	if got := k.atomic.BackThreshold(); got != 42 {
		t.Fatalf("expected back threshold 42, got %v", got)
	}
}

func TestDispatchErrorPauseAndNotify(t *testing.T) {
	k, dd, _, notifier := newTestActor(t)
	k.AddMany([]source.Source[int]{src(0)}, InsertAtBack(), false, true)

	dd.sourceErrors <- errors.New("boom")
	deadline := time.After(time.Second)
	for {
		if !k.w.Peek().Get().Playing && len(notifier.errSource) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for error policy to pause and notify")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

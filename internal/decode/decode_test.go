package decode

import (
	"testing"
	"time"

	"audioengine/internal/source"
	"audioengine/internal/state"
)

// fakeDecoder produces a fixed number of all-zero frames then ErrEndOfStream,
// the way client/audio_test.go fakes paStream instead of touching hardware.
type fakeDecoder struct {
	framesLeft int
	pos        float64
	closed     bool
}

func (f *fakeDecoder) Format() Format           { return Format{SampleRate: 44100, Channels: 2} }
func (f *fakeDecoder) TotalDuration() float64   { return 10 }
func (f *fakeDecoder) CurrentTimestamp() float64 { return f.pos }
func (f *fakeDecoder) NextFrame(buf [][2]float64) (int, error) {
	if f.framesLeft <= 0 {
		return 0, ErrEndOfStream
	}
	f.framesLeft--
	f.pos += 0.1
	return len(buf), nil
}
func (f *fakeDecoder) SeekTo(target float64) (float64, error) {
	f.pos = target
	return target, nil
}
func (f *fakeDecoder) Close() error { f.closed = true; return nil }

func fakeOpener(framesLeft int) Opener[int] {
	return func(src source.Source[int]) (Decoder, error) {
		return &fakeDecoder{framesLeft: framesLeft}, nil
	}
}

func TestActorDeliversFramesThenStops(t *testing.T) {
	as := state.NewAtomicState(5, 0.25, true)
	gcCh := make(chan any, 8)
	a := New(fakeOpener(3), as, gcCh, 4)
	go a.Run()
	defer a.Shutdown()

	a.NewSource(source.FromPath[int]("x.wav", 0))

	got := 0
	timeout := time.After(time.Second)
	for got < 3 {
		select {
		case <-a.ToAudio:
			got++
		case err := <-a.SourceErrors:
			t.Fatalf("unexpected source error: %v", err)
		case <-timeout:
			t.Fatalf("timed out waiting for frames, got %d", got)
		}
	}
}

func TestActorReportsOpenFailure(t *testing.T) {
	as := state.NewAtomicState(5, 0.25, true)
	gcCh := make(chan any, 8)
	opener := func(src source.Source[int]) (Decoder, error) {
		return nil, ErrEndOfStream // stand-in failure
	}
	a := New(opener, as, gcCh, 4)
	go a.Run()
	defer a.Shutdown()

	a.NewSource(source.FromPath[int]("bad.wav", 0))

	select {
	case err := <-a.SourceErrors:
		if err == nil {
			t.Fatal("expected non-nil source error")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for source error")
	}
}

func TestActorSeek(t *testing.T) {
	as := state.NewAtomicState(5, 0.25, true)
	gcCh := make(chan any, 8)
	a := New(fakeOpener(100), as, gcCh, 4)
	go a.Run()
	defer a.Shutdown()

	a.NewSource(source.FromPath[int]("x.wav", 0))
	time.Sleep(10 * time.Millisecond)

	result := <-a.Seek(4.5)
	if result.Err != nil {
		t.Fatalf("unexpected seek error: %v", result.Err)
	}
	if result.Seeked != 4.5 {
		t.Fatalf("Seeked = %v, want 4.5", result.Seeked)
	}
}

func TestActorDiscardAndStopHaltsDecoding(t *testing.T) {
	as := state.NewAtomicState(5, 0.25, true)
	gcCh := make(chan any, 8)
	a := New(fakeOpener(1000), as, gcCh, 1)
	go a.Run()
	defer a.Shutdown()

	a.NewSource(source.FromPath[int]("x.wav", 0))
	<-a.ToAudio // drain the single lookahead slot at least once

	a.DiscardAndStop()

	// At most one more frame may already be in flight from before the
	// discard took effect; drain it if present, then require quiescence.
	select {
	case <-a.ToAudio:
	case <-time.After(50 * time.Millisecond):
	}
	select {
	case <-a.ToAudio:
		t.Fatal("decoding did not halt after DiscardAndStop")
	case <-time.After(50 * time.Millisecond):
	}
}

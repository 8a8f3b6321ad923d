package state

import (
	"testing"

	"audioengine/internal/source"
)

func TestVolumeClamp(t *testing.T) {
	cases := []struct {
		in   float64
		want Volume
	}{
		{-1, VolumeMin},
		{0.5, 0.5},
		{2.0, VolumeMax},
		{3.5, VolumeMax},
	}
	for _, c := range cases {
		if got := NewVolume(c.in); got != c.want {
			t.Errorf("NewVolume(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestVolumeClampNaN(t *testing.T) {
	nan := 0.0
	nan = nan / nan
	if got := NewVolume(nan); got != VolumeMin {
		t.Errorf("NewVolume(NaN) = %v, want %v", got, VolumeMin)
	}
}

func TestVolumeAddSaturates(t *testing.T) {
	v := VolumeMax.Add(1.0)
	if v != VolumeMax {
		t.Errorf("Add past max = %v, want %v", v, VolumeMax)
	}
	v = VolumeMin.Add(-1.0)
	if v != VolumeMin {
		t.Errorf("Add past min = %v, want %v", v, VolumeMin)
	}
}

func TestAtomicStateRoundTrip(t *testing.T) {
	a := NewAtomicState(5.0, 0.25, true)

	a.SetPlaying(true)
	if !a.Playing() {
		t.Fatal("Playing() = false after SetPlaying(true)")
	}

	a.SetRepeat(RepeatQueue)
	if a.Repeat() != RepeatQueue {
		t.Fatalf("Repeat() = %v, want RepeatQueue", a.Repeat())
	}

	a.SetVolume(Volume(1.75))
	if got := a.Volume(); got != 1.75 {
		t.Fatalf("Volume() = %v, want 1.75", got)
	}

	a.SetElapsed(12.5)
	if got := a.Elapsed(); got != 12.5 {
		t.Fatalf("Elapsed() = %v, want 12.5", got)
	}

	if got := a.BackThreshold(); got != 5.0 {
		t.Fatalf("BackThreshold() = %v, want 5.0", got)
	}
	a.SetBackThreshold(3.0)
	if got := a.BackThreshold(); got != 3.0 {
		t.Fatalf("BackThreshold() after update = %v, want 3.0", got)
	}

	if !a.QueueEndClear() {
		t.Fatal("QueueEndClear() = false, want true from constructor")
	}

	if !a.AudioReadyToRecv() {
		t.Fatal("AudioReadyToRecv() should default true")
	}
	a.SetAudioReadyToRecv(false)
	if a.AudioReadyToRecv() {
		t.Fatal("AudioReadyToRecv() should be false after clearing")
	}
}

func TestWriterReaderPublish(t *testing.T) {
	initial := Initial[int]()
	w := NewWriter(initial)
	r := NewReader(w)

	snap := r.Get()
	if snap.Get().Playing {
		t.Fatal("initial snapshot should not be playing")
	}

	w.CommitReplay(func(s *AudioState[int]) { s.Playing = true })

	// A snapshot taken before the commit must not observe it.
	if snap.Get().Playing {
		t.Fatal("old snapshot must remain immutable after a later commit")
	}

	if !r.Get().Get().Playing {
		t.Fatal("reader must observe the latest commit")
	}
}

func TestAudioStateCloneIsIndependent(t *testing.T) {
	s := Initial[int]()
	s.Queue = []source.Source[int]{source.FromPath("a.wav", 1), source.FromPath("b.wav", 2)}
	cur := Current[int]{Source: s.Queue[0], Index: 0}
	s.Current = &cur

	clone := s.Clone()
	clone.Queue[0] = source.FromPath("mutated.wav", 99)
	clone.Current.Index = 7

	if s.Queue[0].Equal(clone.Queue[0]) {
		t.Fatal("mutating a clone's queue must not affect the original")
	}
	if s.Current.Index == 7 {
		t.Fatal("mutating a clone's Current must not affect the original")
	}
}

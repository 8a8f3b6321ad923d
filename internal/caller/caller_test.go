package caller

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"audioengine/internal/state"
)

func TestDispatchesOnlyConfiguredCallbacks(t *testing.T) {
	var nextCalls atomic.Int64
	var repeatCalls atomic.Int64

	w := state.NewWriter(state.Initial[int]())
	reader := state.NewReader(w)

	a := New(Callbacks[int]{
		Next: func(state.Snapshot[int]) { nextCalls.Add(1) },
	}, reader, false)

	stop := make(chan struct{})
	go a.Run(stop)
	defer close(stop)

	a.NotifyNext()
	a.NotifyRepeat() // no callback configured; must be silently ignored

	deadline := time.After(time.Second)
	for nextCalls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for Next callback")
		case <-time.After(time.Millisecond):
		}
	}

	time.Sleep(10 * time.Millisecond)
	if repeatCalls.Load() != 0 {
		t.Fatal("Repeat callback fired despite being unconfigured")
	}
}

func TestErrorCallbacksCarryError(t *testing.T) {
	errCh := make(chan error, 1)
	w := state.NewWriter(state.Initial[int]())
	reader := state.NewReader(w)

	a := New(Callbacks[int]{
		ErrorOutput: func(err error) { errCh <- err },
	}, reader, false)

	stop := make(chan struct{})
	go a.Run(stop)
	defer close(stop)

	want := errors.New("device gone")
	a.NotifyErrorOutput(want)

	select {
	case got := <-errCh:
		if got != want {
			t.Fatalf("got error %v, want %v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error callback")
	}
}

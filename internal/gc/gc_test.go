package gc

import (
	"errors"
	"testing"
	"time"
)

type closeTracker struct {
	closed bool
	err    error
}

func (c *closeTracker) Close() error {
	c.closed = true
	return c.err
}

func TestRunDropsCloserValues(t *testing.T) {
	a := New(4)
	stop := make(chan struct{})
	go a.Run(stop)

	tr := &closeTracker{}
	a.Sender() <- tr
	a.Sender() <- 42 // non-Closer values must be silently dropped too

	close(stop)
	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stop was closed")
	}

	if !tr.closed {
		t.Fatal("a value implementing io.Closer must be closed when dropped")
	}
}

func TestRunDrainsBufferedValuesBeforeReturning(t *testing.T) {
	a := New(8)
	stop := make(chan struct{})
	go a.Run(stop)

	trs := make([]*closeTracker, 5)
	for i := range trs {
		trs[i] = &closeTracker{}
		a.Sender() <- trs[i]
	}

	close(stop)
	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stop was closed")
	}

	for i, tr := range trs {
		if !tr.closed {
			t.Fatalf("buffered value %d was not drained before Run returned", i)
		}
	}
}

func TestDropSwallowsCloseError(t *testing.T) {
	a := New(1)
	stop := make(chan struct{})
	go a.Run(stop)

	tr := &closeTracker{err: errors.New("boom")}
	a.Sender() <- tr

	close(stop)
	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stop was closed")
	}

	if !tr.closed {
		t.Fatal("drop should still attempt Close even if it errors")
	}
}

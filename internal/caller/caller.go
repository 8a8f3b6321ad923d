// Package caller owns the Caller actor: it dispatches user-configured
// callbacks on a single dedicated goroutine so user code never runs on
// Kernel's, Decode's, or Audio's goroutine.
package caller

import (
	"runtime"

	"github.com/charmbracelet/log"

	"audioengine/internal/state"
)

// Callbacks holds the user-supplied functions Caller invokes. Any field left
// nil means that category of notification is simply never produced; no
// channel or goroutine work is wasted on it.
type Callbacks[Extra any] struct {
	Next     func(state.Snapshot[Extra])
	QueueEnd func(state.Snapshot[Extra])
	Repeat   func(state.Snapshot[Extra])
	Elapsed  func(state.Snapshot[Extra], float64)

	ErrorDecode func(error)
	ErrorSource func(error)
	ErrorOutput func(error)
}

type eventKind int

const (
	evNext eventKind = iota
	evQueueEnd
	evRepeat
	evElapsed
	evErrorDecode
	evErrorSource
	evErrorOutput
)

type event struct {
	kind    eventKind
	seconds float64
	err     error
}

// Actor dispatches Callbacks on its own goroutine. It holds a Reader so it
// can attach the latest Snapshot to a notification without round-tripping
// through Kernel.
type Actor[Extra any] struct {
	cb          Callbacks[Extra]
	reader      *state.Reader[Extra]
	ch          chan event
	log         *log.Logger
	done        chan struct{}
	lowPriority bool
}

// New builds a Caller actor. reader supplies the Snapshot attached to
// queue/elapsed notifications. lowPriority, when true, yields the goroutine
// after every dispatched callback (spec.md §6's callback_low_priority) —
// Go has no OS thread priority knob to turn, so this is the nearest
// equivalent: it gives other goroutines a scheduling chance before Caller
// picks up its next event.
func New[Extra any](cb Callbacks[Extra], reader *state.Reader[Extra], lowPriority bool) *Actor[Extra] {
	return &Actor[Extra]{
		cb:          cb,
		reader:      reader,
		ch:          make(chan event, 32),
		log:         log.Default().WithPrefix("caller"),
		done:        make(chan struct{}),
		lowPriority: lowPriority,
	}
}

// Run drains notification events until stop is closed.
func (a *Actor[Extra]) Run(stop <-chan struct{}) {
	defer close(a.done)
	for {
		select {
		case ev := <-a.ch:
			a.dispatch(ev)
			if a.lowPriority {
				runtime.Gosched()
			}
		case <-stop:
			return
		}
	}
}

// Done is closed once Run has returned.
func (a *Actor[Extra]) Done() <-chan struct{} { return a.done }

func (a *Actor[Extra]) dispatch(ev event) {
	switch ev.kind {
	case evNext:
		if a.cb.Next != nil {
			a.cb.Next(a.reader.Get())
		}
	case evQueueEnd:
		if a.cb.QueueEnd != nil {
			a.cb.QueueEnd(a.reader.Get())
		}
	case evRepeat:
		if a.cb.Repeat != nil {
			a.cb.Repeat(a.reader.Get())
		}
	case evElapsed:
		if a.cb.Elapsed != nil {
			a.cb.Elapsed(a.reader.Get(), ev.seconds)
		}
	case evErrorDecode:
		if a.cb.ErrorDecode != nil {
			a.cb.ErrorDecode(ev.err)
		}
	case evErrorSource:
		if a.cb.ErrorSource != nil {
			a.cb.ErrorSource(ev.err)
		}
	case evErrorOutput:
		if a.cb.ErrorOutput != nil {
			a.cb.ErrorOutput(ev.err)
		}
	}
}

func (a *Actor[Extra]) notify(kind eventKind, ev event) {
	select {
	case a.ch <- ev:
	default:
		a.log.Warn("notification channel full, dropping", "kind", kind)
	}
}

func (a *Actor[Extra]) NotifyNext() {
	if a.cb.Next == nil {
		return
	}
	a.notify(evNext, event{kind: evNext})
}

func (a *Actor[Extra]) NotifyQueueEnd() {
	if a.cb.QueueEnd == nil {
		return
	}
	a.notify(evQueueEnd, event{kind: evQueueEnd})
}

func (a *Actor[Extra]) NotifyRepeat() {
	if a.cb.Repeat == nil {
		return
	}
	a.notify(evRepeat, event{kind: evRepeat})
}

// NotifyElapsed implements audio.ElapsedNotifier.
func (a *Actor[Extra]) NotifyElapsed(seconds float64) {
	if a.cb.Elapsed == nil {
		return
	}
	a.notify(evElapsed, event{kind: evElapsed, seconds: seconds})
}

func (a *Actor[Extra]) NotifyErrorDecode(err error) {
	if a.cb.ErrorDecode == nil {
		return
	}
	a.notify(evErrorDecode, event{kind: evErrorDecode, err: err})
}

func (a *Actor[Extra]) NotifyErrorSource(err error) {
	if a.cb.ErrorSource == nil {
		return
	}
	a.notify(evErrorSource, event{kind: evErrorSource, err: err})
}

func (a *Actor[Extra]) NotifyErrorOutput(err error) {
	if a.cb.ErrorOutput == nil {
		return
	}
	a.notify(evErrorOutput, event{kind: evErrorOutput, err: err})
}

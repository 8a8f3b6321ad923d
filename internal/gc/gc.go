// Package gc runs a single goroutine whose entire job is to receive values
// other actors are done with and drop them, so that freeing memory (and
// closing any OS resources those values hold) never happens on the audio
// hot path.
package gc

import (
	"io"

	"github.com/charmbracelet/log"
)

// Actor drains a channel of arbitrary values and drops them. Any value that
// implements io.Closer is closed as it's dropped.
type Actor struct {
	ch   chan any
	log  *log.Logger
	done chan struct{}
}

// New builds a Gc actor with the given channel capacity. Producers that find
// the channel full fall back to dropping (and closing) the value themselves
// rather than blocking — Gc is a convenience for getting frees off the hot
// path, not a correctness requirement.
func New(capacity int) *Actor {
	return &Actor{
		ch:   make(chan any, capacity),
		log:  log.Default().WithPrefix("gc"),
		done: make(chan struct{}),
	}
}

// Sender returns the send-only side of Gc's channel, handed to every other
// actor that needs to offload a drop.
func (a *Actor) Sender() chan<- any { return a.ch }

// Run drains the channel until stop is closed, then drains whatever remains
// buffered without blocking before returning.
func (a *Actor) Run(stop <-chan struct{}) {
	defer close(a.done)
	for {
		select {
		case v := <-a.ch:
			drop(v)
		case <-stop:
			for {
				select {
				case v := <-a.ch:
					drop(v)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Run has returned.
func (a *Actor) Done() <-chan struct{} { return a.done }

func drop(v any) {
	if c, ok := v.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Default().WithPrefix("gc").Debug("close during drop", "err", err)
		}
	}
}

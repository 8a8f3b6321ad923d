// Package output owns the platform audio backend contract (spec.md §6) and
// two implementations: a real one backed by github.com/ebitengine/oto/v3,
// and a Dummy one for tests and headless environments.
package output

import "errors"

// Spec describes the PCM layout Output was opened with.
type Spec struct {
	SampleRate int
	Channels   int
}

// ErrNotOpen is returned by any Backend method that requires an open device
// when none has been opened yet.
var ErrNotOpen = errors.New("output: backend not open")

// Backend is the out-of-scope "platform audio backend" contract spec.md
// leaves to the embedder. Audio owns exactly one Backend and drives it from
// its own goroutine; Backend implementations are not expected to be safe for
// concurrent use from multiple goroutines beyond that.
type Backend interface {
	// Open (re)opens the device for the given spec. disableDeviceSwitch, if
	// true and the device is already open with an identical spec, makes this
	// a no-op instead of tearing down and recreating the device.
	Open(spec Spec, disableDeviceSwitch bool, bufferMillis int) error
	// Write blocks until samples (scaled by volume) have been accepted by the
	// device. This is the one intended blocking point in the entire pipeline.
	Write(samples [][2]float64, volume float64) error
	// Flush blocks until previously written samples have finished playing.
	Flush() error
	// Discard drops any buffered-but-unplayed samples immediately.
	Discard() error
	Play() error
	Pause() error
	IsPlaying() bool
	Spec() Spec
	Close() error
}

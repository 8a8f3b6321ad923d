package output

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Dummy is a Backend that touches no hardware. Write paces itself in real
// time (proportional to the number of samples written, at the device's
// sample rate) so tests exercising backpressure or timing see realistic
// behavior without opening an actual device, the way dgnsrekt-glow-tts's
// MockAudioContext paces playback with a ticker instead of a real player.
type Dummy struct {
	mu      sync.Mutex
	spec    Spec
	playing atomic.Bool
	opened  atomic.Bool

	SamplesWritten atomic.Int64
	LastVolume     atomic.Uint64 // float64 bits of the last Write's volume
}

// NewDummy builds an unopened Dummy backend.
func NewDummy() *Dummy {
	return &Dummy{}
}

func (d *Dummy) Open(spec Spec, disableDeviceSwitch bool, bufferMillis int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spec = spec
	d.opened.Store(true)
	return nil
}

func (d *Dummy) Write(samples [][2]float64, volume float64) error {
	if !d.opened.Load() {
		return ErrNotOpen
	}
	d.mu.Lock()
	rate := d.spec.SampleRate
	d.mu.Unlock()
	if rate <= 0 {
		rate = 44100
	}
	d.SamplesWritten.Add(int64(len(samples)))
	d.LastVolume.Store(math.Float64bits(volume))
	if d.playing.Load() {
		time.Sleep(time.Duration(float64(len(samples)) / float64(rate) * float64(time.Second)))
	}
	return nil
}

func (d *Dummy) Flush() error {
	if !d.opened.Load() {
		return ErrNotOpen
	}
	return nil
}

func (d *Dummy) Discard() error {
	if !d.opened.Load() {
		return ErrNotOpen
	}
	return nil
}

func (d *Dummy) Play() error {
	if !d.opened.Load() {
		return ErrNotOpen
	}
	d.playing.Store(true)
	return nil
}

func (d *Dummy) Pause() error {
	if !d.opened.Load() {
		return ErrNotOpen
	}
	d.playing.Store(false)
	return nil
}

func (d *Dummy) IsPlaying() bool { return d.playing.Load() }

func (d *Dummy) Spec() Spec {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.spec
}

func (d *Dummy) Close() error {
	d.opened.Store(false)
	d.playing.Store(false)
	return nil
}

package output

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// OtoBackend drives a real audio device through github.com/ebitengine/oto/v3.
// oto.Player pulls bytes from an io.Reader rather than accepting pushed
// buffers, so pcmReader bridges Write's push model to oto's pull model over
// a small channel of already-encoded PCM byte slices.
type OtoBackend struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	reader *pcmReader
	spec   Spec
	log    *log.Logger
}

// NewOtoBackend builds an unopened OtoBackend; call Open before Write.
func NewOtoBackend() *OtoBackend {
	return &OtoBackend{log: log.Default().WithPrefix("output")}
}

func (b *OtoBackend) Open(spec Spec, disableDeviceSwitch bool, bufferMillis int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx != nil {
		if disableDeviceSwitch && b.spec == spec {
			return nil
		}
		b.closeLocked()
	}

	options := &oto.NewContextOptions{
		SampleRate:   spec.SampleRate,
		ChannelCount: spec.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferMillis) * time.Millisecond,
	}

	b.log.Debug("opening device", "sample_rate", spec.SampleRate, "channels", spec.Channels)
	ctx, readyCh, err := oto.NewContext(options)
	if err != nil {
		return fmt.Errorf("output: open context: %w", err)
	}
	select {
	case <-readyCh:
	case <-time.After(5 * time.Second):
		return fmt.Errorf("output: context not ready after 5s")
	}

	reader := newPCMReader(spec.Channels, bufferSlots(bufferMillis, spec))
	player := ctx.NewPlayer(reader)

	b.ctx = ctx
	b.reader = reader
	b.player = player
	b.spec = spec
	return nil
}

func bufferSlots(bufferMillis int, spec Spec) int {
	if bufferMillis <= 0 {
		bufferMillis = 100
	}
	slots := bufferMillis / 20
	if slots < 2 {
		slots = 2
	}
	return slots
}

func (b *OtoBackend) Write(samples [][2]float64, volume float64) error {
	b.mu.Lock()
	reader := b.reader
	b.mu.Unlock()
	if reader == nil {
		return ErrNotOpen
	}
	return reader.push(samples, volume)
}

func (b *OtoBackend) Flush() error {
	b.mu.Lock()
	reader := b.reader
	b.mu.Unlock()
	if reader == nil {
		return ErrNotOpen
	}
	reader.flush()
	return nil
}

func (b *OtoBackend) Discard() error {
	b.mu.Lock()
	reader := b.reader
	b.mu.Unlock()
	if reader == nil {
		return ErrNotOpen
	}
	reader.discard()
	return nil
}

func (b *OtoBackend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return ErrNotOpen
	}
	b.player.Play()
	return nil
}

func (b *OtoBackend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return ErrNotOpen
	}
	b.player.Pause()
	return nil
}

func (b *OtoBackend) IsPlaying() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return false
	}
	return b.player.IsPlaying()
}

func (b *OtoBackend) Spec() Spec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spec
}

func (b *OtoBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
	return nil
}

func (b *OtoBackend) closeLocked() {
	if b.player != nil {
		_ = b.player.Close()
		b.player = nil
	}
	if b.reader != nil {
		b.reader.close()
		b.reader = nil
	}
	b.ctx = nil
}

// pcmReader bridges Audio's push-style Write calls to oto.Player's pull-style
// io.Reader. Each push carries a fully volume-scaled buffer of float32LE
// samples; Read copies out of the current buffer until it's exhausted, then
// blocks for the next one.
type pcmReader struct {
	channels int
	queue    chan []byte
	current  []byte
	closed   chan struct{}
	once     sync.Once
}

func newPCMReader(channels, slots int) *pcmReader {
	return &pcmReader{
		channels: channels,
		queue:    make(chan []byte, slots),
		closed:   make(chan struct{}),
	}
}

func (r *pcmReader) push(samples [][2]float64, volume float64) error {
	buf := make([]byte, 0, len(samples)*r.channels*4)
	for _, s := range samples {
		for ch := 0; ch < r.channels; ch++ {
			var v float64
			if ch == 0 || r.channels == 1 {
				v = s[0]
			} else {
				v = s[1]
			}
			v *= volume
			buf = appendFloat32LE(buf, float32(v))
		}
	}
	select {
	case r.queue <- buf:
		return nil
	case <-r.closed:
		return ErrNotOpen
	}
}

func appendFloat32LE(buf []byte, f float32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(f))
	return append(buf, tmp[:]...)
}

func (r *pcmReader) Read(p []byte) (int, error) {
	if len(r.current) == 0 {
		select {
		case buf, ok := <-r.queue:
			if !ok {
				return 0, fmt.Errorf("output: reader closed")
			}
			r.current = buf
		case <-r.closed:
			return 0, fmt.Errorf("output: reader closed")
		}
	}
	n := copy(p, r.current)
	r.current = r.current[n:]
	return n, nil
}

func (r *pcmReader) flush() {
	for len(r.queue) > 0 {
		time.Sleep(time.Millisecond)
	}
}

func (r *pcmReader) discard() {
	r.current = nil
	for {
		select {
		case <-r.queue:
		default:
			return
		}
	}
}

func (r *pcmReader) close() {
	r.once.Do(func() { close(r.closed) })
}

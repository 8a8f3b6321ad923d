// Package decode owns the Decode actor: it turns a queued Source into a
// stream of PCM frames, staying at most one buffer ahead of Audio so memory
// use stays bounded regardless of track length.
package decode

import (
	"errors"

	"audioengine/internal/source"
)

// Format describes the PCM layout a Decoder produces.
type Format struct {
	SampleRate int
	Channels   int
}

// Frame is one chunk of decoded, interleaved-as-pairs PCM audio. Samples
// beyond N are not meaningful; Decoder implementations reuse or resize the
// backing slice freely between calls.
type Frame struct {
	Samples [][2]float64
	N       int
}

// ErrEndOfStream is returned by NextFrame once a Decoder has produced every
// sample a source has to offer.
var ErrEndOfStream = errors.New("decode: end of stream")

// Decoder is the out-of-scope "demuxer/decoder" contract spec.md leaves to
// the embedder. It wraps a single opened Source: format probing, frame
// pulling, seeking, and duration reporting.
type Decoder interface {
	Format() Format
	// TotalDuration returns the stream's duration in seconds, or 0 if unknown.
	TotalDuration() float64
	// CurrentTimestamp returns the decoder's current read position in seconds.
	CurrentTimestamp() float64
	// NextFrame decodes into buf and returns how many samples were written.
	// Returns ErrEndOfStream once the underlying stream is exhausted.
	NextFrame(buf [][2]float64) (int, error)
	// SeekTo moves the read position to target seconds, clamped to
	// [0, TotalDuration()], and returns the position actually reached.
	SeekTo(target float64) (float64, error)
	Close() error
}

// Opener turns a queued Source into an opened Decoder, probing its format and
// container along the way. This is the seam a test fake substitutes for.
type Opener[Extra any] func(src source.Source[Extra]) (Decoder, error)

package decode

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"audioengine/internal/source"
)

// OpenBeep is the concrete Opener backing production use of the engine: it
// sniffs a Source's container format from its magic bytes and hands the
// stream to the matching github.com/gopxl/beep sub-package decoder.
func OpenBeep[Extra any](src source.Source[Extra]) (Decoder, error) {
	rsc, err := src.Reader()
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	header := make([]byte, 12)
	n, _ := io.ReadFull(rsc, header)
	header = header[:n]
	if _, err := rsc.Seek(0, io.SeekStart); err != nil {
		rsc.Close()
		return nil, fmt.Errorf("decode: rewind after sniff: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)

	switch {
	case bytes.HasPrefix(header, []byte("RIFF")):
		streamer, format, err = wav.Decode(rsc)
	case bytes.HasPrefix(header, []byte("fLaC")):
		streamer, format, err = flac.Decode(rsc)
	case bytes.HasPrefix(header, []byte("OggS")):
		streamer, format, err = vorbis.Decode(rsc)
	case looksLikeMP3(header):
		streamer, format, err = mp3.Decode(rsc)
	default:
		// Fall back to mp3: many real-world files carry no reliable magic
		// bytes in their first frame (ID3-less, VBR headers first).
		streamer, format, err = mp3.Decode(rsc)
	}
	if err != nil {
		rsc.Close()
		return nil, fmt.Errorf("decode: open: %w", err)
	}

	return &beepDecoder{streamer: streamer, format: format}, nil
}

func looksLikeMP3(header []byte) bool {
	if bytes.HasPrefix(header, []byte("ID3")) {
		return true
	}
	if len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0 {
		return true
	}
	return false
}

type beepDecoder struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
}

func (d *beepDecoder) Format() Format {
	return Format{SampleRate: int(d.format.SampleRate), Channels: d.format.NumChannels}
}

func (d *beepDecoder) TotalDuration() float64 {
	n := d.streamer.Len()
	if n <= 0 {
		return 0
	}
	return d.format.SampleRate.D(n).Seconds()
}

func (d *beepDecoder) CurrentTimestamp() float64 {
	return d.format.SampleRate.D(d.streamer.Position()).Seconds()
}

func (d *beepDecoder) NextFrame(buf [][2]float64) (int, error) {
	n, ok := d.streamer.Stream(buf)
	if !ok {
		if err := d.streamer.Err(); err != nil {
			return n, fmt.Errorf("decode: stream: %w", err)
		}
		return n, ErrEndOfStream
	}
	return n, nil
}

func (d *beepDecoder) SeekTo(target float64) (float64, error) {
	if target < 0 {
		target = 0
	}
	total := d.TotalDuration()
	if total > 0 && target > total {
		target = total
	}
	samplePos := d.format.SampleRate.N(time.Duration(target * float64(time.Second)))
	if err := d.streamer.Seek(samplePos); err != nil {
		return d.CurrentTimestamp(), fmt.Errorf("decode: seek: %w", err)
	}
	return d.CurrentTimestamp(), nil
}

func (d *beepDecoder) Close() error {
	return d.streamer.Close()
}

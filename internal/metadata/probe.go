// Package metadata does best-effort tag extraction for a queued Source. It
// is entirely optional: a Source with no readable tags is still a perfectly
// valid, playable Source, so every function here swallows its errors into a
// zero-value Tags rather than surfacing them to the caller.
package metadata

import (
	"bytes"
	"io"
	"os"

	"github.com/dhowden/tag"

	"audioengine/internal/source"
)

// Tags holds the subset of tag data the engine surfaces to callers. Fields
// are left blank when the underlying file carries no tag or tag reading
// fails outright.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Year   int
}

// Probe extracts Tags for a path-backed Source. Bytes-backed Sources are
// probed directly from their in-memory buffer. Probing never blocks playback
// and never returns an error: failures simply yield a zero-value Tags.
func Probe[Extra any](src source.Source[Extra]) Tags {
	if path, ok := src.Path(); ok {
		f, err := os.Open(path)
		if err != nil {
			return Tags{}
		}
		defer f.Close()
		return probeReader(f)
	}
	if data, ok := src.Bytes(); ok {
		return probeReader(bytes.NewReader(data))
	}
	return Tags{}
}

func probeReader(r io.ReadSeeker) Tags {
	m, err := tag.ReadFrom(r)
	if err != nil {
		return Tags{}
	}
	return Tags{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
		Year:   m.Year(),
	}
}

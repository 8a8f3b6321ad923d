package kernel

import "errors"

// Command precondition errors (spec.md §6/§7): never panics, always a typed
// value returned on the command's own reply channel. They share a handful of
// sentinel causes so callers can use errors.Is without caring which specific
// command produced them, matching the "CommandError" shape spec.md describes.
var (
	// ErrNoCurrent is SeekError::NoCurrent: seek requires a bound Current.
	ErrNoCurrent = errors.New("kernel: no current track")
	// ErrQueueEmpty covers SkipError::QueueEmpty, BackError::QueueEmpty, and
	// SetIndexError::QueueEmpty / RemoveError::QueueEmpty.
	ErrQueueEmpty = errors.New("kernel: queue is empty")
	// ErrOutOfBounds is SetIndexError::OutOfBounds. Add/AddMany never return
	// it: an out-of-range insert index is normalized to the front or back.
	ErrOutOfBounds = errors.New("kernel: index out of bounds")
	// ErrBadRange is RemoveError::BadIndex.
	ErrBadRange = errors.New("kernel: invalid remove range")
	// ErrNoSources names AddManyError::NoSources. AddMany itself returns no
	// error: an empty source list is a no-op that replies with the unchanged
	// snapshot.
	ErrNoSources = errors.New("kernel: add_many requires at least one source")
)

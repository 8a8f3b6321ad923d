package kernel

import (
	"audioengine/internal/source"
	"audioengine/internal/state"
)

// Add queues a single source. A thin convenience wrapper around AddMany with
// a one-element slice (spec.md §4.1.2).
func (k *Actor[Extra]) Add(src source.Source[Extra], method InsertMethod, clear bool, play bool) state.Snapshot[Extra] {
	return k.AddMany([]source.Source[Extra]{src}, method, clear, play)
}

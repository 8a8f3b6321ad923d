package kernel

// ErrorPolicy selects how Kernel reacts to a backend error reported by Audio
// or Decode (spec.md §4.1 "Error routing"). The user-facing callback itself
// lives in caller.Callbacks; the policy decides whether that category forces
// a pause, invokes the callback, or both.
type ErrorPolicy int

const (
	// PolicyPause forces the engine to pause. No user callback is invoked.
	PolicyPause ErrorPolicy = iota
	// PolicyPauseAndNotify pauses, then invokes the category's user callback.
	PolicyPauseAndNotify
	// PolicyNotify invokes the category's user callback; playback continues.
	PolicyNotify
)

// Policies holds one ErrorPolicy per backend error axis (spec.md §7: "three
// axes: source/open, decode, output").
type Policies struct {
	Source ErrorPolicy
	Decode ErrorPolicy
	Output ErrorPolicy
}

package domain

import "time"

// Timing is the wall-clock measurement attached by profiling wrappers.
type Timing struct {
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
}

// Result is the erased outcome of a process call.
// Errors are advisory: they are propagated and concatenated, never interpreted.
type Result struct {
	Output any        `json:"output"`
	State  *CardState `json:"state,omitempty"`
	Errors []string   `json:"errors,omitempty"`
	Timing *Timing    `json:"timing,omitempty"`
}

// HasErrors reports whether the result carries advisory errors.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// ConcatErrors joins error lists without aliasing either input.
func ConcatErrors(lists ...[]string) []string {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	if n == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

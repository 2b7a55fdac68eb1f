package domain

// CardState is the persisted state of a card between process calls.
// Version increments by exactly one per update and is only meant for cheap
// change detection.
type CardState struct {
	Value   any `json:"value"`
	Version int `json:"version"`
}

// NewCardState wraps an initial value at version 0.
func NewCardState(value any) *CardState {
	return &CardState{Value: value}
}

// Next returns a new state holding value at the following version.
// A nil receiver yields version 1.
func (s *CardState) Next(value any) *CardState {
	version := 0
	if s != nil {
		version = s.Version
	}
	return &CardState{Value: value, Version: version + 1}
}

// Changed reports whether s is a different version than prev.
func (s *CardState) Changed(prev *CardState) bool {
	if s == nil || prev == nil {
		return s != prev
	}
	return s.Version != prev.Version
}

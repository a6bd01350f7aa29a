package record

import "fhirbin/registry"

// KeyFrame is the expectation in force for the value currently being
// parsed: the wire type it must have, and (for a polymorphic field) the
// original key id needed to resolve that type once the value's JSON token
// shape is known.
type KeyFrame struct {
	Expected registry.ID
	Field    registry.ID
}

// KeyStack tracks the chain of expected wire types from the record's top
// level down to whatever value is currently being parsed. Its top entry is
// consulted twice per field: once to decide how a nested key resolves
// (composite sub-schema vs. top-level schema), and once to decide how the
// field's own value must be encoded.
type KeyStack struct {
	frames []KeyFrame
}

// Push opens a new expectation frame. field is the key id that produced
// this expectation; it matters only when expected is registry.MULTIPLETYPES.
func (s *KeyStack) Push(field, expected registry.ID) {
	s.frames = append(s.frames, KeyFrame{Expected: expected, Field: field})
}

// Pop discards the top frame.
func (s *KeyStack) Pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Top returns the current expectation frame, or false if the stack is
// empty (i.e. the record's top level).
func (s *KeyStack) Top() (KeyFrame, bool) {
	if len(s.frames) == 0 {
		return KeyFrame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// TopExpected returns the current expectation's wire type, or 0 at the top
// level.
func (s *KeyStack) TopExpected() registry.ID {
	f, ok := s.Top()
	if !ok {
		return 0
	}
	return f.Expected
}

// Len reports how many frames are currently open.
func (s *KeyStack) Len() int {
	return len(s.frames)
}
